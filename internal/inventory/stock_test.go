package inventory

import (
	"testing"
	"time"

	"mutfak-backend/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB: database.DB'yi test süresince sqlmock destekli bağlantıyla değiştirir
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	prev := database.DB
	database.DB = gdb
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})

	return mock
}

func TestCurrentStockWithCount(t *testing.T) {
	mock := newMockDB(t)

	// Son sayım 1200, sayımdan sonra -150 hareket -> 1050
	countedAt := time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "stock_counts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "product_id", "quantity", "created_at"}).
			AddRow(3, 1, 5, 1200.0, countedAt))

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM "stock_movements"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(-150.0))

	qty, lastCount := CurrentStock(1, 5)

	assert.InDelta(t, 1050.0, qty, 1e-9)
	require.NotNil(t, lastCount)
	assert.InDelta(t, 1200.0, lastCount.Quantity, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentStockWithoutCount(t *testing.T) {
	mock := newMockDB(t)

	// Hiç sayım yoksa tüm hareketler toplanır
	mock.ExpectQuery(`SELECT \* FROM "stock_counts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM "stock_movements"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(820.5))

	qty, lastCount := CurrentStock(1, 5)

	assert.InDelta(t, 820.5, qty, 1e-9)
	assert.Nil(t, lastCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
