package inventory

import (
	"time"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
)

// CurrentStock: Ürünün güncel stoğu = en son sayım + sayımdan SONRA kaydedilen
// hareketlerin toplamı. Hareketin tarihi değil kayıt zamanı esas alınır;
// geçmiş tarihli bir fatura sayımdan sonra girilmişse stoğu yine etkiler.
// Hiç sayım yoksa tüm hareketler toplanır.
func CurrentStock(branchID, productID uint) (float64, *models.StockCount) {
	var lastCount models.StockCount
	err := database.DB.
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		Order("date DESC, created_at DESC").
		First(&lastCount).Error

	base := 0.0
	var countPtr *models.StockCount
	sumQuery := database.DB.Model(&models.StockMovement{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("branch_id = ? AND product_id = ?", branchID, productID)

	if err == nil {
		base = lastCount.Quantity
		countPtr = &lastCount
		sumQuery = sumQuery.Where("created_at > ?", lastCount.CreatedAt)
	}

	var delta float64
	sumQuery.Scan(&delta)

	return base + delta, countPtr
}

type LowStockRow struct {
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	BaseUnit     string  `json:"base_unit"`
	Quantity     float64 `json:"quantity"`
	ReorderLevel float64 `json:"reorder_level"`
}

// LowStockProducts: Kritik seviyenin altına düşen aktif ürünler.
// Zamanlayıcı da webhook tetiklemek için bunu kullanır.
func LowStockProducts(branchID uint) ([]LowStockRow, error) {
	var products []models.Product
	if err := database.DB.
		Where("is_active = ? AND reorder_level > 0", true).
		Order("name asc").
		Find(&products).Error; err != nil {
		return nil, err
	}

	rows := make([]LowStockRow, 0)
	for _, p := range products {
		qty, _ := CurrentStock(branchID, p.ID)
		if qty < p.ReorderLevel {
			rows = append(rows, LowStockRow{
				ProductID:    p.ID,
				ProductName:  p.Name,
				BaseUnit:     p.BaseUnit,
				Quantity:     qty,
				ReorderLevel: p.ReorderLevel,
			})
		}
	}
	return rows, nil
}

type ValuationRow struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	StockCode   string  `json:"stock_code"`
	BaseUnit    string  `json:"base_unit"`
	Quantity    float64 `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	TotalValue  float64 `json:"total_value"`
	LastCount   string  `json:"last_count,omitempty"` // son sayım tarihi
}

// ValuationRows: Şubenin güncel stok değerlemesi (son birim maliyetle).
// Gece anlık görüntüsü de aynı hesabı kullanır.
func ValuationRows(branchID uint, onlyInStock bool) ([]ValuationRow, float64, error) {
	var products []models.Product
	if err := database.DB.Where("is_active = ?", true).Order("name asc").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]ValuationRow, 0, len(products))
	total := 0.0
	for _, p := range products {
		qty, lastCount := CurrentStock(branchID, p.ID)
		if onlyInStock && qty <= 0 {
			continue
		}
		value := qty * p.LastUnitCost
		row := ValuationRow{
			ProductID:   p.ID,
			ProductName: p.Name,
			StockCode:   p.StockCode,
			BaseUnit:    p.BaseUnit,
			Quantity:    qty,
			UnitCost:    p.LastUnitCost,
			TotalValue:  value,
		}
		if lastCount != nil {
			row.LastCount = lastCount.Date.Format("2006-01-02")
		}
		rows = append(rows, row)
		total += value
	}
	return rows, total, nil
}

// WasteTotalForPeriod: Dönem zayiat maliyeti (aylık rapor için)
func WasteTotalForPeriod(branchID uint, from, to time.Time) float64 {
	var total float64
	database.DB.Model(&models.WasteEntry{}).
		Select("COALESCE(SUM(total_cost), 0)").
		Where("branch_id = ? AND date >= ? AND date <= ?", branchID, from, to).
		Scan(&total)
	return total
}
