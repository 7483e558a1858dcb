package database

import (
	"log"

	"mutfak-backend/internal/config"
	"mutfak-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	// Employee migration: tip_weight kolonu sonradan eklendi (AutoMigrate'ten ÖNCE)
	// Eski kayıtlarda NULL kalan ağırlıklar bahşiş dağıtımını bozuyor, 1 ile doldur
	if DB.Migrator().HasTable(&models.Employee{}) && DB.Migrator().HasColumn(&models.Employee{}, "tip_weight") {
		var nullCount int64
		DB.Raw("SELECT COUNT(*) FROM employees WHERE tip_weight IS NULL").Scan(&nullCount)
		if nullCount > 0 {
			log.Printf("Employee tablosunda %d adet NULL tip_weight kaydı bulundu, 1 ile güncelleniyor...", nullCount)
			DB.Exec("UPDATE employees SET tip_weight = 1 WHERE tip_weight IS NULL")
		}
	}

	// Product migration: purchase_factor kolonu sonradan eklendi
	// NULL veya 0 faktör, fatura girişinde sıfıra bölme yaratır
	if DB.Migrator().HasTable(&models.Product{}) && DB.Migrator().HasColumn(&models.Product{}, "purchase_factor") {
		DB.Exec("UPDATE products SET purchase_factor = 1 WHERE purchase_factor IS NULL OR purchase_factor <= 0")
	}

	err = DB.AutoMigrate(
		&models.Branch{},
		&models.User{},
		// Stok
		&models.ProductCategory{},
		&models.Product{},
		&models.UnitConversion{},
		&models.StockMovement{},
		&models.StockCount{},
		&models.StockSnapshot{},
		&models.WasteEntry{},
		&models.CountSheetOrder{}, // Sayım listesi sıralaması (şube bazlı)
		// Personel ve bahşiş
		&models.Employee{},
		&models.TimeEntry{},
		&models.TipPool{},
		&models.TipShare{},
		&models.TipPayout{},
		// Reçete ve üretim
		&models.PrepRecipe{},
		&models.RecipeIngredient{},
		&models.ProductionRun{},
		&models.ProductionRunItem{},
		// Tedarikçi ve fatura
		&models.Supplier{},
		&models.SupplierPayment{},
		&models.Invoice{},
		&models.InvoiceLine{},
		// Satış
		&models.SalesRecord{},
		&models.POSItemMap{},
		// Gider
		&models.ExpenseCategory{},
		&models.Expense{},
		&models.ExpensePayment{},
		// Entegrasyon ve rapor
		&models.Webhook{},
		&models.WebhookDelivery{},
		&models.MonthlyReport{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// RecipeIngredient foreign key constraint'ini manuel olarak düzelt (AutoMigrate bazen constraint'i eklemez)
	// Reçetede kullanılan ürün silinemesin diye RESTRICT şart
	if DB.Migrator().HasTable(&models.RecipeIngredient{}) && DB.Migrator().HasTable(&models.Product{}) {
		var constraintExists bool
		DB.Raw(`
			SELECT EXISTS (
				SELECT 1
				FROM information_schema.table_constraints
				WHERE table_name = 'recipe_ingredients'
				AND constraint_name = 'fk_recipe_ingredients_product'
			)
		`).Scan(&constraintExists)

		if !constraintExists {
			log.Println("RecipeIngredient için foreign key constraint ekleniyor (products)...")
			if fkErr := DB.Exec(`
				ALTER TABLE recipe_ingredients
				ADD CONSTRAINT fk_recipe_ingredients_product
				FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT
			`).Error; fkErr != nil {
				log.Printf("Foreign key constraint eklenirken hata: %v", fkErr)
			} else {
				log.Println("RecipeIngredient foreign key constraint başarıyla eklendi")
			}
		}
	}

	// Webhook retry taraması için index (status + next_try_at üzerinden sorgulanıyor)
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_retry ON webhook_deliveries(status, next_try_at)")

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
