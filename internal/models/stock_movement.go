package models

import "time"

type StockMovementType string

const (
	MovementInvoiceIn     StockMovementType = "invoice_in"     // fatura girişi
	MovementProductionIn  StockMovementType = "production_in"  // üretimden gelen verim
	MovementProductionOut StockMovementType = "production_out" // üretimde kullanılan malzeme
	MovementWaste         StockMovementType = "waste"          // zayiat
	MovementSaleDepletion StockMovementType = "sale_depletion" // POS satış düşümü
	MovementAdjust        StockMovementType = "adjust"         // manuel düzeltme
)

// StockMovement: Stok hareket defteri. Miktarlar her zaman ürünün taban birimindedir,
// girişler pozitif çıkışlar negatif kaydedilir.
type StockMovement struct {
	ID        uint `gorm:"primaryKey"`
	BranchID  uint `gorm:"index;not null"`
	Branch    Branch
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Date      time.Time         `gorm:"index;not null"`
	Type      StockMovementType `gorm:"size:20;not null;index"`
	Quantity  float64           `gorm:"not null"` // taban birim, işaretli
	UnitCost  float64           `gorm:"default:0"` // hareket anındaki taban birim maliyeti
	// Hareketin kaynağı (ör: "invoice" + fatura ID, "production_run" + üretim ID)
	RefType string `gorm:"size:30;index"`
	RefID   uint   `gorm:"index"`
	Note    string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
