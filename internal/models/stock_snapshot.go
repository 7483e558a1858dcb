package models

import "time"

// StockSnapshot: Zamanlayıcının her gece yazdığı ürün bazlı stok değerleme satırı
type StockSnapshot struct {
	ID           uint `gorm:"primaryKey"`
	BranchID     uint `gorm:"index;not null"`
	Branch       Branch
	ProductID    uint `gorm:"index;not null"`
	Product      Product
	SnapshotDate time.Time `gorm:"index;not null"`
	Quantity     float64   `gorm:"not null"`  // o gece hesaplanan stok (taban birim)
	UnitCost     float64   `gorm:"default:0"` // taban birim maliyeti
	TotalValue   float64   `gorm:"default:0"` // Quantity * UnitCost
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
