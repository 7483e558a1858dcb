package models

import "time"

// StockCount: Fiziksel stok sayımı kaydı. Güncel stok = en son sayım + sayımdan
// sonra kaydedilen hareketlerin toplamı.
type StockCount struct {
	ID        uint `gorm:"primaryKey"`
	BranchID  uint `gorm:"index;not null"`
	Branch    Branch
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Date      time.Time `gorm:"index;not null"` // sayım tarihi
	Quantity  float64   `gorm:"not null"`       // sayılan miktar (taban birim)
	Note      string    `gorm:"size:255"`       // opsiyonel not
	CreatedAt time.Time
	UpdatedAt time.Time
}
