package models

import "time"

// POSItemMap - POS menü kalemi ile stok ürünü eşleştirmesi.
// Satış içe aktarmada eşleşen her satış, ürün stoğundan QtyPerSale düşer.
type POSItemMap struct {
	ID         uint   `gorm:"primaryKey"`
	BranchID   uint   `gorm:"index;not null"`
	Branch     Branch `gorm:"foreignKey:BranchID"`
	POSName    string `gorm:"size:200;not null"` // POS'taki kalem adı
	ProductID  uint   `gorm:"index;not null"`
	Product    Product
	QtyPerSale float64 `gorm:"not null"`         // bir satışta düşülecek miktar
	Unit       string  `gorm:"size:20;not null"` // miktarın birimi
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
