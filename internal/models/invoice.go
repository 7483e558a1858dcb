package models

import "time"

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"  // satırlar düzenlenebilir
	InvoicePosted InvoiceStatus = "posted" // stoğa işlendi, değiştirilemez
)

// Invoice: Tedarikçi faturası (birden fazla ürün satırı içerebilir)
type Invoice struct {
	ID         uint `gorm:"primaryKey"`
	BranchID   uint `gorm:"index;not null"`
	Branch     Branch
	SupplierID uint `gorm:"index;not null"`
	Supplier   Supplier
	Number     string        `gorm:"size:50;index"` // fatura numarası
	Date       time.Time     `gorm:"index;not null"`
	Status     InvoiceStatus `gorm:"size:10;not null;default:'draft'"`
	TotalAmount float64      `gorm:"not null;default:0"` // satır toplamı
	Note       string        `gorm:"size:255"`
	PostedAt   *time.Time

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceLine: Faturadaki her ürün satırı. Miktar satın alma birimindedir,
// stoğa işlenirken taban birime dönüştürülür.
type InvoiceLine struct {
	ID        uint `gorm:"primaryKey"`
	InvoiceID uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity   float64 `gorm:"not null"`         // satın alma biriminde miktar
	Unit       string  `gorm:"size:20;not null"` // satın alma birimi
	UnitPrice  float64 `gorm:"not null"`         // birim fiyat
	TotalPrice float64 `gorm:"not null"`         // Quantity * UnitPrice
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
