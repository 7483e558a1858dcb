package models

import "time"

// Supplier - Tedarikçi
type Supplier struct {
	ID          uint   `gorm:"primaryKey"`
	BranchID    uint   `gorm:"index;not null"`
	Branch      Branch `gorm:"foreignKey:BranchID"`
	Name        string `gorm:"size:200;not null"`
	ContactInfo string `gorm:"size:255"` // telefon / e-posta (opsiyonel)
	TaxNumber   string `gorm:"size:50"`  // vergi no (opsiyonel)
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SupplierPayment - Tedarikçiye yapılan ödemeler
type SupplierPayment struct {
	ID          uint     `gorm:"primaryKey"`
	BranchID    uint     `gorm:"index;not null"`
	Branch      Branch   `gorm:"foreignKey:BranchID"`
	SupplierID  uint     `gorm:"index;not null"`
	Supplier    Supplier `gorm:"foreignKey:SupplierID"`
	Amount      float64  `gorm:"not null"` // ödeme tutarı
	Date        time.Time `gorm:"index;not null"`
	Description string    `gorm:"size:255"` // açıklama (taksit bilgisi vs.)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
