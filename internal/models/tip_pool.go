package models

import "time"

type TipPoolMethod string

const (
	TipMethodHours      TipPoolMethod = "hours"       // çalışılan saate göre
	TipMethodRoleWeight TipPoolMethod = "role_weight" // rol ağırlığına (puana) göre
	TipMethodEven       TipPoolMethod = "even"        // eşit bölüşüm
)

type TipPoolStatus string

const (
	TipPoolOpen   TipPoolStatus = "open"
	TipPoolClosed TipPoolStatus = "closed"
)

// TipPool: Bir dönem için toplanan bahşiş havuzu
type TipPool struct {
	ID          uint `gorm:"primaryKey"`
	BranchID    uint `gorm:"index;not null"`
	Branch      Branch
	PeriodStart time.Time     `gorm:"index;not null"` // dönem başı (gün)
	PeriodEnd   time.Time     `gorm:"index;not null"` // dönem sonu (dahil)
	Method      TipPoolMethod `gorm:"size:20;not null"`
	TotalAmount float64       `gorm:"not null"` // dağıtılacak toplam tutar
	Status      TipPoolStatus `gorm:"size:10;not null;default:'open'"`
	Note        string        `gorm:"size:255"`
	ClosedAt    *time.Time

	Shares []TipShare `gorm:"foreignKey:TipPoolID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TipShare: Havuz kapatıldığında personel başına düşen pay
type TipShare struct {
	ID         uint `gorm:"primaryKey"`
	TipPoolID  uint `gorm:"index;not null"`
	TipPool    TipPool
	EmployeeID uint `gorm:"index;not null"`
	Employee   Employee
	Basis      float64 `gorm:"not null"` // dağıtım tabanı: saat, puan veya 1
	Amount     float64 `gorm:"not null"` // kuruşa kadar kesin pay
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TipPayout: Personele yapılan bahşiş ödemesi. Bakiye = paylar - ödemeler.
type TipPayout struct {
	ID         uint `gorm:"primaryKey"`
	BranchID   uint `gorm:"index;not null"`
	Branch     Branch
	EmployeeID uint `gorm:"index;not null"`
	Employee   Employee
	Amount     float64   `gorm:"not null"`
	Date       time.Time `gorm:"index;not null"`
	Note       string    `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
