package models

import "time"

type Employee struct {
	ID       uint `gorm:"primaryKey"`
	BranchID uint `gorm:"index;not null"`
	Branch   Branch
	Name     string `gorm:"size:100;not null"`
	Role     string `gorm:"size:50;not null"` // garson, mutfak, kasiyer vs.

	HourlyWage float64 `gorm:"not null;default:0"` // saatlik ücret
	PINHash    string  `gorm:"size:255;not null"`  // mesai giriş/çıkış PIN'i (bcrypt)

	TipEligible bool    `gorm:"not null;default:true"` // bahşiş havuzuna dahil mi
	TipWeight   float64 `gorm:"not null;default:1"`    // rol ağırlığı yöntemi için puan

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
