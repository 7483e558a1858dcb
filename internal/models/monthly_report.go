package models

import "time"

// MonthlyReport: Aylık maliyet/kâr raporlarının saklanması
type MonthlyReport struct {
	ID         uint `gorm:"primaryKey"`
	BranchID   uint `gorm:"index;not null"`
	Branch     Branch
	Year       int       `gorm:"index;not null"` // yıl
	Month      int       `gorm:"index;not null"` // ay (1-12)
	ReportDate time.Time `gorm:"index;not null"` // rapor oluşturulma tarihi

	TotalRevenue  float64 `gorm:"default:0"` // toplam ciro
	FoodCost      float64 `gorm:"default:0"` // işlenen fatura toplamı (COGS)
	LaborCost     float64 `gorm:"default:0"` // mesai * saatlik ücret
	TipsCollected float64 `gorm:"default:0"` // dönem içinde dağıtılan bahşişler
	WasteCost     float64 `gorm:"default:0"` // zayiat maliyeti
	OtherExpenses float64 `gorm:"default:0"` // gider kayıtları
	NetMargin     float64 `gorm:"default:0"` // ciro - (COGS + işçilik + diğer)

	// Rapor detayları (JSONB)
	ReportData string `gorm:"type:jsonb"` // kırılımlar (JSON formatında)

	CreatedAt time.Time
	UpdatedAt time.Time
}
