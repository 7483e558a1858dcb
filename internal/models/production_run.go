package models

import "time"

type ProductionRunStatus string

const (
	ProductionPlanned   ProductionRunStatus = "planned"
	ProductionCompleted ProductionRunStatus = "completed"
	ProductionCancelled ProductionRunStatus = "cancelled"
)

// ProductionRun: Bir reçetenin belirli ölçekte uygulanması.
// Beklenen değerler oluştururken, gerçekleşenler tamamlarken yazılır.
type ProductionRun struct {
	ID       uint `gorm:"primaryKey"`
	BranchID uint `gorm:"index;not null"`
	Branch   Branch
	RecipeID uint `gorm:"index;not null"`
	Recipe   PrepRecipe
	Date     time.Time           `gorm:"index;not null"`
	Scale    float64             `gorm:"not null;default:1"` // parti çarpanı
	Status   ProductionRunStatus `gorm:"size:10;not null;default:'planned'"`

	ExpectedYield float64 `gorm:"not null"`  // reçete verimi * ölçek (taban birim)
	ActualYield   float64 `gorm:"default:0"` // tamamlanınca girilir (taban birim)

	TotalCost float64 `gorm:"default:0"` // gerçekleşen malzeme maliyeti
	UnitCost  float64 `gorm:"default:0"` // TotalCost / ActualYield
	Note      string  `gorm:"size:255"`
	CompletedAt *time.Time

	Items []ProductionRunItem `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductionRunItem: Üretimde kullanılan her malzeme için beklenen/gerçekleşen miktar
type ProductionRunItem struct {
	ID        uint `gorm:"primaryKey"`
	RunID     uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	ExpectedQty float64 `gorm:"not null"`  // taban birim
	ActualQty   float64 `gorm:"default:0"` // taban birim, tamamlanınca yazılır
	UnitCost    float64 `gorm:"default:0"` // tamamlama anındaki taban birim maliyeti
	LineCost    float64 `gorm:"default:0"` // ActualQty * UnitCost
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
