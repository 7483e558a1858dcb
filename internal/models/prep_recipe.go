package models

import "time"

// PrepRecipe: Bir ara ürünün (sos, hamur vs.) üretim reçetesi
type PrepRecipe struct {
	ID        uint `gorm:"primaryKey"`
	BranchID  uint `gorm:"index;not null"`
	Branch    Branch
	Name      string `gorm:"size:100;not null"`
	ProductID uint   `gorm:"index;not null"` // üretilen ürün
	Product   Product

	YieldQty  float64 `gorm:"not null"`         // bir partinin verimi
	YieldUnit string  `gorm:"size:20;not null"` // verim birimi

	Instructions string `gorm:"size:2000"` // opsiyonel hazırlama notları
	IsActive     bool   `gorm:"not null;default:true"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeIngredient: Reçetedeki her malzeme satırı
type RecipeIngredient struct {
	ID        uint `gorm:"primaryKey"`
	RecipeID  uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"` // kullanılan malzeme (ara ürün de olabilir)
	Product   Product
	Quantity  float64 `gorm:"not null"`
	Unit      string  `gorm:"size:20;not null"` // reçetedeki birim, taban birime dönüştürülür
	Note      string  `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
