package models

import "time"

type Product struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;not null;unique"`
	StockCode  string `gorm:"size:50;index"` // Stok kodu (fatura eşleştirme için)
	CategoryID *uint  `gorm:"index"`
	Category   *ProductCategory

	// Birim bilgileri: reçeteler taban birimle çalışır, alımlar satın alma birimiyle gelir
	BaseUnit       string  `gorm:"size:20;not null"`   // taban (reçete) birimi: g, ml, adet
	PurchaseUnit   string  `gorm:"size:20;not null"`   // satın alma birimi: koli, kg, adet vs.
	PurchaseFactor float64 `gorm:"not null;default:1"` // 1 satın alma birimi = kaç taban birim

	LastUnitCost float64 `gorm:"default:0"` // taban birim başına son maliyet (son faturadan veya üretimden)
	ReorderLevel float64 `gorm:"default:0"` // kritik stok seviyesi (taban birim), 0 = takip yok

	IsPrepped bool   `gorm:"not null;default:false"` // üretim reçetesiyle mi üretiliyor
	ImagePath string `gorm:"size:255"`               // katalog içe aktarmadan gelen görsel yolu
	IsActive  bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UnitConversion: Ürüne özel birim dönüşümü
// Örn: 1 koli = 12 adet, 1 adet = 250 g, 1 ml = 1.03 g (yoğunluk)
type UnitConversion struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	FromUnit  string  `gorm:"size:20;not null"`
	ToUnit    string  `gorm:"size:20;not null"`
	Factor    float64 `gorm:"not null"` // 1 FromUnit = Factor ToUnit
	CreatedAt time.Time
	UpdatedAt time.Time
}
