package models

import "time"

type SalesChannel string

const (
	SalesChannelDineIn   SalesChannel = "dinein"   // salon
	SalesChannelTakeout  SalesChannel = "takeout"  // paket / gel-al
	SalesChannelDelivery SalesChannel = "delivery" // kurye / platform
)

type SalesSource string

const (
	SalesSourceManual SalesSource = "manual" // elle girilen gün sonu
	SalesSourcePOS    SalesSource = "pos"    // POS içe aktarma
)

// SalesRecord: Gün/kanal bazlı ciro kaydı. TipAmount o kaydın beyan edilen
// bahşişidir ve bahşiş havuzunun varsayılan toplamını besler.
type SalesRecord struct {
	ID          uint `gorm:"primaryKey"`
	BranchID    uint `gorm:"index;not null"`
	Branch      Branch
	Date        time.Time    `gorm:"index;not null"` // gün bazlı
	Channel     SalesChannel `gorm:"size:20;not null"`
	GrossAmount float64      `gorm:"not null"`  // brüt ciro
	TipAmount   float64      `gorm:"default:0"` // beyan edilen bahşiş
	Source      SalesSource  `gorm:"size:10;not null;default:'manual'"`
	Note        string       `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
