package models

import "time"

type WebhookEvent string

const (
	WebhookInvoicePosted       WebhookEvent = "invoice.posted"
	WebhookProductionCompleted WebhookEvent = "production.completed"
	WebhookTipPoolClosed       WebhookEvent = "tippool.closed"
	WebhookStockLow            WebhookEvent = "stock.low"
)

// Webhook: Şube bazlı dış sistem aboneliği
type Webhook struct {
	ID       uint `gorm:"primaryKey"`
	BranchID uint `gorm:"index;not null"`
	Branch   Branch
	URL      string `gorm:"size:500;not null"`
	Secret   string `gorm:"size:255;not null"` // HMAC imzası için
	Events   string `gorm:"size:500;not null"` // virgülle ayrılmış event listesi
	IsActive bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WebhookDeliveryStatus string

const (
	DeliveryPending   WebhookDeliveryStatus = "pending"
	DeliveryDelivered WebhookDeliveryStatus = "delivered"
	DeliveryFailed    WebhookDeliveryStatus = "failed" // deneme hakkı bitti
)

// WebhookDelivery: Her gönderim denemesinin kaydı. Zamanlayıcı pending
// kayıtları tekrar dener.
type WebhookDelivery struct {
	ID         uint   `gorm:"primaryKey"`
	DeliveryID string `gorm:"size:36;uniqueIndex;not null"` // uuid, X-Delivery-Id başlığında gönderilir
	WebhookID  uint   `gorm:"index;not null"`
	Webhook    Webhook
	Event      WebhookEvent          `gorm:"size:50;not null"`
	Payload    string                `gorm:"type:jsonb"` // gönderilen gövde
	Status     WebhookDeliveryStatus `gorm:"size:10;not null;default:'pending';index"`
	Attempts   int                   `gorm:"not null;default:0"`
	LastError  string                `gorm:"size:500"`
	NextTryAt  *time.Time            `gorm:"index"`
	DeliveredAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
