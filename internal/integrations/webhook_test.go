package integrations

import (
	"testing"

	"mutfak-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	// HMAC-SHA256, "sha256=<hex>" formatında ve deterministik
	got := sign("gizli-anahtar", []byte(`{"event":"invoice.posted"}`))
	again := sign("gizli-anahtar", []byte(`{"event":"invoice.posted"}`))

	assert.Equal(t, got, again)
	assert.Regexp(t, `^sha256=[0-9a-f]{64}$`, got)

	// Farklı secret farklı imza üretir
	other := sign("baska-anahtar", []byte(`{"event":"invoice.posted"}`))
	assert.NotEqual(t, got, other)
}

func TestEventMatches(t *testing.T) {
	tests := []struct {
		name   string
		events string
		event  models.WebhookEvent
		want   bool
	}{
		{"tek olay eşleşir", "invoice.posted", models.WebhookInvoicePosted, true},
		{"listede eşleşir", "invoice.posted, tippool.closed", models.WebhookTipPoolClosed, true},
		{"listede yoksa eşleşmez", "invoice.posted", models.WebhookStockLow, false},
		{"yıldız hepsini alır", "*", models.WebhookProductionCompleted, true},
		{"boş liste eşleşmez", "", models.WebhookInvoicePosted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventMatches(tt.events, tt.event))
		})
	}
}
