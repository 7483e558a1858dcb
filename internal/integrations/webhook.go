package integrations

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"mutfak-backend/internal/config"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/google/uuid"
)

var (
	webhookClient      = &http.Client{Timeout: 10 * time.Second}
	webhookMaxAttempts = 5
)

// InitWebhooks: zaman aşımı ve deneme sayısını config'den al
func InitWebhooks(cfg *config.Config) {
	webhookClient = &http.Client{Timeout: time.Duration(cfg.WebhookTimeoutSec) * time.Second}
	if cfg.WebhookMaxAttempts > 0 {
		webhookMaxAttempts = cfg.WebhookMaxAttempts
	}
}

// eventMatches: webhook'un abone olduğu olay listesi (virgülle ayrılmış, "*" hepsi)
func eventMatches(events string, event models.WebhookEvent) bool {
	for _, e := range strings.Split(events, ",") {
		e = strings.TrimSpace(e)
		if e == "*" || e == string(event) {
			return true
		}
	}
	return false
}

// Emit: olaya abone webhooklar için teslimat kaydı oluşturur ve ilk denemeyi
// arka planda yapar. Başarısız teslimatlar zamanlanmış iş tarafından tekrar denenir.
// Hata durumunda çağıran akışı bozmaz, sadece log'lar.
func Emit(branchID uint, event models.WebhookEvent, payload map[string]interface{}) {
	var hooks []models.Webhook
	if err := database.DB.Where("branch_id = ? AND is_active = ?", branchID, true).Find(&hooks).Error; err != nil {
		log.Printf("Webhook listesi okunamadı: %v", err)
		return
	}

	for _, hook := range hooks {
		if !eventMatches(hook.Events, event) {
			continue
		}

		deliveryID := uuid.NewString()
		body := map[string]interface{}{
			"event":       string(event),
			"delivery_id": deliveryID,
			"branch_id":   branchID,
			"timestamp":   time.Now().Format(time.RFC3339),
			"data":        payload,
		}

		bodyJSON, err := json.Marshal(body)
		if err != nil {
			log.Printf("Webhook payload oluşturulamadı: %v", err)
			continue
		}

		now := time.Now()
		delivery := models.WebhookDelivery{
			DeliveryID: deliveryID,
			WebhookID:  hook.ID,
			Event:      event,
			Payload:    string(bodyJSON),
			Status:     models.DeliveryPending,
			NextTryAt:  &now,
		}

		if err := database.DB.Create(&delivery).Error; err != nil {
			log.Printf("Webhook teslimat kaydı oluşturulamadı: %v", err)
			continue
		}

		go AttemptDelivery(delivery.ID)
	}
}

// sign: gövdenin HMAC-SHA256 imzası ("sha256=<hex>" formatında)
func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// AttemptDelivery: tek teslimat denemesi. Başarısızlıkta artan bekleme ile
// tekrar denenmek üzere işaretler, deneme hakkı bitince failed yapar.
func AttemptDelivery(deliveryRowID uint) {
	var delivery models.WebhookDelivery
	if err := database.DB.First(&delivery, "id = ?", deliveryRowID).Error; err != nil {
		return
	}
	if delivery.Status != models.DeliveryPending {
		return
	}

	var hook models.Webhook
	if err := database.DB.First(&hook, "id = ?", delivery.WebhookID).Error; err != nil {
		markFailed(&delivery, "webhook tanımı silinmiş")
		return
	}
	if !hook.IsActive {
		markFailed(&delivery, "webhook pasif")
		return
	}

	req, err := http.NewRequest(http.MethodPost, hook.URL, bytes.NewReader([]byte(delivery.Payload)))
	if err != nil {
		markFailed(&delivery, fmt.Sprintf("istek oluşturulamadı: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", string(delivery.Event))
	req.Header.Set("X-Webhook-Delivery", delivery.DeliveryID)
	if hook.Secret != "" {
		req.Header.Set("X-Webhook-Signature", sign(hook.Secret, []byte(delivery.Payload)))
	}

	resp, err := webhookClient.Do(req)
	if err != nil {
		scheduleRetry(&delivery, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		now := time.Now()
		database.DB.Model(&delivery).Updates(map[string]interface{}{
			"status":       models.DeliveryDelivered,
			"attempts":     delivery.Attempts + 1,
			"delivered_at": now,
			"last_error":   "",
			"next_try_at":  nil,
		})
		return
	}

	scheduleRetry(&delivery, fmt.Sprintf("HTTP %d", resp.StatusCode))
}

func scheduleRetry(delivery *models.WebhookDelivery, lastErr string) {
	attempts := delivery.Attempts + 1
	if len(lastErr) > 500 {
		lastErr = lastErr[:500]
	}

	if attempts >= webhookMaxAttempts {
		database.DB.Model(delivery).Updates(map[string]interface{}{
			"status":      models.DeliveryFailed,
			"attempts":    attempts,
			"last_error":  lastErr,
			"next_try_at": nil,
		})
		return
	}

	// 5 dk'dan başlayıp her denemede ikiye katlanır, 6 saatte sabitlenir
	backoff := 5 * time.Minute * time.Duration(1<<(attempts-1))
	if backoff > 6*time.Hour {
		backoff = 6 * time.Hour
	}
	nextTry := time.Now().Add(backoff)

	database.DB.Model(delivery).Updates(map[string]interface{}{
		"attempts":    attempts,
		"last_error":  lastErr,
		"next_try_at": nextTry,
	})
}

func markFailed(delivery *models.WebhookDelivery, reason string) {
	database.DB.Model(delivery).Updates(map[string]interface{}{
		"status":      models.DeliveryFailed,
		"attempts":    delivery.Attempts + 1,
		"last_error":  reason,
		"next_try_at": nil,
	})
}

// RetryDueDeliveries: vadesi gelen bekleyen teslimatları dener (cron çağırır)
func RetryDueDeliveries() {
	var deliveries []models.WebhookDelivery
	if err := database.DB.
		Where("status = ? AND next_try_at IS NOT NULL AND next_try_at <= ?", models.DeliveryPending, time.Now()).
		Limit(100).
		Find(&deliveries).Error; err != nil {
		log.Printf("Bekleyen webhook teslimatları okunamadı: %v", err)
		return
	}

	for _, d := range deliveries {
		AttemptDelivery(d.ID)
	}
}
