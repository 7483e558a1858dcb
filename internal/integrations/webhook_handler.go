package integrations

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateWebhookRequest struct {
	URL    string   `json:"url"`
	Secret string   `json:"secret"`
	Events []string `json:"events"` // olay adları veya "*"
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type UpdateWebhookRequest struct {
	URL      *string  `json:"url"`
	Secret   *string  `json:"secret"`
	Events   []string `json:"events"`
	IsActive *bool    `json:"is_active"`
}

type WebhookResponse struct {
	ID       uint     `json:"id"`
	BranchID uint     `json:"branch_id"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	IsActive bool     `json:"is_active"`
}

type WebhookDeliveryResponse struct {
	ID          uint    `json:"id"`
	DeliveryID  string  `json:"delivery_id"`
	Event       string  `json:"event"`
	Status      string  `json:"status"`
	Attempts    int     `json:"attempts"`
	LastError   string  `json:"last_error"`
	NextTryAt   *string `json:"next_try_at"`
	DeliveredAt *string `json:"delivered_at"`
	CreatedAt   string  `json:"created_at"`
}

var knownEvents = map[string]bool{
	string(models.WebhookInvoicePosted):       true,
	string(models.WebhookProductionCompleted): true,
	string(models.WebhookTipPoolClosed):       true,
	string(models.WebhookStockLow):            true,
	"*":                                       true,
}

func resolveBranchIDFromBodyOrRole(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *bPtr, nil
	}

	// super_admin
	if bodyBranchID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	return *bodyBranchID, nil
}

func resolveBranchIDFromQueryOrRole(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *bPtr, nil
	}

	// super_admin
	bidStr := c.Query("branch_id")
	if bidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	var bid uint
	if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
	}
	return bid, nil
}

func validateEvents(events []string) error {
	if len(events) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "En az bir olay seçilmeli")
	}
	for _, e := range events {
		if !knownEvents[strings.TrimSpace(e)] {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Bilinmeyen olay: %s", e))
		}
	}
	return nil
}

func toWebhookResponse(w models.Webhook) WebhookResponse {
	events := []string{}
	for _, e := range strings.Split(w.Events, ",") {
		if e = strings.TrimSpace(e); e != "" {
			events = append(events, e)
		}
	}
	return WebhookResponse{
		ID:       w.ID,
		BranchID: w.BranchID,
		URL:      w.URL,
		Events:   events,
		IsActive: w.IsActive,
	}
}

// -------------------------------------------------
// POST /api/webhooks
// -------------------------------------------------
func CreateWebhookHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWebhookRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.URL = strings.TrimSpace(body.URL)
		if !strings.HasPrefix(body.URL, "http://") && !strings.HasPrefix(body.URL, "https://") {
			return fiber.NewError(fiber.StatusBadRequest, "url http(s) ile başlamalı")
		}
		if err := validateEvents(body.Events); err != nil {
			return err
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		hook := models.Webhook{
			BranchID: branchID,
			URL:      body.URL,
			Secret:   body.Secret,
			Events:   strings.Join(body.Events, ","),
			IsActive: true,
		}

		if err := database.DB.Create(&hook).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Webhook oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toWebhookResponse(hook))
	}
}

// -------------------------------------------------
// GET /api/webhooks
// -------------------------------------------------
func ListWebhooksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var hooks []models.Webhook
		if err := database.DB.Where("branch_id = ?", branchID).Order("id asc").Find(&hooks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Webhooklar listelenemedi")
		}

		resp := make([]WebhookResponse, 0, len(hooks))
		for _, h := range hooks {
			resp = append(resp, toWebhookResponse(h))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/webhooks/:id
// -------------------------------------------------
func UpdateWebhookHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz webhook ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var hook models.Webhook
		if err := database.DB.First(&hook, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Webhook bulunamadı")
		}

		var body UpdateWebhookRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.URL != nil {
			u := strings.TrimSpace(*body.URL)
			if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
				return fiber.NewError(fiber.StatusBadRequest, "url http(s) ile başlamalı")
			}
			hook.URL = u
		}
		if body.Secret != nil {
			hook.Secret = *body.Secret
		}
		if body.Events != nil {
			if err := validateEvents(body.Events); err != nil {
				return err
			}
			hook.Events = strings.Join(body.Events, ",")
		}
		if body.IsActive != nil {
			hook.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&hook).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Webhook güncellenemedi")
		}

		return c.JSON(toWebhookResponse(hook))
	}
}

// -------------------------------------------------
// DELETE /api/webhooks/:id
// -------------------------------------------------
func DeleteWebhookHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz webhook ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var hook models.Webhook
		if err := database.DB.First(&hook, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Webhook bulunamadı")
		}

		if err := database.DB.Delete(&hook).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Webhook silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Webhook silindi"})
	}
}

// -------------------------------------------------
// GET /api/webhooks/:id/deliveries
// Son teslimat denemeleri (yeniden eskiye)
// -------------------------------------------------
func ListWebhookDeliveriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz webhook ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var hook models.Webhook
		if err := database.DB.First(&hook, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Webhook bulunamadı")
		}

		var deliveries []models.WebhookDelivery
		if err := database.DB.Where("webhook_id = ?", hook.ID).
			Order("id desc").Limit(50).Find(&deliveries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Teslimatlar listelenemedi")
		}

		resp := make([]WebhookDeliveryResponse, 0, len(deliveries))
		for _, d := range deliveries {
			item := WebhookDeliveryResponse{
				ID:         d.ID,
				DeliveryID: d.DeliveryID,
				Event:      string(d.Event),
				Status:     string(d.Status),
				Attempts:   d.Attempts,
				LastError:  d.LastError,
				CreatedAt:  d.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			if d.NextTryAt != nil {
				s := d.NextTryAt.Format("2006-01-02 15:04:05")
				item.NextTryAt = &s
			}
			if d.DeliveredAt != nil {
				s := d.DeliveredAt.Format("2006-01-02 15:04:05")
				item.DeliveredAt = &s
			}
			resp = append(resp, item)
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/webhooks/:id/test
// Abonelik filtresine bakmadan deneme teslimatı gönderir
// -------------------------------------------------
func TestWebhookHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz webhook ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var hook models.Webhook
		if err := database.DB.First(&hook, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Webhook bulunamadı")
		}

		deliveryID := uuid.NewString()
		body := map[string]interface{}{
			"event":       "webhook.test",
			"delivery_id": deliveryID,
			"branch_id":   hook.BranchID,
			"timestamp":   time.Now().Format(time.RFC3339),
			"data":        map[string]interface{}{"branch_id": hook.BranchID},
		}
		bodyJSON, _ := json.Marshal(body)

		now := time.Now()
		delivery := models.WebhookDelivery{
			DeliveryID: deliveryID,
			WebhookID:  hook.ID,
			Event:      "webhook.test",
			Payload:    string(bodyJSON),
			Status:     models.DeliveryPending,
			NextTryAt:  &now,
		}

		if err := database.DB.Create(&delivery).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Teslimat kaydı oluşturulamadı")
		}

		go AttemptDelivery(delivery.ID)

		return c.JSON(fiber.Map{
			"message":     "Deneme teslimatı kuyruğa alındı",
			"delivery_id": deliveryID,
		})
	}
}
