package sales

import (
	"fmt"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateSalesRecordRequest struct {
	Date        string  `json:"date"`    // "2025-12-09"
	Channel     string  `json:"channel"` // dinein | takeout | delivery
	GrossAmount float64 `json:"gross_amount"`
	TipAmount   float64 `json:"tip_amount"`
	Note        string  `json:"note"`
	BranchID    *uint   `json:"branch_id"` // super_admin için
}

type UpdateSalesRecordRequest struct {
	Date        *string  `json:"date"`
	Channel     *string  `json:"channel"`
	GrossAmount *float64 `json:"gross_amount"`
	TipAmount   *float64 `json:"tip_amount"`
	Note        *string  `json:"note"`
}

type SalesRecordResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	Date        string  `json:"date"`
	Channel     string  `json:"channel"`
	GrossAmount float64 `json:"gross_amount"`
	TipAmount   float64 `json:"tip_amount"`
	Source      string  `json:"source"`
	Note        string  `json:"note"`
	CreatedAt   string  `json:"created_at"`
}

// -------------------------
// Yardımcı Fonksiyonlar
// -------------------------

func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var branchID *uint
	bVal := c.Locals(auth.CtxBranchIDKey)
	if bPtr, ok := bVal.(*uint); ok && bPtr != nil {
		branchID = bPtr
	}

	return userID, user.Name, branchID, nil
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

func validChannel(ch string) bool {
	switch models.SalesChannel(ch) {
	case models.SalesChannelDineIn, models.SalesChannelTakeout, models.SalesChannelDelivery:
		return true
	}
	return false
}

func toSalesRecordResponse(r models.SalesRecord) SalesRecordResponse {
	return SalesRecordResponse{
		ID:          r.ID,
		BranchID:    r.BranchID,
		Date:        r.Date.Format("2006-01-02"),
		Channel:     string(r.Channel),
		GrossAmount: r.GrossAmount,
		TipAmount:   r.TipAmount,
		Source:      string(r.Source),
		Note:        r.Note,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// -------------------------
// Sales Record CRUD
// -------------------------

// POST /api/sales
func CreateSalesRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSalesRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if !validChannel(body.Channel) {
			return fiber.NewError(fiber.StatusBadRequest, "channel 'dinein', 'takeout' veya 'delivery' olmalı")
		}
		if body.GrossAmount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "gross_amount 0'dan büyük olmalı")
		}
		if body.TipAmount < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "tip_amount negatif olamaz")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		record := models.SalesRecord{
			BranchID:    branchID,
			Date:        d,
			Channel:     models.SalesChannel(body.Channel),
			GrossAmount: body.GrossAmount,
			TipAmount:   body.TipAmount,
			Source:      models.SalesSourceManual,
			Note:        body.Note,
		}

		if err := database.DB.Create(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydı oluşturulamadı")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &record.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sales_record",
				EntityID:    record.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Satış kaydı eklendi: %s %s - %.2f TL", record.Date.Format("2006-01-02"), record.Channel, record.GrossAmount),
				Before:      nil,
				After:       record,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toSalesRecordResponse(record))
	}
}

// GET /api/sales?from=...&to=...&channel=...&source=...
func ListSalesRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.SalesRecord{}).Where("branch_id = ?", branchID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to geçersiz")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if ch := c.Query("channel"); ch != "" {
			if !validChannel(ch) {
				return fiber.NewError(fiber.StatusBadRequest, "channel 'dinein', 'takeout' veya 'delivery' olmalı")
			}
			dbq = dbq.Where("channel = ?", ch)
		}
		if src := c.Query("source"); src != "" {
			if src != string(models.SalesSourceManual) && src != string(models.SalesSourcePOS) {
				return fiber.NewError(fiber.StatusBadRequest, "source 'manual' veya 'pos' olmalı")
			}
			dbq = dbq.Where("source = ?", src)
		}

		var records []models.SalesRecord
		if err := dbq.Order("date desc, id desc").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kayıtları listelenemedi")
		}

		resp := make([]SalesRecordResponse, 0, len(records))
		for _, r := range records {
			resp = append(resp, toSalesRecordResponse(r))
		}

		return c.JSON(resp)
	}
}

// PUT /api/sales/:id
func UpdateSalesRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var record models.SalesRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış kaydı bulunamadı")
		}

		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if ok && role == models.RoleBranchAdmin {
			bVal := c.Locals(auth.CtxBranchIDKey)
			bPtr, ok := bVal.(*uint)
			if !ok || bPtr == nil || *bPtr != record.BranchID {
				return fiber.NewError(fiber.StatusForbidden, "Bu kayda erişim yetkiniz yok")
			}
		}

		var body UpdateSalesRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := record

		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			record.Date = d
		}
		if body.Channel != nil {
			if !validChannel(*body.Channel) {
				return fiber.NewError(fiber.StatusBadRequest, "channel 'dinein', 'takeout' veya 'delivery' olmalı")
			}
			record.Channel = models.SalesChannel(*body.Channel)
		}
		if body.GrossAmount != nil {
			if *body.GrossAmount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "gross_amount 0'dan büyük olmalı")
			}
			record.GrossAmount = *body.GrossAmount
		}
		if body.TipAmount != nil {
			if *body.TipAmount < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "tip_amount negatif olamaz")
			}
			record.TipAmount = *body.TipAmount
		}
		if body.Note != nil {
			record.Note = *body.Note
		}

		if err := database.DB.Save(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydı güncellenemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &record.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sales_record",
				EntityID:    record.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Satış kaydı güncellendi: %.2f -> %.2f TL", before.GrossAmount, record.GrossAmount),
				Before:      before,
				After:       record,
			})
		}

		return c.JSON(toSalesRecordResponse(record))
	}
}

// DELETE /api/sales/:id
func DeleteSalesRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var record models.SalesRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış kaydı bulunamadı")
		}

		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if ok && role == models.RoleBranchAdmin {
			bVal := c.Locals(auth.CtxBranchIDKey)
			bPtr, ok := bVal.(*uint)
			if !ok || bPtr == nil || *bPtr != record.BranchID {
				return fiber.NewError(fiber.StatusForbidden, "Bu kayda erişim yetkiniz yok")
			}
		}

		if err := database.DB.Delete(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydı silinemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &record.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sales_record",
				EntityID:    record.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Satış kaydı silindi: %s - %.2f TL", record.Date.Format("2006-01-02"), record.GrossAmount),
				Before:      record,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
