package expense

import (
	"fmt"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateExpensePaymentRequest struct {
	CategoryID  uint    `json:"category_id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // "2025-12-09"
	Description string  `json:"description"`
	BranchID    *uint   `json:"branch_id"` // super_admin için
}

type ExpensePaymentResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	CategoryID  uint    `json:"category_id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// POST /api/expense-payments
func CreateExpensePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpensePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.CategoryID == 0 || body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "category_id ve amount zorunlu, amount > 0 olmalı")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		var cat models.ExpenseCategory
		if err := database.DB.First(&cat, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
		}

		payment := models.ExpensePayment{
			BranchID:    branchID,
			CategoryID:  body.CategoryID,
			Amount:      body.Amount,
			Date:        d,
			Description: body.Description,
		}

		if err := database.DB.Create(&payment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &payment.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Gider ödemesi eklendi: %s - %.2f TL", cat.Name, payment.Amount),
				Before:      nil,
				After:       payment,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(ExpensePaymentResponse{
			ID:          payment.ID,
			BranchID:    payment.BranchID,
			CategoryID:  payment.CategoryID,
			Category:    cat.Name,
			Amount:      payment.Amount,
			Date:        payment.Date.Format("2006-01-02"),
			Description: payment.Description,
			CreatedAt:   payment.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/expense-payments?from=...&to=...&category_id=...
func ListExpensePaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.ExpensePayment{}).
			Preload("Category").
			Where("branch_id = ?", branchID)

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
		if catStr := c.Query("category_id"); catStr != "" {
			var cid uint
			if _, err := fmt.Sscan(catStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "category_id geçersiz")
			}
			dbq = dbq.Where("category_id = ?", cid)
		}

		var payments []models.ExpensePayment
		if err := dbq.Order("date desc, id desc").Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}

		resp := make([]ExpensePaymentResponse, 0, len(payments))
		for _, p := range payments {
			resp = append(resp, ExpensePaymentResponse{
				ID:          p.ID,
				BranchID:    p.BranchID,
				CategoryID:  p.CategoryID,
				Category:    p.Category.Name,
				Amount:      p.Amount,
				Date:        p.Date.Format("2006-01-02"),
				Description: p.Description,
				CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}

// DELETE /api/expense-payments/:id
func DeleteExpensePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var payment models.ExpensePayment
		if err := database.DB.First(&payment, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ödeme bulunamadı")
		}

		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if ok && role == models.RoleBranchAdmin {
			bVal := c.Locals(auth.CtxBranchIDKey)
			bPtr, ok := bVal.(*uint)
			if !ok || bPtr == nil || *bPtr != payment.BranchID {
				return fiber.NewError(fiber.StatusForbidden, "Bu ödemeye erişim yetkiniz yok")
			}
		}

		if err := database.DB.Delete(&payment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme silinemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &payment.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Gider ödemesi silindi: %s - %.2f TL", payment.Date.Format("2006-01-02"), payment.Amount),
				Before:      payment,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
