package invoice

import (
	"fmt"
	"strings"
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

type CreateSupplierPaymentRequest struct {
	SupplierID  uint    `json:"supplier_id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // "2025-12-09"
	Description string  `json:"description"`
	BranchID    *uint   `json:"branch_id"` // super_admin için
}

type SupplierPaymentResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	SupplierID  uint    `json:"supplier_id"`
	Supplier    string  `json:"supplier"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

type SupplierBalanceRow struct {
	SupplierID    uint    `json:"supplier_id"`
	SupplierName  string  `json:"supplier_name"`
	TotalInvoiced float64 `json:"total_invoiced"` // stoğa işlenmiş fatura toplamı
	TotalPaid     float64 `json:"total_paid"`
	Balance       float64 `json:"balance"` // kalan borç
}

type MonthlyPurchaseRow struct {
	SupplierID   uint    `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	InvoiceCount int64   `json:"invoice_count"`
	TotalAmount  float64 `json:"total_amount"`
}

// -------------------------
// Supplier Payment CRUD
// -------------------------

// POST /api/supplier-payments
func CreateSupplierPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id zorunlu")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ? AND branch_id = ?", body.SupplierID, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi bulunamadı")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		payment := models.SupplierPayment{
			BranchID:    branchID,
			SupplierID:  body.SupplierID,
			Amount:      body.Amount,
			Date:        d,
			Description: strings.TrimSpace(body.Description),
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
				EntityType:  "supplier_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Tedarikçi ödemesi eklendi: %s - %.2f TL", supplier.Name, payment.Amount),
				Before:      nil,
				After:       payment,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(SupplierPaymentResponse{
			ID:          payment.ID,
			BranchID:    payment.BranchID,
			SupplierID:  payment.SupplierID,
			Supplier:    supplier.Name,
			Amount:      payment.Amount,
			Date:        payment.Date.Format("2006-01-02"),
			Description: payment.Description,
			CreatedAt:   payment.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/supplier-payments?from=...&to=...&supplier_id=...
func ListSupplierPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.SupplierPayment{}).
			Preload("Supplier").
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
		if sidStr := c.Query("supplier_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "supplier_id geçersiz")
			}
			dbq = dbq.Where("supplier_id = ?", sid)
		}

		var payments []models.SupplierPayment
		if err := dbq.Order("date desc, id desc").Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}

		resp := make([]SupplierPaymentResponse, 0, len(payments))
		for _, p := range payments {
			resp = append(resp, SupplierPaymentResponse{
				ID:          p.ID,
				BranchID:    p.BranchID,
				SupplierID:  p.SupplierID,
				Supplier:    p.Supplier.Name,
				Amount:      p.Amount,
				Date:        p.Date.Format("2006-01-02"),
				Description: p.Description,
				CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}

// DELETE /api/supplier-payments/:id
func DeleteSupplierPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var payment models.SupplierPayment
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
				EntityType:  "supplier_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Tedarikçi ödemesi silindi: %.2f TL", payment.Amount),
				Before:      payment,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Bakiye ve Aylık Özet
// -------------------------

// GET /api/suppliers/balances
// Bakiye = stoğa işlenmiş fatura toplamı - ödemeler. Taslaklar borca sayılmaz.
func SupplierBalancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var suppliers []models.Supplier
		if err := database.DB.Where("branch_id = ?", branchID).Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		type sumRow struct {
			SupplierID uint    `gorm:"column:supplier_id"`
			Total      float64 `gorm:"column:total"`
		}

		var invoicedRows []sumRow
		if err := database.DB.Model(&models.Invoice{}).
			Select("supplier_id, COALESCE(SUM(total_amount), 0) as total").
			Where("branch_id = ? AND status = ?", branchID, models.InvoicePosted).
			Group("supplier_id").
			Scan(&invoicedRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura toplamları hesaplanamadı")
		}

		var paidRows []sumRow
		if err := database.DB.Model(&models.SupplierPayment{}).
			Select("supplier_id, COALESCE(SUM(amount), 0) as total").
			Where("branch_id = ?", branchID).
			Group("supplier_id").
			Scan(&paidRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme toplamları hesaplanamadı")
		}

		invoicedMap := make(map[uint]float64, len(invoicedRows))
		for _, r := range invoicedRows {
			invoicedMap[r.SupplierID] = r.Total
		}
		paidMap := make(map[uint]float64, len(paidRows))
		for _, r := range paidRows {
			paidMap[r.SupplierID] = r.Total
		}

		rows := make([]SupplierBalanceRow, 0, len(suppliers))
		var totalBalance float64
		for _, s := range suppliers {
			invoiced := invoicedMap[s.ID]
			paid := paidMap[s.ID]
			balance := round2(invoiced - paid)
			rows = append(rows, SupplierBalanceRow{
				SupplierID:    s.ID,
				SupplierName:  s.Name,
				TotalInvoiced: invoiced,
				TotalPaid:     paid,
				Balance:       balance,
			})
			totalBalance += balance
		}

		return c.JSON(fiber.Map{
			"branch_id":     branchID,
			"total_balance": round2(totalBalance),
			"rows":          rows,
		})
	}
}

// GET /api/invoices/summary/monthly?year=2025&month=12
// Tedarikçi bazında aylık alım toplamı (sadece stoğa işlenmiş faturalar)
func MonthlyPurchaseSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
		}

		loc := time.Now().Location()
		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		lastDay := firstDay.AddDate(0, 1, -1)

		type aggRow struct {
			SupplierID   uint    `gorm:"column:supplier_id"`
			InvoiceCount int64   `gorm:"column:invoice_count"`
			TotalAmount  float64 `gorm:"column:total_amount"`
		}
		var aggRows []aggRow

		if err := database.DB.Model(&models.Invoice{}).
			Select("supplier_id, COUNT(*) as invoice_count, COALESCE(SUM(total_amount), 0) as total_amount").
			Where("branch_id = ? AND status = ? AND date >= ? AND date <= ?", branchID, models.InvoicePosted, firstDay, lastDay).
			Group("supplier_id").
			Scan(&aggRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Aylık alım özeti hesaplanamadı")
		}

		supplierIDs := make([]uint, 0, len(aggRows))
		for _, r := range aggRows {
			supplierIDs = append(supplierIDs, r.SupplierID)
		}

		var suppliers []models.Supplier
		if len(supplierIDs) > 0 {
			if err := database.DB.Where("id IN ?", supplierIDs).Find(&suppliers).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler yüklenemedi")
			}
		}
		supplierMap := make(map[uint]models.Supplier, len(suppliers))
		for _, s := range suppliers {
			supplierMap[s.ID] = s
		}

		rows := make([]MonthlyPurchaseRow, 0, len(aggRows))
		var grandTotal float64
		for _, r := range aggRows {
			s, ok := supplierMap[r.SupplierID]
			if !ok {
				continue
			}
			rows = append(rows, MonthlyPurchaseRow{
				SupplierID:   r.SupplierID,
				SupplierName: s.Name,
				InvoiceCount: r.InvoiceCount,
				TotalAmount:  r.TotalAmount,
			})
			grandTotal += r.TotalAmount
		}

		return c.JSON(fiber.Map{
			"branch_id":   branchID,
			"year":        year,
			"month":       month,
			"rows":        rows,
			"grand_total": round2(grandTotal),
		})
	}
}
