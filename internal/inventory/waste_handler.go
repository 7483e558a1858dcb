package inventory

import (
	"fmt"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

type CreateWasteEntryRequest struct {
	Date      string  `json:"date"`       // "2025-12-09"
	ProductID uint    `json:"product_id"` // zorunlu
	Quantity  float64 `json:"quantity"`   // zorunlu, zayiat miktarı
	Unit      string  `json:"unit"`       // boşsa taban birim
	Note      string  `json:"note"`       // zorunlu: hangi garson/mutfakçı sebep oldu
	BranchID  *uint   `json:"branch_id"`  // super_admin için
}

type WasteEntryResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	BaseUnit    string  `json:"base_unit"`
	Date        string  `json:"date"`
	Quantity    float64 `json:"quantity"` // taban birim
	UnitCost    float64 `json:"unit_cost"`
	TotalCost   float64 `json:"total_cost"`
	Note        string  `json:"note"`
	CreatedAt   string  `json:"created_at"`
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfoForWaste(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserRoleKey)
	_, ok := userIDVal.(models.UserRole)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	userIDVal2 := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal2.(uint)
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

func toWasteResponse(e models.WasteEntry, p models.Product) WasteEntryResponse {
	return WasteEntryResponse{
		ID:          e.ID,
		BranchID:    e.BranchID,
		ProductID:   e.ProductID,
		ProductName: p.Name,
		BaseUnit:    p.BaseUnit,
		Date:        e.Date.Format("2006-01-02"),
		Quantity:    e.Quantity,
		UnitCost:    e.UnitCost,
		TotalCost:   e.TotalCost,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/waste-entries
// Zayiat kaydıyla birlikte stok çıkış hareketi yazılır
func CreateWasteEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWasteEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		// Validasyonlar
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunludur")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalıdır")
		}
		if body.Note == "" || len(body.Note) < 3 {
			return fiber.NewError(fiber.StatusBadRequest, "note zorunludur ve en az 3 karakter olmalıdır (hangi garson/mutfakçı sebep oldu)")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		// Branch kontrolü
		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Şube bulunamadı (ID: %d)", branchID))
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		// Ürün kontrolü
		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		// Miktarı taban birime çevir
		qty := body.Quantity
		if body.Unit != "" {
			var convRows []models.UnitConversion
			database.DB.Where("product_id = ?", product.ID).Find(&convRows)
			convs := make([]uom.ItemConversion, 0, len(convRows))
			for _, cr := range convRows {
				convs = append(convs, uom.ItemConversion{FromUnit: cr.FromUnit, ToUnit: cr.ToUnit, Factor: cr.Factor})
			}
			converted, ok := uom.Convert(body.Quantity, body.Unit, product.BaseUnit, convs)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Birim dönüştürülemedi: %s -> %s", body.Unit, product.BaseUnit))
			}
			qty = converted
		}

		// Zayiat girişi + stok çıkışı tek transaction
		entry := models.WasteEntry{
			BranchID:  branchID,
			ProductID: body.ProductID,
			Date:      d,
			Quantity:  qty,
			UnitCost:  product.LastUnitCost,
			TotalCost: qty * product.LastUnitCost,
			Note:      body.Note,
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Create(&entry).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Zayiat girişi oluşturulamadı")
		}

		movement := models.StockMovement{
			BranchID:  branchID,
			ProductID: product.ID,
			Date:      d,
			Type:      models.MovementWaste,
			Quantity:  -qty,
			UnitCost:  product.LastUnitCost,
			RefType:   "waste_entry",
			RefID:     entry.ID,
			Note:      body.Note,
		}
		if err := tx.Create(&movement).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi yazılamadı")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zayiat girişi oluşturulamadı")
		}

		// Audit log
		userID, userName, _, err := getUserInfoForWaste(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &branchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "waste_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Zayiat girişi: %s - %.2f %s (Not: %s)", product.Name, entry.Quantity, product.BaseUnit, entry.Note),
				Before:      nil,
				After:       entry,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toWasteResponse(entry, product))
	}
}

// GET /api/waste-entries
func ListWasteEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		// Tarih filtresi (opsiyonel)
		dateFrom := c.Query("date_from")
		dateTo := c.Query("date_to")

		query := database.DB.Preload("Product").
			Where("branch_id = ?", branchID)

		if dateFrom != "" {
			if d, err := time.Parse("2006-01-02", dateFrom); err == nil {
				query = query.Where("date >= ?", d)
			}
		}
		if dateTo != "" {
			if d, err := time.Parse("2006-01-02", dateTo); err == nil {
				// Tarih sonuna kadar (23:59:59)
				d = d.Add(24*time.Hour - time.Second)
				query = query.Where("date <= ?", d)
			}
		}
		if productID := c.QueryInt("product_id"); productID > 0 {
			query = query.Where("product_id = ?", productID)
		}

		var entries []models.WasteEntry
		if err := query.Order("date DESC, created_at DESC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zayiat girişleri listelenemedi")
		}

		resp := make([]WasteEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, toWasteResponse(e, e.Product))
		}

		return c.JSON(resp)
	}
}

// GET /api/waste-entries/:id
func GetWasteEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var entry models.WasteEntry
		if err := database.DB.Preload("Product").First(&entry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Zayiat girişi bulunamadı")
		}

		return c.JSON(toWasteResponse(entry, entry.Product))
	}
}

// DELETE /api/waste-entries/:id
// Bağlı stok hareketi de silinir
func DeleteWasteEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var entry models.WasteEntry
		if err := database.DB.First(&entry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Zayiat girişi bulunamadı")
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Where("ref_type = ? AND ref_id = ?", "waste_entry", entry.ID).Delete(&models.StockMovement{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi silinemedi")
		}
		if err := tx.Delete(&entry).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Zayiat girişi silinemedi")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zayiat girişi silinemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfoForWaste(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "waste_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Zayiat girişi silindi: %s - %.2f", entry.Note, entry.Quantity),
				Before:      entry,
				After:       nil,
			})
		}

		return c.JSON(fiber.Map{
			"message": "Zayiat girişi başarıyla silindi",
		})
	}
}
