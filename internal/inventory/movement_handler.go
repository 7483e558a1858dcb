package inventory

import (
	"fmt"
	"strings"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

type CreateAdjustmentRequest struct {
	Date      string  `json:"date"` // boşsa bugün
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"` // işaretli: + giriş, - çıkış
	Unit      string  `json:"unit"`     // boşsa taban birim
	Note      string  `json:"note"`     // zorunlu: düzeltmenin sebebi
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type StockMovementResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	BaseUnit    string  `json:"base_unit"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Quantity    float64 `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	RefType     string  `json:"ref_type,omitempty"`
	RefID       uint    `json:"ref_id,omitempty"`
	Note        string  `json:"note"`
	CreatedAt   string  `json:"created_at"`
}

func toMovementResponse(m models.StockMovement, p models.Product) StockMovementResponse {
	return StockMovementResponse{
		ID:          m.ID,
		BranchID:    m.BranchID,
		ProductID:   m.ProductID,
		ProductName: p.Name,
		BaseUnit:    p.BaseUnit,
		Date:        m.Date.Format("2006-01-02"),
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		RefType:     m.RefType,
		RefID:       m.RefID,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// -------------------------------------------------
// GET /api/stock-movements?from=2025-12-01&to=2025-12-31&product_id=5&type=invoice_in
// -------------------------------------------------
func ListStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Product").Where("branch_id = ?", branchID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from formatı geçersiz (YYYY-MM-DD)")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to formatı geçersiz (YYYY-MM-DD)")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if productID := c.QueryInt("product_id"); productID > 0 {
			dbq = dbq.Where("product_id = ?", productID)
		}
		if mType := c.Query("type"); mType != "" {
			dbq = dbq.Where("type = ?", mType)
		}

		var movements []models.StockMovement
		if err := dbq.Order("date DESC, id DESC").Limit(500).Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		resp := make([]StockMovementResponse, 0, len(movements))
		for _, m := range movements {
			resp = append(resp, toMovementResponse(m, m.Product))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/stock-movements/adjust
// Manuel stok düzeltmesi; sebep notu zorunlu
// -------------------------------------------------
func CreateAdjustmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAdjustmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.Quantity == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar 0 olamaz")
		}
		if strings.TrimSpace(body.Note) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Düzeltme sebebi (note) zorunlu")
		}

		d := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			d = parsed
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		// Miktarı taban birime çevir (işaret korunur)
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

		movement := models.StockMovement{
			BranchID:  branchID,
			ProductID: product.ID,
			Date:      d,
			Type:      models.MovementAdjust,
			Quantity:  qty,
			UnitCost:  product.LastUnitCost,
			Note:      body.Note,
		}
		if err := database.DB.Create(&movement).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareket kaydedilemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &branchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_movement",
				EntityID:    movement.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Stok düzeltmesi: %s %+.2f %s (%s)", product.Name, qty, product.BaseUnit, body.Note),
				Before:      nil,
				After:       movement,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toMovementResponse(movement, product))
	}
}

// -------------------------------------------------
// DELETE /api/stock-movements/:id
// Sadece manuel düzeltme silinebilir; fatura/üretim hareketleri
// kaynak kayıttan yönetilir
// -------------------------------------------------
func DeleteStockMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz hareket ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var movement models.StockMovement
		if err := database.DB.Preload("Product").First(&movement, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hareket bulunamadı")
		}
		if movement.Type != models.MovementAdjust {
			return fiber.NewError(fiber.StatusConflict, "Sadece manuel düzeltme hareketi silinebilir")
		}

		productName := movement.Product.Name
		movement.Product = models.Product{}

		if err := database.DB.Delete(&models.StockMovement{}, "id = ?", movement.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareket silinemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &movement.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_movement",
				EntityID:    movement.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Stok düzeltmesi silindi: %s %+.2f", productName, movement.Quantity),
				Before:      movement,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Hareket silindi"})
	}
}
