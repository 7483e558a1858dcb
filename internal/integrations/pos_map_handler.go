package integrations

import (
	"strings"

	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

type CreatePOSItemMapRequest struct {
	POSName    string  `json:"pos_name"`
	ProductID  uint    `json:"product_id"`
	QtyPerSale float64 `json:"qty_per_sale"`
	Unit       string  `json:"unit"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type UpdatePOSItemMapRequest struct {
	POSName    *string  `json:"pos_name"`
	ProductID  *uint    `json:"product_id"`
	QtyPerSale *float64 `json:"qty_per_sale"`
	Unit       *string  `json:"unit"`
}

type POSItemMapResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	POSName     string  `json:"pos_name"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	QtyPerSale  float64 `json:"qty_per_sale"`
	Unit        string  `json:"unit"`
}

func toPOSItemMapResponse(m models.POSItemMap) POSItemMapResponse {
	return POSItemMapResponse{
		ID:          m.ID,
		BranchID:    m.BranchID,
		POSName:     m.POSName,
		ProductID:   m.ProductID,
		ProductName: m.Product.Name,
		QtyPerSale:  m.QtyPerSale,
		Unit:        m.Unit,
	}
}

// checkPOSItemMapAccess: branch_admin sadece kendi şubesinin eşleştirmesine dokunabilir
func checkPOSItemMapAccess(c *fiber.Ctx, mapping *models.POSItemMap) error {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}
	if role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil || *bPtr != mapping.BranchID {
			return fiber.NewError(fiber.StatusForbidden, "Bu eşleştirmeye erişim yetkiniz yok")
		}
	}
	return nil
}

// -------------------------------------------------
// POST /api/pos-item-maps
// -------------------------------------------------
func CreatePOSItemMapHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePOSItemMapRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		body.POSName = strings.TrimSpace(body.POSName)
		if body.POSName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "pos_name zorunlu")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.QtyPerSale <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "qty_per_sale 0'dan büyük olmalı")
		}
		unit := uom.Normalize(body.Unit)
		if unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "unit zorunlu")
		}

		var product models.Product
		if err := database.DB.First(&product, body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		var count int64
		database.DB.Model(&models.POSItemMap{}).
			Where("branch_id = ? AND LOWER(pos_name) = LOWER(?)", branchID, body.POSName).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu POS kalemi için eşleştirme zaten var")
		}

		mapping := models.POSItemMap{
			BranchID:   branchID,
			POSName:    body.POSName,
			ProductID:  body.ProductID,
			QtyPerSale: body.QtyPerSale,
			Unit:       unit,
		}
		if err := database.DB.Create(&mapping).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Eşleştirme oluşturulamadı: "+err.Error())
		}
		mapping.Product = product

		return c.Status(fiber.StatusCreated).JSON(toPOSItemMapResponse(mapping))
	}
}

// -------------------------------------------------
// GET /api/pos-item-maps
// -------------------------------------------------
func ListPOSItemMapsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var mappings []models.POSItemMap
		if err := database.DB.Preload("Product").
			Where("branch_id = ?", branchID).
			Order("pos_name asc").
			Find(&mappings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Eşleştirmeler alınamadı")
		}

		resp := make([]POSItemMapResponse, 0, len(mappings))
		for _, m := range mappings {
			resp = append(resp, toPOSItemMapResponse(m))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/pos-item-maps/:id
// -------------------------------------------------
func UpdatePOSItemMapHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz eşleştirme ID")
		}

		var mapping models.POSItemMap
		if err := database.DB.Preload("Product").First(&mapping, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Eşleştirme bulunamadı")
		}
		if err := checkPOSItemMapAccess(c, &mapping); err != nil {
			return err
		}

		var body UpdatePOSItemMapRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]interface{}{}
		if body.POSName != nil {
			name := strings.TrimSpace(*body.POSName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "pos_name boş olamaz")
			}
			var count int64
			database.DB.Model(&models.POSItemMap{}).
				Where("branch_id = ? AND LOWER(pos_name) = LOWER(?) AND id != ?", mapping.BranchID, name, mapping.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Bu POS kalemi için eşleştirme zaten var")
			}
			updates["pos_name"] = name
		}
		if body.ProductID != nil {
			var product models.Product
			if err := database.DB.First(&product, *body.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
			}
			updates["product_id"] = *body.ProductID
		}
		if body.QtyPerSale != nil {
			if *body.QtyPerSale <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "qty_per_sale 0'dan büyük olmalı")
			}
			updates["qty_per_sale"] = *body.QtyPerSale
		}
		if body.Unit != nil {
			unit := uom.Normalize(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "unit boş olamaz")
			}
			updates["unit"] = unit
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&models.POSItemMap{}).Where("id = ?", mapping.ID).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Eşleştirme güncellenemedi: "+err.Error())
			}
		}

		if err := database.DB.Preload("Product").First(&mapping, mapping.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Eşleştirme alınamadı")
		}
		return c.JSON(toPOSItemMapResponse(mapping))
	}
}

// -------------------------------------------------
// DELETE /api/pos-item-maps/:id
// -------------------------------------------------
func DeletePOSItemMapHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz eşleştirme ID")
		}

		var mapping models.POSItemMap
		if err := database.DB.First(&mapping, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Eşleştirme bulunamadı")
		}
		if err := checkPOSItemMapAccess(c, &mapping); err != nil {
			return err
		}

		if err := database.DB.Delete(&mapping).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Eşleştirme silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Eşleştirme silindi"})
	}
}
