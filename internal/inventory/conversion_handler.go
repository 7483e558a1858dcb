package inventory

import (
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

type CreateConversionRequest struct {
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
	Factor   float64 `json:"factor"` // 1 from_unit = factor to_unit
}

// GET /api/products/:id/conversions
func ListConversionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var convs []models.UnitConversion
		if err := database.DB.Where("product_id = ?", p.ID).Order("id asc").Find(&convs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dönüşümler listelenemedi")
		}

		res := make([]ConversionResponse, 0, len(convs))
		for _, conv := range convs {
			res = append(res, ConversionResponse{
				ID:       conv.ID,
				FromUnit: conv.FromUnit,
				ToUnit:   conv.ToUnit,
				Factor:   conv.Factor,
			})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/products/:id/conversions
func CreateConversionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body CreateConversionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		fromUnit := uom.Normalize(body.FromUnit)
		toUnit := uom.Normalize(body.ToUnit)
		if fromUnit == "" || toUnit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "from_unit ve to_unit zorunlu")
		}
		if fromUnit == toUnit {
			return fiber.NewError(fiber.StatusBadRequest, "Birimler aynı olamaz")
		}
		if body.Factor <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Çarpan 0'dan büyük olmalı")
		}

		// Aynı çift için ikinci tanım kafa karıştırır (ters yön de dahil)
		var existing models.UnitConversion
		if err := database.DB.Where(
			"product_id = ? AND ((from_unit = ? AND to_unit = ?) OR (from_unit = ? AND to_unit = ?))",
			p.ID, fromUnit, toUnit, toUnit, fromUnit,
		).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu birim çifti için dönüşüm zaten tanımlı")
		}

		conv := models.UnitConversion{
			ProductID: p.ID,
			FromUnit:  fromUnit,
			ToUnit:    toUnit,
			Factor:    body.Factor,
		}
		if err := database.DB.Create(&conv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dönüşüm oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(ConversionResponse{
			ID:       conv.ID,
			FromUnit: conv.FromUnit,
			ToUnit:   conv.ToUnit,
			Factor:   conv.Factor,
		})
	}
}

// DELETE /api/admin/conversions/:id
func DeleteConversionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var conv models.UnitConversion
		if err := database.DB.First(&conv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Dönüşüm bulunamadı")
		}

		if err := database.DB.Delete(&conv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dönüşüm silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
