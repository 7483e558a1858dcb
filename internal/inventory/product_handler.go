package inventory

import (
	"strings"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

type ConversionResponse struct {
	ID       uint    `json:"id"`
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
	Factor   float64 `json:"factor"`
}

type ProductResponse struct {
	ID             uint                 `json:"id"`
	Name           string               `json:"name"`
	StockCode      string               `json:"stock_code"`
	CategoryID     *uint                `json:"category_id"`
	CategoryName   string               `json:"category_name,omitempty"`
	BaseUnit       string               `json:"base_unit"`
	PurchaseUnit   string               `json:"purchase_unit"`
	PurchaseFactor float64              `json:"purchase_factor"`
	LastUnitCost   float64              `json:"last_unit_cost"`
	ReorderLevel   float64              `json:"reorder_level"`
	IsPrepped      bool                 `json:"is_prepped"`
	IsActive       bool                 `json:"is_active"`
	Conversions    []ConversionResponse `json:"conversions,omitempty"`
}

type CreateProductRequest struct {
	Name           string  `json:"name"`
	StockCode      string  `json:"stock_code"` // Opsiyonel
	CategoryID     *uint   `json:"category_id"`
	BaseUnit       string  `json:"base_unit"`
	PurchaseUnit   string  `json:"purchase_unit"`
	PurchaseFactor float64 `json:"purchase_factor"` // 1 satın alma birimi = kaç taban birim
	ReorderLevel   float64 `json:"reorder_level"`
	IsPrepped      bool    `json:"is_prepped"`
}

type UpdateProductRequest struct {
	Name           *string  `json:"name"`
	StockCode      *string  `json:"stock_code"`
	CategoryID     *uint    `json:"category_id"`
	PurchaseUnit   *string  `json:"purchase_unit"`
	PurchaseFactor *float64 `json:"purchase_factor"`
	ReorderLevel   *float64 `json:"reorder_level"`
	IsPrepped      *bool    `json:"is_prepped"`
	IsActive       *bool    `json:"is_active"`
}

// isFamilyBaseUnit: birim bir ailenin taban birimi mi (g, ml veya adet)
func isFamilyBaseUnit(unit string) bool {
	fam := uom.FamilyOf(unit)
	return fam != uom.FamilyUnknown && unit == uom.BaseUnit(fam)
}

func toProductResponse(p models.Product) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		StockCode:      p.StockCode,
		CategoryID:     p.CategoryID,
		BaseUnit:       p.BaseUnit,
		PurchaseUnit:   p.PurchaseUnit,
		PurchaseFactor: p.PurchaseFactor,
		LastUnitCost:   p.LastUnitCost,
		ReorderLevel:   p.ReorderLevel,
		IsPrepped:      p.IsPrepped,
		IsActive:       p.IsActive,
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	return resp
}

// GET /api/products?active=true&category_id=2&q=domates
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).Preload("Category")

		if c.Query("active") == "true" {
			dbq = dbq.Where("is_active = ?", true)
		}
		if catID := c.QueryInt("category_id"); catID > 0 {
			dbq = dbq.Where("category_id = ?", catID)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("name ILIKE ? OR stock_code ILIKE ?", like, like)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, toProductResponse(p))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id (dönüşümleriyle birlikte)
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.Preload("Category").First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var convs []models.UnitConversion
		database.DB.Where("product_id = ?", p.ID).Order("id asc").Find(&convs)

		resp := toProductResponse(p)
		resp.Conversions = make([]ConversionResponse, 0, len(convs))
		for _, conv := range convs {
			resp.Conversions = append(resp.Conversions, ConversionResponse{
				ID:       conv.ID,
				FromUnit: conv.FromUnit,
				ToUnit:   conv.ToUnit,
				Factor:   conv.Factor,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/products (sadece super_admin)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.StockCode = strings.TrimSpace(body.StockCode)
		body.PurchaseUnit = strings.TrimSpace(body.PurchaseUnit)

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}

		// Taban birim reçetelerin ortak dili; aile tabanlarından biri olmalı
		baseUnit := uom.Normalize(body.BaseUnit)
		if !isFamilyBaseUnit(baseUnit) {
			return fiber.NewError(fiber.StatusBadRequest, "Taban birim g, ml veya adet olmalı")
		}

		if body.PurchaseUnit == "" {
			body.PurchaseUnit = baseUnit
		}
		if body.PurchaseFactor == 0 {
			body.PurchaseFactor = 1
		}
		if body.PurchaseFactor < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satın alma çarpanı 0'dan büyük olmalı")
		}
		if body.ReorderLevel < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Kritik seviye negatif olamaz")
		}

		// İsim unique kontrolü
		var existing models.Product
		if err := database.DB.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ürün adı zaten kullanılıyor")
		}

		// Stok kodu unique kontrolü (boş değilse)
		if body.StockCode != "" {
			if err := database.DB.Where("stock_code = ?", body.StockCode).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bu stok kodu zaten kullanılıyor")
			}
		}

		if body.CategoryID != nil {
			var cat models.ProductCategory
			if err := database.DB.First(&cat, "id = ?", *body.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
			}
		}

		p := models.Product{
			Name:           body.Name,
			StockCode:      body.StockCode,
			CategoryID:     body.CategoryID,
			BaseUnit:       baseUnit,
			PurchaseUnit:   body.PurchaseUnit,
			PurchaseFactor: body.PurchaseFactor,
			ReorderLevel:   body.ReorderLevel,
			IsPrepped:      body.IsPrepped,
			IsActive:       true,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			var existing models.Product
			if err := database.DB.Where("name = ? AND id != ?", name, p.ID).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bu ürün adı zaten kullanılıyor")
			}
			p.Name = name
		}
		if body.StockCode != nil {
			code := strings.TrimSpace(*body.StockCode)
			if code != "" {
				var existing models.Product
				if err := database.DB.Where("stock_code = ? AND id != ?", code, p.ID).First(&existing).Error; err == nil {
					return fiber.NewError(fiber.StatusBadRequest, "Bu stok kodu zaten kullanılıyor")
				}
			}
			p.StockCode = code
		}
		if body.CategoryID != nil {
			if *body.CategoryID == 0 {
				p.CategoryID = nil
			} else {
				var cat models.ProductCategory
				if err := database.DB.First(&cat, "id = ?", *body.CategoryID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
				}
				p.CategoryID = body.CategoryID
			}
		}
		if body.PurchaseUnit != nil {
			unit := strings.TrimSpace(*body.PurchaseUnit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Satın alma birimi boş olamaz")
			}
			p.PurchaseUnit = unit
		}
		if body.PurchaseFactor != nil {
			if *body.PurchaseFactor <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Satın alma çarpanı 0'dan büyük olmalı")
			}
			p.PurchaseFactor = *body.PurchaseFactor
		}
		if body.ReorderLevel != nil {
			if *body.ReorderLevel < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kritik seviye negatif olamaz")
			}
			p.ReorderLevel = *body.ReorderLevel
		}
		if body.IsPrepped != nil {
			p.IsPrepped = *body.IsPrepped
		}
		if body.IsActive != nil {
			p.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		p.Category = nil
		if p.CategoryID != nil {
			var cat models.ProductCategory
			if err := database.DB.First(&cat, "id = ?", *p.CategoryID).Error; err == nil {
				p.Category = &cat
			}
		}
		return c.JSON(toProductResponse(p))
	}
}

// DELETE /api/admin/products/:id
// Hareket görmüş ürün silinemez; geçmiş raporlar bozulur
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var count int64
		database.DB.Model(&models.StockMovement{}).Where("product_id = ?", p.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Stok hareketi olan ürün silinemez, pasife alın")
		}
		database.DB.Model(&models.StockCount{}).Where("product_id = ?", p.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Sayım kaydı olan ürün silinemez, pasife alın")
		}
		database.DB.Model(&models.RecipeIngredient{}).Where("product_id = ?", p.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Reçetede kullanılan ürün silinemez")
		}
		database.DB.Model(&models.PrepRecipe{}).Where("product_id = ?", p.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Reçete çıktısı olan ürün silinemez")
		}
		database.DB.Model(&models.InvoiceLine{}).Where("product_id = ?", p.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Fatura kaydı olan ürün silinemez, pasife alın")
		}

		// Dönüşümler ürünle birlikte gider
		database.DB.Where("product_id = ?", p.ID).Delete(&models.UnitConversion{})
		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
