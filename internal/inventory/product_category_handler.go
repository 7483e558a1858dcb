package inventory

import (
	"strings"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductCategoryResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProductCount int64  `json:"product_count"`
	CreatedAt    string `json:"created_at"`
}

type CreateProductCategoryRequest struct {
	Name string `json:"name"`
}

type UpdateProductCategoryRequest struct {
	Name *string `json:"name"`
}

func categoryProductCount(categoryID uint) int64 {
	var count int64
	database.DB.Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count)
	return count
}

// GET /api/product-categories  (auth olan herkes)
func ListProductCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.ProductCategory
		if err := database.DB.Order("name asc").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}

		// Ürün sayıları tek sorguda
		type countRow struct {
			CategoryID uint
			Cnt        int64
		}
		var rows []countRow
		database.DB.Model(&models.Product{}).
			Select("category_id, COUNT(*) AS cnt").
			Where("category_id IS NOT NULL").
			Group("category_id").
			Scan(&rows)
		counts := make(map[uint]int64, len(rows))
		for _, r := range rows {
			counts[r.CategoryID] = r.Cnt
		}

		res := make([]ProductCategoryResponse, 0, len(categories))
		for _, cat := range categories {
			res = append(res, ProductCategoryResponse{
				ID:           cat.ID,
				Name:         cat.Name,
				ProductCount: counts[cat.ID],
				CreatedAt:    cat.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/product-categories
func CreateProductCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori adı zorunlu")
		}

		var exists int64
		database.DB.Model(&models.ProductCategory{}).
			Where("LOWER(name) = LOWER(?)", body.Name).
			Count(&exists)
		if exists > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu isimde bir kategori zaten var")
		}

		cat := models.ProductCategory{
			Name: body.Name,
		}

		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(ProductCategoryResponse{
			ID:        cat.ID,
			Name:      cat.Name,
			CreatedAt: cat.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// PUT /api/admin/product-categories/:id
func UpdateProductCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.ProductCategory
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		var body UpdateProductCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori adı boş olamaz")
			}

			var exists int64
			database.DB.Model(&models.ProductCategory{}).
				Where("LOWER(name) = LOWER(?) AND id != ?", name, cat.ID).
				Count(&exists)
			if exists > 0 {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir kategori zaten var")
			}

			cat.Name = name
		}

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori güncellenemedi")
		}

		return c.JSON(ProductCategoryResponse{
			ID:           cat.ID,
			Name:         cat.Name,
			ProductCount: categoryProductCount(cat.ID),
			CreatedAt:    cat.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// DELETE /api/admin/product-categories/:id
func DeleteProductCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.ProductCategory
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		if count := categoryProductCount(cat.ID); count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu kategoriye ait ürünler var, önce ürünleri taşıyın")
		}

		if err := database.DB.Delete(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
