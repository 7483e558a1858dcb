package recipe

import (
	"fmt"
	"strings"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RecipeIngredientRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Note      string  `json:"note"`
}

type CreateRecipeRequest struct {
	Name         string                    `json:"name"`
	ProductID    uint                      `json:"product_id"` // çıktı ürünü (yarı mamul)
	YieldQty     float64                   `json:"yield_qty"`
	YieldUnit    string                    `json:"yield_unit"`
	Instructions string                    `json:"instructions"`
	Ingredients  []RecipeIngredientRequest `json:"ingredients"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type UpdateRecipeRequest struct {
	Name         *string                   `json:"name"`
	YieldQty     *float64                  `json:"yield_qty"`
	YieldUnit    *string                   `json:"yield_unit"`
	Instructions *string                   `json:"instructions"`
	IsActive     *bool                     `json:"is_active"`
	Ingredients  []RecipeIngredientRequest `json:"ingredients"` // verilirse tüm liste değişir
}

type RecipeIngredientResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Note        string  `json:"note"`
}

type RecipeResponse struct {
	ID           uint                       `json:"id"`
	BranchID     uint                       `json:"branch_id"`
	Name         string                     `json:"name"`
	ProductID    uint                       `json:"product_id"`
	ProductName  string                     `json:"product_name"`
	YieldQty     float64                    `json:"yield_qty"`
	YieldUnit    string                     `json:"yield_unit"`
	Instructions string                     `json:"instructions"`
	IsActive     bool                       `json:"is_active"`
	Ingredients  []RecipeIngredientResponse `json:"ingredients"`
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

func validateIngredients(ings []RecipeIngredientRequest) error {
	for i, ing := range ings {
		if ing.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%d. malzemede product_id zorunlu", i+1))
		}
		if ing.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%d. malzemede miktar 0'dan büyük olmalı", i+1))
		}
		if strings.TrimSpace(ing.Unit) == "" {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%d. malzemede birim zorunlu", i+1))
		}
	}
	return nil
}

func toRecipeResponse(rec models.PrepRecipe, productNames map[uint]string) RecipeResponse {
	resp := RecipeResponse{
		ID:           rec.ID,
		BranchID:     rec.BranchID,
		Name:         rec.Name,
		ProductID:    rec.ProductID,
		ProductName:  productNames[rec.ProductID],
		YieldQty:     rec.YieldQty,
		YieldUnit:    rec.YieldUnit,
		Instructions: rec.Instructions,
		IsActive:     rec.IsActive,
		Ingredients:  make([]RecipeIngredientResponse, 0, len(rec.Ingredients)),
	}
	for _, ing := range rec.Ingredients {
		resp.Ingredients = append(resp.Ingredients, RecipeIngredientResponse{
			ID:          ing.ID,
			ProductID:   ing.ProductID,
			ProductName: productNames[ing.ProductID],
			Quantity:    ing.Quantity,
			Unit:        ing.Unit,
			Note:        ing.Note,
		})
	}
	return resp
}

func productNamesFor(rec models.PrepRecipe) map[uint]string {
	ids := []uint{rec.ProductID}
	for _, ing := range rec.Ingredients {
		ids = append(ids, ing.ProductID)
	}
	var products []models.Product
	database.DB.Where("id IN ?", ids).Find(&products)
	names := make(map[uint]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}

// -------------------------------------------------
// POST /api/recipes
// -------------------------------------------------
func CreateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Reçete adı zorunlu")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.YieldQty < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Verim miktarı negatif olamaz")
		}
		if strings.TrimSpace(body.YieldUnit) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Verim birimi zorunlu")
		}
		if err := validateIngredients(body.Ingredients); err != nil {
			return err
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		// Çıktı ürünü yarı mamul olmalı; üretim bu ürünün stoğuna girer
		var outProduct models.Product
		if err := database.DB.First(&outProduct, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Çıktı ürünü bulunamadı")
		}
		if !outProduct.IsPrepped {
			return fiber.NewError(fiber.StatusBadRequest, "Çıktı ürünü yarı mamul (is_prepped) olarak işaretlenmeli")
		}

		rec := models.PrepRecipe{
			BranchID:     branchID,
			Name:         body.Name,
			ProductID:    body.ProductID,
			YieldQty:     body.YieldQty,
			YieldUnit:    body.YieldUnit,
			Instructions: body.Instructions,
			IsActive:     true,
		}
		for _, ing := range body.Ingredients {
			rec.Ingredients = append(rec.Ingredients, models.RecipeIngredient{
				ProductID: ing.ProductID,
				Quantity:  ing.Quantity,
				Unit:      ing.Unit,
				Note:      ing.Note,
			})
		}

		if err := database.DB.Create(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete oluşturulamadı")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &rec.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "prep_recipe",
				EntityID:    rec.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Reçete eklendi: %s (%d malzeme)", rec.Name, len(rec.Ingredients)),
				Before:      nil,
				After:       rec,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toRecipeResponse(rec, productNamesFor(rec)))
	}
}

// -------------------------------------------------
// GET /api/recipes?active=true
// -------------------------------------------------
func ListRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Ingredients").Where("branch_id = ?", branchID)

		if c.Query("active") == "true" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var recipes []models.PrepRecipe
		if err := dbq.Order("name asc").Find(&recipes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçeteler listelenemedi")
		}

		// Tüm ürün adları tek sorguda
		idSet := map[uint]bool{}
		for _, rec := range recipes {
			idSet[rec.ProductID] = true
			for _, ing := range rec.Ingredients {
				idSet[ing.ProductID] = true
			}
		}
		ids := make([]uint, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		var products []models.Product
		if len(ids) > 0 {
			database.DB.Where("id IN ?", ids).Find(&products)
		}
		names := make(map[uint]string, len(products))
		for _, p := range products {
			names[p.ID] = p.Name
		}

		resp := make([]RecipeResponse, 0, len(recipes))
		for _, rec := range recipes {
			resp = append(resp, toRecipeResponse(rec, names))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/recipes/:id
// -------------------------------------------------
func GetRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz reçete ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var rec models.PrepRecipe
		if err := database.DB.Preload("Ingredients").First(&rec, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		return c.JSON(toRecipeResponse(rec, productNamesFor(rec)))
	}
}

// -------------------------------------------------
// GET /api/recipes/:id/cost?scale=2
// Maliyet dökümü; hiçbir şey yazmaz
// -------------------------------------------------
func CostRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz reçete ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		scale := 1.0
		if sStr := c.Query("scale"); sStr != "" {
			if _, err := fmt.Sscan(sStr, &scale); err != nil || scale <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "scale 0'dan büyük bir sayı olmalı")
			}
		}

		var rec models.PrepRecipe
		if err := database.DB.Preload("Ingredients").First(&rec, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		input, err := LoadCostInput(branchID, rec)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Maliyet verileri yüklenemedi")
		}

		return c.JSON(ComputeCost(rec, scale, input))
	}
}

// -------------------------------------------------
// PUT /api/recipes/:id
// -------------------------------------------------
func UpdateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz reçete ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var rec models.PrepRecipe
		if err := database.DB.Preload("Ingredients").First(&rec, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		var body UpdateRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := rec

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Reçete adı boş olamaz")
			}
			rec.Name = name
		}
		if body.YieldQty != nil {
			if *body.YieldQty < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Verim miktarı negatif olamaz")
			}
			rec.YieldQty = *body.YieldQty
		}
		if body.YieldUnit != nil {
			if strings.TrimSpace(*body.YieldUnit) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Verim birimi boş olamaz")
			}
			rec.YieldUnit = *body.YieldUnit
		}
		if body.Instructions != nil {
			rec.Instructions = *body.Instructions
		}
		if body.IsActive != nil {
			rec.IsActive = *body.IsActive
		}

		if body.Ingredients != nil {
			if err := validateIngredients(body.Ingredients); err != nil {
				return err
			}
		}

		// Malzeme listesi değişiyorsa eskiyi sil, yeniyi yaz; tek transaction
		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Model(&models.PrepRecipe{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
			"name":         rec.Name,
			"yield_qty":    rec.YieldQty,
			"yield_unit":   rec.YieldUnit,
			"instructions": rec.Instructions,
			"is_active":    rec.IsActive,
		}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete güncellenemedi")
		}

		if body.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", rec.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler güncellenemedi")
			}
			newIngs := make([]models.RecipeIngredient, 0, len(body.Ingredients))
			for _, ing := range body.Ingredients {
				newIngs = append(newIngs, models.RecipeIngredient{
					RecipeID:  rec.ID,
					ProductID: ing.ProductID,
					Quantity:  ing.Quantity,
					Unit:      ing.Unit,
					Note:      ing.Note,
				})
			}
			if len(newIngs) > 0 {
				if err := tx.Create(&newIngs).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler güncellenemedi")
				}
			}
			rec.Ingredients = newIngs
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete güncellenemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &rec.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "prep_recipe",
				EntityID:    rec.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Reçete güncellendi: %s", rec.Name),
				Before:      before,
				After:       rec,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toRecipeResponse(rec, productNamesFor(rec)))
	}
}

// -------------------------------------------------
// DELETE /api/recipes/:id
// Üretimi olan reçete silinemez (geçmiş bozulur), pasife alınmalı
// -------------------------------------------------
func DeleteRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz reçete ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var rec models.PrepRecipe
		if err := database.DB.First(&rec, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		var runCount int64
		database.DB.Model(&models.ProductionRun{}).Where("recipe_id = ?", rec.ID).Count(&runCount)
		if runCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Üretim kaydı olan reçete silinemez, pasife alın")
		}

		// Malzemeler cascade ile silinir
		if err := database.DB.Select("Ingredients").Delete(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete silinemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &rec.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "prep_recipe",
				EntityID:    rec.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Reçete silindi: %s", rec.Name),
				Before:      rec,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Reçete silindi"})
	}
}
