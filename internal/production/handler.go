package production

import (
	"fmt"
	"math"
	"strings"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/integrations"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/recipe"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

type CreateRunRequest struct {
	RecipeID uint    `json:"recipe_id"`
	Date     string  `json:"date"` // YYYY-MM-DD, boşsa bugün
	Scale    float64 `json:"scale"`
	Note     string  `json:"note"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type CompleteRunItemRequest struct {
	ProductID uint    `json:"product_id"`
	ActualQty float64 `json:"actual_qty"`
	Unit      string  `json:"unit"` // boşsa taban birim kabul edilir
}

type CompleteRunRequest struct {
	ActualYieldQty  float64                  `json:"actual_yield_qty"`
	ActualYieldUnit string                   `json:"actual_yield_unit"` // boşsa reçetenin verim birimi
	Items           []CompleteRunItemRequest `json:"items"`             // verilmeyen malzemede beklenen miktar kullanılır
	Note            string                   `json:"note"`
}

type RunItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	BaseUnit    string  `json:"base_unit"`
	ExpectedQty float64 `json:"expected_qty"`
	ActualQty   float64 `json:"actual_qty"`
	VarianceQty float64 `json:"variance_qty"` // gerçekleşen - beklenen
	UnitCost    float64 `json:"unit_cost"`
	LineCost    float64 `json:"line_cost"`
}

type RunResponse struct {
	ID            uint              `json:"id"`
	BranchID      uint              `json:"branch_id"`
	RecipeID      uint              `json:"recipe_id"`
	RecipeName    string            `json:"recipe_name"`
	ProductID     uint              `json:"product_id"`
	ProductName   string            `json:"product_name"`
	Date          string            `json:"date"`
	Scale         float64           `json:"scale"`
	Status        string            `json:"status"`
	ExpectedYield float64           `json:"expected_yield"` // taban birim
	ActualYield   float64           `json:"actual_yield"`   // taban birim
	YieldUnit     string            `json:"yield_unit"`     // taban birim adı
	TotalCost     float64           `json:"total_cost"`
	UnitCost      float64           `json:"unit_cost"`
	Note          string            `json:"note"`
	CompletedAt   *string           `json:"completed_at"`
	Items         []RunItemResponse `json:"items,omitempty"`
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

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round6(v float64) float64 {
	return math.Round(v*1000000) / 1000000
}

func toRunResponse(run models.ProductionRun, rec models.PrepRecipe, names map[uint]string, baseUnits map[uint]string, withItems bool) RunResponse {
	resp := RunResponse{
		ID:            run.ID,
		BranchID:      run.BranchID,
		RecipeID:      run.RecipeID,
		RecipeName:    rec.Name,
		ProductID:     rec.ProductID,
		ProductName:   names[rec.ProductID],
		Date:          run.Date.Format("2006-01-02"),
		Scale:         run.Scale,
		Status:        string(run.Status),
		ExpectedYield: run.ExpectedYield,
		ActualYield:   run.ActualYield,
		YieldUnit:     baseUnits[rec.ProductID],
		TotalCost:     run.TotalCost,
		UnitCost:      run.UnitCost,
		Note:          run.Note,
	}
	if run.CompletedAt != nil {
		s := run.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &s
	}
	if withItems {
		resp.Items = make([]RunItemResponse, 0, len(run.Items))
		for _, it := range run.Items {
			item := RunItemResponse{
				ID:          it.ID,
				ProductID:   it.ProductID,
				ProductName: names[it.ProductID],
				BaseUnit:    baseUnits[it.ProductID],
				ExpectedQty: it.ExpectedQty,
				ActualQty:   it.ActualQty,
				UnitCost:    it.UnitCost,
				LineCost:    it.LineCost,
			}
			if run.Status == models.ProductionCompleted {
				item.VarianceQty = round4(it.ActualQty - it.ExpectedQty)
			}
			resp.Items = append(resp.Items, item)
		}
	}
	return resp
}

func productLookups(ids []uint) (map[uint]string, map[uint]string) {
	names := make(map[uint]string, len(ids))
	baseUnits := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, baseUnits
	}
	var products []models.Product
	database.DB.Where("id IN ?", ids).Find(&products)
	for _, p := range products {
		names[p.ID] = p.Name
		baseUnits[p.ID] = p.BaseUnit
	}
	return names, baseUnits
}

// -------------------------------------------------
// POST /api/production-runs
// Beklenen kullanım reçete maliyetinden hesaplanır; birim dönüşümü
// eksikse üretim planlanamaz
// -------------------------------------------------
func CreateProductionRunHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRunRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.RecipeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "recipe_id zorunlu")
		}
		if body.Scale == 0 {
			body.Scale = 1
		}
		if body.Scale <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ölçek 0'dan büyük olmalı")
		}

		runDate := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz (YYYY-MM-DD)")
			}
			runDate = parsed
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		var rec models.PrepRecipe
		if err := database.DB.Preload("Ingredients").First(&rec, "id = ? AND branch_id = ?", body.RecipeID, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}
		if !rec.IsActive {
			return fiber.NewError(fiber.StatusBadRequest, "Pasif reçeteyle üretim planlanamaz")
		}

		input, err := recipe.LoadCostInput(branchID, rec)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Maliyet verileri yüklenemedi")
		}
		costRes := recipe.ComputeCost(rec, body.Scale, input)

		// Dönüşümü eksik malzeme varsa beklenen miktar hesaplanamaz
		var convErrors []string
		for _, item := range costRes.Items {
			if item.Status == string(uom.CostMissingConversion) {
				convErrors = append(convErrors, item.Warning)
			}
		}
		if len(convErrors) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				"Birim dönüşümü eksik, üretim planlanamadı: "+strings.Join(convErrors, "; "))
		}
		if costRes.YieldBaseQty <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Reçete verimi taban birime dönüştürülemedi")
		}

		run := models.ProductionRun{
			BranchID:      branchID,
			RecipeID:      rec.ID,
			Date:          runDate,
			Scale:         body.Scale,
			Status:        models.ProductionPlanned,
			ExpectedYield: costRes.YieldBaseQty,
			Note:          body.Note,
		}
		for _, item := range costRes.Items {
			run.Items = append(run.Items, models.ProductionRunItem{
				ProductID:   item.ProductID,
				ExpectedQty: item.BaseQty,
			})
		}

		if err := database.DB.Create(&run).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kaydı oluşturulamadı")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &run.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "production_run",
				EntityID:    run.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Üretim planlandı: %s x%.2f", rec.Name, run.Scale),
				Before:      nil,
				After:       run,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		ids := []uint{rec.ProductID}
		for _, it := range run.Items {
			ids = append(ids, it.ProductID)
		}
		names, baseUnits := productLookups(ids)
		return c.Status(fiber.StatusCreated).JSON(toRunResponse(run, rec, names, baseUnits, true))
	}
}

// -------------------------------------------------
// GET /api/production-runs?from=2025-01-01&to=2025-01-31&status=planned&recipe_id=3
// -------------------------------------------------
func ListProductionRunsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Recipe").Where("branch_id = ?", branchID)

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
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if recipeID := c.QueryInt("recipe_id"); recipeID > 0 {
			dbq = dbq.Where("recipe_id = ?", recipeID)
		}

		var runs []models.ProductionRun
		if err := dbq.Order("date desc, id desc").Find(&runs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kayıtları listelenemedi")
		}

		ids := make([]uint, 0, len(runs))
		for _, run := range runs {
			ids = append(ids, run.Recipe.ProductID)
		}
		names, baseUnits := productLookups(ids)

		resp := make([]RunResponse, 0, len(runs))
		for _, run := range runs {
			resp = append(resp, toRunResponse(run, run.Recipe, names, baseUnits, false))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/production-runs/:id
// -------------------------------------------------
func GetProductionRunHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz üretim ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var run models.ProductionRun
		if err := database.DB.Preload("Recipe").Preload("Items").First(&run, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
		}

		ids := []uint{run.Recipe.ProductID}
		for _, it := range run.Items {
			ids = append(ids, it.ProductID)
		}
		names, baseUnits := productLookups(ids)
		return c.JSON(toRunResponse(run, run.Recipe, names, baseUnits, true))
	}
}

// -------------------------------------------------
// POST /api/production-runs/:id/complete
// Gerçekleşen miktarlarla stok hareketlerini yazar, verim ürününün
// son birim maliyetini günceller
// -------------------------------------------------
func CompleteProductionRunHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz üretim ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var run models.ProductionRun
		if err := database.DB.Preload("Recipe.Ingredients").Preload("Items").First(&run, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
		}
		if run.Status == models.ProductionCompleted {
			return fiber.NewError(fiber.StatusConflict, "Üretim zaten tamamlanmış")
		}
		if run.Status == models.ProductionCancelled {
			return fiber.NewError(fiber.StatusConflict, "İptal edilmiş üretim tamamlanamaz")
		}

		var body CompleteRunRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ActualYieldQty <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Gerçekleşen verim 0'dan büyük olmalı")
		}

		var outProduct models.Product
		if err := database.DB.First(&outProduct, "id = ?", run.Recipe.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Verim ürünü bulunamadı")
		}

		input, err := recipe.LoadCostInput(branchID, run.Recipe)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Maliyet verileri yüklenemedi")
		}

		// Verimi taban birime çevir
		yieldUnit := body.ActualYieldUnit
		if yieldUnit == "" {
			yieldUnit = run.Recipe.YieldUnit
		}
		actualYieldBase, ok := uom.Convert(body.ActualYieldQty, yieldUnit, outProduct.BaseUnit, input.Conversions[outProduct.ID])
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Verim birimi dönüştürülemedi: %s -> %s", yieldUnit, outProduct.BaseUnit))
		}
		if actualYieldBase <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Gerçekleşen verim 0'dan büyük olmalı")
		}

		// Tamamlama anındaki etkin birim maliyetler (alt reçete maliyeti dahil)
		costRes := recipe.ComputeCost(run.Recipe, run.Scale, input)
		unitCosts := make(map[uint]float64, len(costRes.Items))
		for _, item := range costRes.Items {
			unitCosts[item.ProductID] = item.UnitCost
		}

		// Gövdeden gelen gerçekleşen miktarlar (taban birime çevrilmiş)
		overrides := make(map[uint]float64, len(body.Items))
		for _, bi := range body.Items {
			if bi.ActualQty < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Gerçekleşen miktar negatif olamaz")
			}
			var itemProduct *models.Product
			if p, exists := input.Products[bi.ProductID]; exists {
				itemProduct = &p
			} else {
				var p models.Product
				if err := database.DB.First(&p, "id = ?", bi.ProductID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Malzeme bulunamadı: %d", bi.ProductID))
				}
				itemProduct = &p
			}
			qty := bi.ActualQty
			if bi.Unit != "" {
				converted, ok := uom.Convert(bi.ActualQty, bi.Unit, itemProduct.BaseUnit, input.Conversions[bi.ProductID])
				if !ok {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Birim dönüştürülemedi: %s (%s -> %s)", itemProduct.Name, bi.Unit, itemProduct.BaseUnit))
				}
				qty = converted
			}
			overrides[bi.ProductID] = qty
		}

		before := run
		now := time.Now()

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		totalCost := 0.0
		for i := range run.Items {
			item := &run.Items[i]
			actual := item.ExpectedQty
			if qty, exists := overrides[item.ProductID]; exists {
				actual = qty
			}
			unitCost := unitCosts[item.ProductID]
			item.ActualQty = round4(actual)
			item.UnitCost = unitCost
			item.LineCost = round4(actual * unitCost)
			totalCost += actual * unitCost

			if err := tx.Model(&models.ProductionRunItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
				"actual_qty": item.ActualQty,
				"unit_cost":  item.UnitCost,
				"line_cost":  item.LineCost,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Üretim kalemleri güncellenemedi")
			}

			// Malzeme çıkışı (negatif miktar)
			if item.ActualQty > 0 {
				movement := models.StockMovement{
					BranchID:  branchID,
					ProductID: item.ProductID,
					Date:      run.Date,
					Type:      models.MovementProductionOut,
					Quantity:  -item.ActualQty,
					UnitCost:  item.UnitCost,
					RefType:   "production_run",
					RefID:     run.ID,
					Note:      fmt.Sprintf("Üretim: %s", run.Recipe.Name),
				}
				if err := tx.Create(&movement).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi yazılamadı")
				}
			}
		}

		run.Status = models.ProductionCompleted
		run.ActualYield = round4(actualYieldBase)
		run.TotalCost = round4(totalCost)
		run.UnitCost = round6(totalCost / actualYieldBase)
		run.CompletedAt = &now
		if body.Note != "" {
			run.Note = body.Note
		}

		if err := tx.Model(&models.ProductionRun{}).Where("id = ?", run.ID).Updates(map[string]interface{}{
			"status":       run.Status,
			"actual_yield": run.ActualYield,
			"total_cost":   run.TotalCost,
			"unit_cost":    run.UnitCost,
			"note":         run.Note,
			"completed_at": run.CompletedAt,
		}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim güncellenemedi")
		}

		// Verim girişi
		inMovement := models.StockMovement{
			BranchID:  branchID,
			ProductID: outProduct.ID,
			Date:      run.Date,
			Type:      models.MovementProductionIn,
			Quantity:  run.ActualYield,
			UnitCost:  run.UnitCost,
			RefType:   "production_run",
			RefID:     run.ID,
			Note:      fmt.Sprintf("Üretim verimi: %s", run.Recipe.Name),
		}
		if err := tx.Create(&inMovement).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi yazılamadı")
		}

		// Üretilen ürünün son birim maliyeti bu partiden gelir
		if err := tx.Model(&models.Product{}).Where("id = ?", outProduct.ID).Update("last_unit_cost", run.UnitCost).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün maliyeti güncellenemedi")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim tamamlanamadı")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &run.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "production_run",
				EntityID:    run.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Üretim tamamlandı: %s, verim %.2f %s", run.Recipe.Name, run.ActualYield, outProduct.BaseUnit),
				Before:      before,
				After:       run,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		integrations.Emit(run.BranchID, models.WebhookProductionCompleted, map[string]interface{}{
			"run_id":       run.ID,
			"recipe_id":    run.RecipeID,
			"recipe_name":  run.Recipe.Name,
			"product_id":   outProduct.ID,
			"product_name": outProduct.Name,
			"actual_yield": run.ActualYield,
			"yield_unit":   outProduct.BaseUnit,
			"total_cost":   run.TotalCost,
			"unit_cost":    run.UnitCost,
		})

		ids := []uint{outProduct.ID}
		for _, it := range run.Items {
			ids = append(ids, it.ProductID)
		}
		names, baseUnits := productLookups(ids)
		return c.JSON(toRunResponse(run, run.Recipe, names, baseUnits, true))
	}
}

// -------------------------------------------------
// POST /api/production-runs/:id/cancel
// Sadece planlanan üretim iptal edilebilir
// -------------------------------------------------
func CancelProductionRunHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz üretim ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var run models.ProductionRun
		if err := database.DB.Preload("Recipe").First(&run, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
		}
		if run.Status != models.ProductionPlanned {
			return fiber.NewError(fiber.StatusConflict, "Sadece planlanan üretim iptal edilebilir")
		}

		before := run
		run.Status = models.ProductionCancelled

		if err := database.DB.Model(&models.ProductionRun{}).Where("id = ?", run.ID).Update("status", run.Status).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim iptal edilemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &run.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "production_run",
				EntityID:    run.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Üretim iptal edildi: %s", run.Recipe.Name),
				Before:      before,
				After:       run,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Üretim iptal edildi"})
	}
}

// -------------------------------------------------
// DELETE /api/production-runs/:id
// Tamamlanan üretim silinemez; stok hareketleri geçmişi bozulur
// -------------------------------------------------
func DeleteProductionRunHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz üretim ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var run models.ProductionRun
		if err := database.DB.Preload("Recipe").First(&run, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
		}
		if run.Status == models.ProductionCompleted {
			return fiber.NewError(fiber.StatusConflict, "Tamamlanmış üretim silinemez")
		}

		if err := database.DB.Select("Items").Delete(&run).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim silinemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &run.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "production_run",
				EntityID:    run.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Üretim kaydı silindi: %s", run.Recipe.Name),
				Before:      run,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Üretim kaydı silindi"})
	}
}
