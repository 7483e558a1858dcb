package inventory

import (
	"fmt"
	"sort"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StockCountItemRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"` // sayılan miktar (taban birim)
	Note      string  `json:"note"`
}

type CreateStockCountRequest struct {
	Date  string                  `json:"date"` // "2025-12-09"
	Items []StockCountItemRequest `json:"items"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type UpdateStockCountRequest struct {
	Quantity *float64 `json:"quantity"`
	Note     *string  `json:"note"`
}

type StockCountResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	StockCode   string  `json:"stock_code"`
	BaseUnit    string  `json:"base_unit"`
	Date        string  `json:"date"`
	Quantity    float64 `json:"quantity"`
	Note        string  `json:"note"`
	CreatedAt   string  `json:"created_at"`
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

func toStockCountResponse(e models.StockCount, p models.Product) StockCountResponse {
	return StockCountResponse{
		ID:          e.ID,
		BranchID:    e.BranchID,
		ProductID:   e.ProductID,
		ProductName: p.Name,
		StockCode:   p.StockCode,
		BaseUnit:    p.BaseUnit,
		Date:        e.Date.Format("2006-01-02"),
		Quantity:    e.Quantity,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// -------------------------------------------------
// POST /api/stock-counts
// Sayım listesi toplu girilir; her satır ayrı kayıt olur
// -------------------------------------------------
func CreateStockCountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStockCountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir sayım satırı gerekli")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Şube bulunamadı (ID: %d)", branchID))
		}

		// Ürünleri tek sorguda doğrula
		ids := make([]uint, 0, len(body.Items))
		for _, item := range body.Items {
			if item.ProductID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
			}
			if item.Quantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Sayım miktarı negatif olamaz")
			}
			ids = append(ids, item.ProductID)
		}
		var products []models.Product
		database.DB.Where("id IN ?", ids).Find(&products)
		productMap := make(map[uint]models.Product, len(products))
		for _, p := range products {
			productMap[p.ID] = p
		}
		for _, item := range body.Items {
			if _, exists := productMap[item.ProductID]; !exists {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ürün bulunamadı (ID: %d)", item.ProductID))
			}
		}

		userID, userName, _, uErr := getUserInfo(c)

		counts := make([]models.StockCount, 0, len(body.Items))
		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		for _, item := range body.Items {
			entry := models.StockCount{
				BranchID:  branchID,
				ProductID: item.ProductID,
				Date:      d,
				Quantity:  item.Quantity,
				Note:      item.Note,
			}
			if err := tx.Create(&entry).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Sayım kaydedilemedi")
			}
			counts = append(counts, entry)
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sayım kaydedilemedi")
		}

		if uErr == nil {
			for _, entry := range counts {
				p := productMap[entry.ProductID]
				if logErr := audit.WriteLog(audit.LogOptions{
					BranchID:    &branchID,
					UserID:      userID,
					UserName:    userName,
					EntityType:  "stock_count",
					EntityID:    entry.ID,
					Action:      models.AuditActionCreate,
					Description: fmt.Sprintf("Stok sayımı: %s - %.2f %s", p.Name, entry.Quantity, p.BaseUnit),
					Before:      nil,
					After:       entry,
				}); logErr != nil {
					fmt.Printf("Audit log yazılamadı: %v\n", logErr)
				}
			}
		}

		resp := make([]StockCountResponse, 0, len(counts))
		for _, entry := range counts {
			resp = append(resp, toStockCountResponse(entry, productMap[entry.ProductID]))
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/stock-counts?from=2025-12-01&to=2025-12-31&product_id=5
// -------------------------------------------------
func ListStockCountsHandler() fiber.Handler {
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

		var entries []models.StockCount
		if err := dbq.Order("date DESC, created_at DESC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sayımlar listelenemedi")
		}

		resp := make([]StockCountResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, toStockCountResponse(e, e.Product))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/stock-counts/:id
// -------------------------------------------------
func UpdateStockCountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sayım ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var entry models.StockCount
		if err := database.DB.Preload("Product").First(&entry, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sayım kaydı bulunamadı")
		}

		var body UpdateStockCountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := entry

		if body.Quantity != nil {
			if *body.Quantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Sayım miktarı negatif olamaz")
			}
			entry.Quantity = *body.Quantity
		}
		if body.Note != nil {
			entry.Note = *body.Note
		}

		if err := database.DB.Model(&models.StockCount{}).Where("id = ?", entry.ID).Updates(map[string]interface{}{
			"quantity": entry.Quantity,
			"note":     entry.Note,
		}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sayım güncellenemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_count",
				EntityID:    entry.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Sayım güncellendi: %s %.2f -> %.2f", entry.Product.Name, before.Quantity, entry.Quantity),
				Before:      before,
				After:       entry,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toStockCountResponse(entry, entry.Product))
	}
}

// -------------------------------------------------
// DELETE /api/stock-counts/:id
// -------------------------------------------------
func DeleteStockCountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sayım ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var entry models.StockCount
		if err := database.DB.Preload("Product").First(&entry, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sayım kaydı bulunamadı")
		}

		productName := entry.Product.Name
		entry.Product = models.Product{}

		if err := database.DB.Delete(&models.StockCount{}, "id = ?", entry.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sayım silinemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_count",
				EntityID:    entry.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Sayım silindi: %s (%s)", productName, entry.Date.Format("2006-01-02")),
				Before:      entry,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Sayım kaydı silindi"})
	}
}

// -------------------------------------------------
// GET /api/stock/current
// Güncel stok: en son sayım + sonrasında kaydedilen hareketler.
// Sayım listesi sıralaması varsa uygulanır
// -------------------------------------------------
func GetCurrentStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var products []models.Product
		if err := database.DB.Where("is_active = ?", true).Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		// Sıralama bilgisini al (varsa)
		orderMap := make(map[uint]int)
		var sheetOrders []models.CountSheetOrder
		if err := database.DB.Where("branch_id = ?", branchID).Find(&sheetOrders).Error; err == nil {
			for _, order := range sheetOrders {
				orderMap[order.ProductID] = order.OrderIndex
			}
		}

		type CurrentStockRow struct {
			ProductID    uint    `json:"product_id"`
			ProductName  string  `json:"product_name"`
			StockCode    string  `json:"stock_code"`
			BaseUnit     string  `json:"base_unit"`
			Quantity     float64 `json:"quantity"`
			UnitCost     float64 `json:"unit_cost"`
			TotalValue   float64 `json:"total_value"`
			ReorderLevel float64 `json:"reorder_level"`
			LastCount    string  `json:"last_count"`
			OrderIndex   *int    `json:"order_index,omitempty"` // nil ise sıralama yok
		}

		rows := make([]CurrentStockRow, 0, len(products))
		for _, product := range products {
			qty, lastCount := CurrentStock(branchID, product.ID)

			lastCountStr := ""
			if lastCount != nil {
				lastCountStr = lastCount.Date.Format("2006-01-02")
			}

			orderIdx := orderMap[product.ID]
			var orderIdxPtr *int
			if _, hasOrder := orderMap[product.ID]; hasOrder {
				orderIdxPtr = &orderIdx
			}

			rows = append(rows, CurrentStockRow{
				ProductID:    product.ID,
				ProductName:  product.Name,
				StockCode:    product.StockCode,
				BaseUnit:     product.BaseUnit,
				Quantity:     qty,
				UnitCost:     product.LastUnitCost,
				TotalValue:   qty * product.LastUnitCost,
				ReorderLevel: product.ReorderLevel,
				LastCount:    lastCountStr,
				OrderIndex:   orderIdxPtr,
			})
		}

		// Sayım listesi sırası olanlar önce, sonra alfabetik
		sort.Slice(rows, func(i, j int) bool {
			iOrder := rows[i].OrderIndex
			jOrder := rows[j].OrderIndex
			if iOrder != nil && jOrder != nil {
				return *iOrder < *jOrder
			}
			if iOrder != nil {
				return true
			}
			if jOrder != nil {
				return false
			}
			return rows[i].ProductName < rows[j].ProductName
		})

		return c.JSON(rows)
	}
}

// -------------------------------------------------
// GET /api/stock/valuation
// -------------------------------------------------
func StockValuationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		onlyInStock := c.Query("only_in_stock") == "true"
		rows, total, err := ValuationRows(branchID, onlyInStock)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Değerleme hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"branch_id":   branchID,
			"total_value": total,
			"rows":        rows,
		})
	}
}

// -------------------------------------------------
// GET /api/stock/low
// -------------------------------------------------
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		rows, err := LowStockProducts(branchID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kritik stok listesi hesaplanamadı")
		}
		return c.JSON(rows)
	}
}

// -------------------------------------------------
// GET /api/stock-usage/monthly?year=2025&month=12
// Aylık kullanım: Başlangıç sayımı + Ay içi girişler - Bitiş sayımı
// -------------------------------------------------
func GetMonthlyStockUsageHandler() fiber.Handler {
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

		var products []models.Product
		if err := database.DB.Where("is_active = ?", true).Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		type StockUsageRow struct {
			ProductID   uint    `json:"product_id"`
			ProductName string  `json:"product_name"`
			StockCode   string  `json:"stock_code"`
			BaseUnit    string  `json:"base_unit"`
			StartQty    float64 `json:"start_qty"`    // ay başı stok (önceki son sayım)
			IncomingQty float64 `json:"incoming_qty"` // ay içi girişler (fatura + üretim)
			EndQty      float64 `json:"end_qty"`      // ay sonu stok (ay içindeki son sayım)
			UsedQty     float64 `json:"used_qty"`     // harcanan = start + incoming - end
			UsedCost    float64 `json:"used_cost"`    // harcanan * son birim maliyet
		}

		rows := make([]StockUsageRow, 0)
		for _, product := range products {
			// Ay başı stok (ayın ilk gününden önceki en son sayım)
			var startEntry models.StockCount
			startQty := 0.0
			err := database.DB.
				Where("branch_id = ? AND product_id = ? AND date < ?", branchID, product.ID, firstDay).
				Order("date DESC, created_at DESC").
				First(&startEntry).Error
			if err == nil {
				startQty = startEntry.Quantity
			}

			// Ay içi girişler: pozitif hareketler (fatura girişi, üretim verimi, artı düzeltme)
			var incomingQty float64
			database.DB.Model(&models.StockMovement{}).
				Select("COALESCE(SUM(quantity), 0)").
				Where("branch_id = ? AND product_id = ? AND date >= ? AND date <= ? AND quantity > 0",
					branchID, product.ID, firstDay, lastDay).
				Scan(&incomingQty)

			// Ay sonu stok (ay içindeki veya sonrasındaki en son sayım)
			var endEntry models.StockCount
			endQty := 0.0
			err = database.DB.
				Where("branch_id = ? AND product_id = ? AND date >= ?", branchID, product.ID, firstDay).
				Order("date DESC, created_at DESC").
				First(&endEntry).Error
			if err == nil {
				endQty = endEntry.Quantity
			}

			usedQty := startQty + incomingQty - endQty
			if usedQty < 0 {
				usedQty = 0 // Negatif olamaz (muhtemelen veri hatası)
			}

			if startQty == 0 && incomingQty == 0 && endQty == 0 {
				continue
			}

			rows = append(rows, StockUsageRow{
				ProductID:   product.ID,
				ProductName: product.Name,
				StockCode:   product.StockCode,
				BaseUnit:    product.BaseUnit,
				StartQty:    startQty,
				IncomingQty: incomingQty,
				EndQty:      endQty,
				UsedQty:     usedQty,
				UsedCost:    usedQty * product.LastUnitCost,
			})
		}

		return c.JSON(fiber.Map{
			"year":      year,
			"month":     month,
			"branch_id": branchID,
			"rows":      rows,
		})
	}
}

// -------------------------------------------------
// GET /api/stock-usage/between-counts
// Son iki sayım arasındaki kullanım:
// (Önceki sayım + Aradaki girişler) - Son sayım
// -------------------------------------------------
func GetStockUsageBetweenCountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var products []models.Product
		if err := database.DB.Where("is_active = ?", true).Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		type UsageRow struct {
			ProductID         uint    `json:"product_id"`
			ProductName       string  `json:"product_name"`
			BaseUnit          string  `json:"base_unit"`
			PreviousCount     float64 `json:"previous_count"`
			PreviousCountDate string  `json:"previous_count_date"`
			IncomingBetween   float64 `json:"incoming_between"` // iki sayım arası girişler
			CurrentCount      float64 `json:"current_count"`
			CurrentCountDate  string  `json:"current_count_date"`
			Usage             float64 `json:"usage"` // (önceki + girişler) - son
		}

		rows := make([]UsageRow, 0)
		for _, product := range products {
			var counts []models.StockCount
			err := database.DB.
				Where("branch_id = ? AND product_id = ?", branchID, product.ID).
				Order("date DESC, created_at DESC").
				Limit(2).
				Find(&counts).Error
			if err != nil || len(counts) < 2 {
				// En az 2 sayım yoksa kullanım hesaplanamaz
				continue
			}

			currentEntry := counts[0]
			previousEntry := counts[1]

			// İki sayımın kayıt zamanları arasına giren pozitif hareketler
			var incomingQty float64
			database.DB.Model(&models.StockMovement{}).
				Select("COALESCE(SUM(quantity), 0)").
				Where("branch_id = ? AND product_id = ? AND created_at > ? AND created_at < ? AND quantity > 0",
					branchID, product.ID, previousEntry.CreatedAt, currentEntry.CreatedAt).
				Scan(&incomingQty)

			usage := previousEntry.Quantity + incomingQty - currentEntry.Quantity
			if usage < 0 {
				usage = 0 // Negatif olamaz
			}

			rows = append(rows, UsageRow{
				ProductID:         product.ID,
				ProductName:       product.Name,
				BaseUnit:          product.BaseUnit,
				PreviousCount:     previousEntry.Quantity,
				PreviousCountDate: previousEntry.Date.Format("2006-01-02"),
				IncomingBetween:   incomingQty,
				CurrentCount:      currentEntry.Quantity,
				CurrentCountDate:  currentEntry.Date.Format("2006-01-02"),
				Usage:             usage,
			})
		}

		return c.JSON(fiber.Map{
			"branch_id": branchID,
			"rows":      rows,
		})
	}
}
