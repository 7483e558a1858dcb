package invoice

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
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type InvoiceLineRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`   // satın alma biriminde
	Unit      string  `json:"unit"`       // boşsa ürünün satın alma birimi kullanılır
	UnitPrice float64 `json:"unit_price"` // satın alma birimi başına fiyat
}

type CreateInvoiceRequest struct {
	SupplierID uint                 `json:"supplier_id"`
	Number     string               `json:"number"`
	Date       string               `json:"date"` // "2025-12-09"
	Note       string               `json:"note"`
	Lines      []InvoiceLineRequest `json:"lines"`
	BranchID   *uint                `json:"branch_id"` // super_admin için
}

type UpdateInvoiceRequest struct {
	SupplierID *uint                `json:"supplier_id"`
	Number     *string              `json:"number"`
	Date       *string              `json:"date"`
	Note       *string              `json:"note"`
	Lines      []InvoiceLineRequest `json:"lines"` // gönderilirse satırların tamamı değişir
}

type InvoiceLineResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type InvoiceResponse struct {
	ID          uint                  `json:"id"`
	BranchID    uint                  `json:"branch_id"`
	SupplierID  uint                  `json:"supplier_id"`
	Supplier    string                `json:"supplier"`
	Number      string                `json:"number"`
	Date        string                `json:"date"`
	Status      string                `json:"status"`
	TotalAmount float64               `json:"total_amount"`
	Note        string                `json:"note"`
	PostedAt    *string               `json:"posted_at"`
	Lines       []InvoiceLineResponse `json:"lines"`
	CreatedAt   string                `json:"created_at"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round6(v float64) float64 { return math.Round(v*1000000) / 1000000 }

// branch_admin yalnızca kendi şubesinin faturasına dokunabilir
func checkInvoiceAccess(c *fiber.Ctx, inv models.Invoice) error {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if ok && role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil || *bPtr != inv.BranchID {
			return fiber.NewError(fiber.StatusForbidden, "Bu faturaya erişim yetkiniz yok")
		}
	}
	return nil
}

func validateInvoiceLines(lines []InvoiceLineRequest) error {
	if len(lines) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "En az bir fatura satırı eklenmelidir")
	}
	for i, l := range lines {
		if l.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%d. satırda product_id zorunlu", i+1))
		}
		if l.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%d. satırda quantity 0'dan büyük olmalı", i+1))
		}
		if l.UnitPrice <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%d. satırda unit_price 0'dan büyük olmalı", i+1))
		}
	}
	return nil
}

// buildInvoiceLines: satır ürünlerini tek sorguda doğrular, satır toplamlarını
// sunucu tarafında hesaplar. Boş birim, ürünün satın alma birimine düşer.
func buildInvoiceLines(lines []InvoiceLineRequest) ([]models.InvoiceLine, float64, error) {
	idSet := map[uint]bool{}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if !idSet[l.ProductID] {
			idSet[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	var products []models.Product
	if err := database.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, 0, fiber.NewError(fiber.StatusInternalServerError, "Ürünler yüklenemedi")
	}
	prodMap := make(map[uint]models.Product, len(products))
	for _, p := range products {
		prodMap[p.ID] = p
	}

	out := make([]models.InvoiceLine, 0, len(lines))
	var total float64
	for i, l := range lines {
		p, ok := prodMap[l.ProductID]
		if !ok {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%d. satırda ürün bulunamadı: %d", i+1, l.ProductID))
		}

		unit := uom.Normalize(l.Unit)
		if unit == "" {
			unit = uom.Normalize(p.PurchaseUnit)
		}

		lineTotal := round2(l.Quantity * l.UnitPrice)
		out = append(out, models.InvoiceLine{
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			Unit:       unit,
			UnitPrice:  l.UnitPrice,
			TotalPrice: lineTotal,
		})
		total += lineTotal
	}

	return out, round2(total), nil
}

func productNamesFor(ids []uint) map[uint]string {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	var products []models.Product
	if err := database.DB.Select("id, name").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return names
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}

func toInvoiceResponse(inv models.Invoice, supplierName string, productNames map[uint]string) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: productNames[l.ProductID],
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.TotalPrice,
		})
	}

	resp := InvoiceResponse{
		ID:          inv.ID,
		BranchID:    inv.BranchID,
		SupplierID:  inv.SupplierID,
		Supplier:    supplierName,
		Number:      inv.Number,
		Date:        inv.Date.Format("2006-01-02"),
		Status:      string(inv.Status),
		TotalAmount: inv.TotalAmount,
		Note:        inv.Note,
		Lines:       lines,
		CreatedAt:   inv.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if inv.PostedAt != nil {
		s := inv.PostedAt.Format("2006-01-02 15:04:05")
		resp.PostedAt = &s
	}
	return resp
}

func lineProductIDs(inv models.Invoice) []uint {
	idSet := map[uint]bool{}
	ids := make([]uint, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		if !idSet[l.ProductID] {
			idSet[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	return ids
}

// -------------------------
// Invoice CRUD (taslak)
// -------------------------

// POST /api/invoices
func CreateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		if body.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id zorunlu")
		}
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ? AND branch_id = ?", body.SupplierID, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi bulunamadı")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		if err := validateInvoiceLines(body.Lines); err != nil {
			return err
		}
		lines, total, err := buildInvoiceLines(body.Lines)
		if err != nil {
			return err
		}

		inv := models.Invoice{
			BranchID:    branchID,
			SupplierID:  body.SupplierID,
			Number:      strings.TrimSpace(body.Number),
			Date:        d,
			Status:      models.InvoiceDraft,
			TotalAmount: total,
			Note:        body.Note,
			Lines:       lines,
		}

		if err := database.DB.Create(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura oluşturulamadı")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &inv.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Fatura taslağı eklendi: %s - %d satır, %.2f TL", supplier.Name, len(inv.Lines), inv.TotalAmount),
				Before:      nil,
				After:       inv,
			})
		}

		names := productNamesFor(lineProductIDs(inv))
		return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(inv, supplier.Name, names))
	}
}

// GET /api/invoices?from=...&to=...&supplier_id=...&status=...
func ListInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Invoice{}).
			Preload("Supplier").
			Preload("Lines").
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
		if status := c.Query("status"); status != "" {
			if status != string(models.InvoiceDraft) && status != string(models.InvoicePosted) {
				return fiber.NewError(fiber.StatusBadRequest, "status 'draft' veya 'posted' olmalı")
			}
			dbq = dbq.Where("status = ?", status)
		}

		var invoices []models.Invoice
		if err := dbq.Order("date desc, id desc").Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Faturalar listelenemedi")
		}

		// Tüm satırların ürün adları tek sorguda
		idSet := map[uint]bool{}
		ids := []uint{}
		for _, inv := range invoices {
			for _, l := range inv.Lines {
				if !idSet[l.ProductID] {
					idSet[l.ProductID] = true
					ids = append(ids, l.ProductID)
				}
			}
		}
		names := productNamesFor(ids)

		resp := make([]InvoiceResponse, 0, len(invoices))
		for _, inv := range invoices {
			resp = append(resp, toInvoiceResponse(inv, inv.Supplier.Name, names))
		}

		return c.JSON(resp)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var inv models.Invoice
		if err := database.DB.Preload("Supplier").Preload("Lines").First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		if err := checkInvoiceAccess(c, inv); err != nil {
			return err
		}

		names := productNamesFor(lineProductIDs(inv))
		return c.JSON(toInvoiceResponse(inv, inv.Supplier.Name, names))
	}
}

// PUT /api/invoices/:id
// Sadece taslak faturalar düzenlenebilir. lines gönderilirse satırların tamamı değişir.
func UpdateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var inv models.Invoice
		if err := database.DB.Preload("Lines").First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		if err := checkInvoiceAccess(c, inv); err != nil {
			return err
		}

		if inv.Status == models.InvoicePosted {
			return fiber.NewError(fiber.StatusConflict, "Stoğa işlenmiş fatura düzenlenemez")
		}

		var body UpdateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := inv

		updates := map[string]interface{}{}

		if body.SupplierID != nil {
			var supplier models.Supplier
			if err := database.DB.First(&supplier, "id = ? AND branch_id = ?", *body.SupplierID, inv.BranchID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi bulunamadı")
			}
			updates["supplier_id"] = *body.SupplierID
		}
		if body.Number != nil {
			updates["number"] = strings.TrimSpace(*body.Number)
		}
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			updates["date"] = d
		}
		if body.Note != nil {
			updates["note"] = *body.Note
		}

		var newLines []models.InvoiceLine
		if body.Lines != nil {
			if err := validateInvoiceLines(body.Lines); err != nil {
				return err
			}
			lines, total, err := buildInvoiceLines(body.Lines)
			if err != nil {
				return err
			}
			newLines = lines
			updates["total_amount"] = total
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if len(updates) > 0 {
			if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Fatura güncellenemedi")
			}
		}

		if body.Lines != nil {
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLine{}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Fatura satırları silinemedi")
			}
			for i := range newLines {
				newLines[i].InvoiceID = inv.ID
			}
			if err := tx.Create(&newLines).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Fatura satırları kaydedilemedi")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		var updated models.Invoice
		if err := database.DB.Preload("Supplier").Preload("Lines").First(&updated, "id = ?", inv.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura yüklenemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &updated.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    updated.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Fatura taslağı güncellendi: %d satır, %.2f TL", len(updated.Lines), updated.TotalAmount),
				Before:      before,
				After:       updated,
			})
		}

		names := productNamesFor(lineProductIDs(updated))
		return c.JSON(toInvoiceResponse(updated, updated.Supplier.Name, names))
	}
}

// DELETE /api/invoices/:id
func DeleteInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var inv models.Invoice
		if err := database.DB.Preload("Lines").First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		if err := checkInvoiceAccess(c, inv); err != nil {
			return err
		}

		if inv.Status == models.InvoicePosted {
			return fiber.NewError(fiber.StatusConflict, "Stoğa işlenmiş fatura silinemez")
		}

		if err := database.DB.Select("Lines").Delete(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura silinemedi")
		}

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &inv.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Fatura taslağı silindi: %.2f TL", inv.TotalAmount),
				Before:      inv,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Faturayı stoğa işle
// -------------------------

// POST /api/invoices/:id/post
// Her satırın miktarını taban birime çevirip invoice_in hareketi yazar,
// ürünün son birim maliyetini günceller. İşlenen fatura değiştirilemez.
func PostInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var inv models.Invoice
		if err := database.DB.Preload("Supplier").Preload("Lines").First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		if err := checkInvoiceAccess(c, inv); err != nil {
			return err
		}

		if inv.Status == models.InvoicePosted {
			return fiber.NewError(fiber.StatusConflict, "Fatura zaten stoğa işlenmiş")
		}
		if len(inv.Lines) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satırı olmayan fatura stoğa işlenemez")
		}

		// Ürünler ve dönüşümler tek seferde
		ids := lineProductIDs(inv)
		var products []models.Product
		if err := database.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler yüklenemedi")
		}
		prodMap := make(map[uint]models.Product, len(products))
		for _, p := range products {
			prodMap[p.ID] = p
		}

		var convRows []models.UnitConversion
		if err := database.DB.Where("product_id IN ?", ids).Find(&convRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Birim dönüşümleri yüklenemedi")
		}
		convMap := make(map[uint][]uom.ItemConversion)
		for _, cv := range convRows {
			convMap[cv.ProductID] = append(convMap[cv.ProductID], uom.ItemConversion{
				FromUnit: cv.FromUnit,
				ToUnit:   cv.ToUnit,
				Factor:   cv.Factor,
			})
		}

		// Önce tüm satırların dönüşümleri çözülür; tek satır bile çözülemezse
		// hiçbir hareket yazılmaz
		type postLine struct {
			line     models.InvoiceLine
			product  models.Product
			baseQty  float64
			unitCost float64 // taban birim başına
		}
		posts := make([]postLine, 0, len(inv.Lines))
		var convErrors []string

		for i, line := range inv.Lines {
			p, ok := prodMap[line.ProductID]
			if !ok {
				convErrors = append(convErrors, fmt.Sprintf("%d. satırda ürün bulunamadı: %d", i+1, line.ProductID))
				continue
			}

			convs := convMap[p.ID]
			// Satın alma katsayısı da bir dönüşüm kenarıdır: 1 satın alma birimi = PurchaseFactor taban birim
			if p.PurchaseFactor > 0 && uom.Normalize(p.PurchaseUnit) != uom.Normalize(p.BaseUnit) {
				convs = append(convs, uom.ItemConversion{FromUnit: p.PurchaseUnit, ToUnit: p.BaseUnit, Factor: p.PurchaseFactor})
			}

			baseQty, ok := uom.Convert(line.Quantity, line.Unit, p.BaseUnit, convs)
			if !ok || baseQty <= 0 {
				convErrors = append(convErrors, fmt.Sprintf("%d. satır (%s): '%s' -> '%s' dönüşümü tanımsız",
					i+1, p.Name, uom.Normalize(line.Unit), uom.Normalize(p.BaseUnit)))
				continue
			}

			posts = append(posts, postLine{
				line:     line,
				product:  p,
				baseQty:  baseQty,
				unitCost: round6(line.TotalPrice / baseQty),
			})
		}

		if len(convErrors) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				"Birim dönüşümü eksik, fatura stoğa işlenemedi: "+strings.Join(convErrors, "; "))
		}

		before := inv
		displayNumber := inv.Number
		if displayNumber == "" {
			displayNumber = fmt.Sprintf("#%d", inv.ID)
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		for _, pl := range posts {
			movement := models.StockMovement{
				BranchID:  inv.BranchID,
				ProductID: pl.line.ProductID,
				Date:      inv.Date,
				Type:      models.MovementInvoiceIn,
				Quantity:  pl.baseQty,
				UnitCost:  pl.unitCost,
				RefType:   "invoice",
				RefID:     inv.ID,
				Note:      fmt.Sprintf("Fatura %s", displayNumber),
			}
			if err := tx.Create(&movement).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi yazılamadı")
			}

			if err := tx.Model(&models.Product{}).Where("id = ?", pl.line.ProductID).
				Update("last_unit_cost", pl.unitCost).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Ürün maliyeti güncellenemedi")
			}
		}

		now := time.Now()
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
			"status":    models.InvoicePosted,
			"posted_at": now,
		}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura güncellenemedi")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		inv.Status = models.InvoicePosted
		inv.PostedAt = &now

		// Audit log
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				BranchID:    &inv.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Fatura stoğa işlendi: %s - %d satır, %.2f TL", displayNumber, len(inv.Lines), inv.TotalAmount),
				Before:      before,
				After:       inv,
			})
		}

		integrations.Emit(inv.BranchID, models.WebhookInvoicePosted, map[string]interface{}{
			"invoice_id":   inv.ID,
			"number":       inv.Number,
			"supplier_id":  inv.SupplierID,
			"supplier":     inv.Supplier.Name,
			"date":         inv.Date.Format("2006-01-02"),
			"total_amount": inv.TotalAmount,
			"line_count":   len(inv.Lines),
		})

		names := productNamesFor(lineProductIDs(inv))
		return c.JSON(toInvoiceResponse(inv, inv.Supplier.Name, names))
	}
}
