package integrations

import (
	"fmt"
	"strings"
	"time"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/uom"

	"github.com/gofiber/fiber/v2"
)

type POSSalesRow struct {
	Channel     string  `json:"channel"` // dinein, takeout, delivery
	GrossAmount float64 `json:"gross_amount"`
	TipAmount   float64 `json:"tip_amount"`
	Note        string  `json:"note"`
}

type POSItemRow struct {
	POSName string  `json:"pos_name"`
	Count   float64 `json:"count"` // satış adedi
}

type ImportPOSSalesRequest struct {
	Date    string        `json:"date"` // gün sonu tarihi "2006-01-02"
	Records []POSSalesRow `json:"records"`
	Items   []POSItemRow  `json:"items"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type POSImportResult struct {
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	DepletedItems  int      `json:"depleted_items"`
	UnmatchedItems []string `json:"unmatched_items"`
	Errors         []string `json:"errors"`
	Message        string   `json:"message"`
}

// POST /api/integrations/pos/import
// POS gün sonu verisini işler: kanal toplamları satış kaydına, kalem adetleri
// eşleştirme tablosu üzerinden stok düşümüne dönüşür. Aynı günün tekrar
// yüklenmesi kaydı günceller ve o günün eski POS düşümlerini yeniden yazar,
// çift düşüm oluşmaz.
func ImportPOSSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ImportPOSSalesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		if body.Date == "" {
			return fiber.NewError(fiber.StatusBadRequest, "date zorunlu")
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		if len(body.Records) == 0 && len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "records veya items gönderilmelidir")
		}

		for i, r := range body.Records {
			switch models.SalesChannel(r.Channel) {
			case models.SalesChannelDineIn, models.SalesChannelTakeout, models.SalesChannelDelivery:
			default:
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("%d. satır: channel 'dinein', 'takeout' veya 'delivery' olmalı", i+1))
			}
			if r.GrossAmount < 0 || r.TipAmount < 0 {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("%d. satır: tutarlar negatif olamaz", i+1))
			}
		}

		result := POSImportResult{
			UnmatchedItems: make([]string, 0),
			Errors:         make([]string, 0),
		}

		// Kanal toplamları: aynı gün + kanal için POS kaydı varsa üzerine yaz
		for _, r := range body.Records {
			var existing models.SalesRecord
			err := database.DB.Where("branch_id = ? AND date = ? AND channel = ? AND source = ?",
				branchID, date, r.Channel, models.SalesSourcePOS).First(&existing).Error
			if err == nil {
				updates := map[string]interface{}{
					"gross_amount": r.GrossAmount,
					"tip_amount":   r.TipAmount,
					"note":         r.Note,
				}
				if err := database.DB.Model(&models.SalesRecord{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("%s kanalı güncellenemedi: %v", r.Channel, err))
					continue
				}
				result.Updated++
				continue
			}

			record := models.SalesRecord{
				BranchID:    branchID,
				Date:        date,
				Channel:     models.SalesChannel(r.Channel),
				GrossAmount: r.GrossAmount,
				TipAmount:   r.TipAmount,
				Source:      models.SalesSourcePOS,
				Note:        r.Note,
			}
			if err := database.DB.Create(&record).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s kanalı kaydedilemedi: %v", r.Channel, err))
				continue
			}
			result.Created++
		}

		// Kalem düşümleri: tekrar yüklemede çift düşüm olmasın diye önce
		// o günün POS düşümleri temizlenir
		if len(body.Items) > 0 {
			if err := database.DB.Where("branch_id = ? AND date = ? AND type = ? AND ref_type = ?",
				branchID, date, models.MovementSaleDepletion, "pos_import").
				Delete(&models.StockMovement{}).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Önceki düşümler temizlenemedi: "+err.Error())
			}
		}

		for _, item := range body.Items {
			name := strings.TrimSpace(item.POSName)
			if name == "" || item.Count <= 0 {
				continue
			}

			var mapping models.POSItemMap
			if err := database.DB.Preload("Product").
				Where("branch_id = ? AND LOWER(pos_name) = LOWER(?)", branchID, name).
				First(&mapping).Error; err != nil {
				result.UnmatchedItems = append(result.UnmatchedItems, name)
				continue
			}

			product := mapping.Product
			qty := item.Count * mapping.QtyPerSale

			var convRows []models.UnitConversion
			database.DB.Where("product_id = ?", product.ID).Find(&convRows)
			convs := make([]uom.ItemConversion, 0, len(convRows))
			for _, cr := range convRows {
				convs = append(convs, uom.ItemConversion{FromUnit: cr.FromUnit, ToUnit: cr.ToUnit, Factor: cr.Factor})
			}
			if product.PurchaseFactor > 0 && uom.Normalize(product.PurchaseUnit) != uom.Normalize(product.BaseUnit) {
				convs = append(convs, uom.ItemConversion{FromUnit: product.PurchaseUnit, ToUnit: product.BaseUnit, Factor: product.PurchaseFactor})
			}

			baseQty, ok := uom.Convert(qty, mapping.Unit, product.BaseUnit, convs)
			if !ok || baseQty <= 0 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: '%s' -> '%s' dönüşümü tanımsız", name, uom.Normalize(mapping.Unit), uom.Normalize(product.BaseUnit)))
				continue
			}

			movement := models.StockMovement{
				BranchID:  branchID,
				ProductID: product.ID,
				Date:      date,
				Type:      models.MovementSaleDepletion,
				Quantity:  -baseQty,
				UnitCost:  product.LastUnitCost,
				RefType:   "pos_import",
				RefID:     mapping.ID,
				Note:      fmt.Sprintf("POS: %s x %.2f", name, item.Count),
			}
			if err := database.DB.Create(&movement).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: düşüm kaydedilemedi: %v", name, err))
				continue
			}
			result.DepletedItems++
		}

		result.Message = fmt.Sprintf("%d satış kaydı oluşturuldu, %d güncellendi, %d kalem düşüldü, %d kalem eşleşmedi.",
			result.Created, result.Updated, result.DepletedItems, len(result.UnmatchedItems))
		return c.JSON(result)
	}
}
