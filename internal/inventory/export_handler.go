package inventory

import (
	"fmt"
	"time"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/stock/valuation/export
// Güncel stok değerlemesini XLSX olarak indirir
func ExportValuationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		rows, total, err := ValuationRows(branchID, c.Query("only_in_stock") == "true")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Değerleme hesaplanamadı")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Değerleme"
		f.SetSheetName("Sheet1", sheet)

		today := time.Now().Format("2006-01-02")
		f.SetCellValue(sheet, "A1", fmt.Sprintf("Stok Değerleme - %s", today))
		headers := []string{"Ürün", "Stok Kodu", "Birim", "Miktar", "Birim Maliyet", "Toplam Değer", "Son Sayım"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 3)
			f.SetCellValue(sheet, cell, h)
		}

		rowIdx := 4
		for _, row := range rows {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), row.ProductName)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx), row.StockCode)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx), row.BaseUnit)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx), row.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", rowIdx), row.UnitCost)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", rowIdx), row.TotalValue)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", rowIdx), row.LastCount)
			rowIdx++
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), "TOPLAM")
		f.SetCellValue(sheet, fmt.Sprintf("F%d", rowIdx), total)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		filename := fmt.Sprintf("stok_degerleme_%s.xlsx", today)
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}

// GET /api/stock-movements/export?from=2025-12-01&to=2025-12-31
// Hareket defterini XLSX olarak indirir
func ExportMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		fromStr := c.Query("from")
		toStr := c.Query("to")
		if fromStr == "" || toStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "from ve to zorunlu")
		}
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from formatı geçersiz (YYYY-MM-DD)")
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to formatı geçersiz (YYYY-MM-DD)")
		}

		var movements []models.StockMovement
		if err := database.DB.Preload("Product").
			Where("branch_id = ? AND date >= ? AND date <= ?", branchID, from, to).
			Order("date asc, id asc").
			Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Hareketler"
		f.SetSheetName("Sheet1", sheet)

		f.SetCellValue(sheet, "A1", fmt.Sprintf("Stok Hareketleri %s / %s", fromStr, toStr))
		headers := []string{"Tarih", "Ürün", "Tür", "Miktar", "Birim", "Birim Maliyet", "Tutar", "Not"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 3)
			f.SetCellValue(sheet, cell, h)
		}

		rowIdx := 4
		for _, m := range movements {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), m.Date.Format("2006-01-02"))
			f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx), m.Product.Name)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx), string(m.Type))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx), m.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", rowIdx), m.Product.BaseUnit)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", rowIdx), m.UnitCost)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", rowIdx), m.Quantity*m.UnitCost)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", rowIdx), m.Note)
			rowIdx++
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		filename := fmt.Sprintf("stok_hareketleri_%s_%s.xlsx", fromStr, toStr)
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
