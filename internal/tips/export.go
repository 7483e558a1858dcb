package tips

import (
	"fmt"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// -------------------------------------------------
// GET /api/tip-pools/:id/export
// Kapalı havuzun ödeme listesini Excel olarak indirir
// -------------------------------------------------
func ExportTipPoolHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz havuz ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var pool models.TipPool
		if err := database.DB.Preload("Shares").First(&pool, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bahşiş havuzu bulunamadı")
		}

		if pool.Status != models.TipPoolClosed {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece kapalı havuz dışa aktarılabilir")
		}

		var emps []models.Employee
		database.DB.Where("branch_id = ?", branchID).Find(&emps)
		empByID := make(map[uint]models.Employee, len(emps))
		for _, e := range emps {
			empByID[e.ID] = e
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Bahşiş"
		f.SetSheetName("Sheet1", sheet)

		f.SetCellValue(sheet, "A1", fmt.Sprintf("Bahşiş Ödeme Listesi: %s - %s",
			pool.PeriodStart.Format("2006-01-02"), pool.PeriodEnd.Format("2006-01-02")))
		f.SetCellValue(sheet, "A2", fmt.Sprintf("Yöntem: %s / Toplam: %.2f TL", pool.Method, pool.TotalAmount))

		headers := []string{"Personel", "Rol", "Baz", "Tutar (TL)", "İmza"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 4)
			f.SetCellValue(sheet, cell, h)
		}

		row := 5
		var total float64
		for _, s := range pool.Shares {
			emp := empByID[s.EmployeeID]
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), emp.Name)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), emp.Role)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.Basis)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.Amount)
			total += s.Amount
			row++
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), "TOPLAM")
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row+1), total)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		filename := fmt.Sprintf("bahsis_%s_%s.xlsx",
			pool.PeriodStart.Format("2006-01-02"), pool.PeriodEnd.Format("2006-01-02"))

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
