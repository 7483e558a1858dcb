package admin

import (
	"encoding/json"
	"fmt"
	"time"

	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/financial"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateMonthlyReportRequest struct {
	Year     int   `json:"year"`
	Month    int   `json:"month"`
	BranchID *uint `json:"branch_id"` // super_admin için
}

type MonthlyReportResponse struct {
	ID            uint    `json:"id"`
	BranchID      uint    `json:"branch_id"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	ReportDate    string  `json:"report_date"`
	TotalRevenue  float64 `json:"total_revenue"`
	FoodCost      float64 `json:"food_cost"`
	LaborCost     float64 `json:"labor_cost"`
	TipsCollected float64 `json:"tips_collected"`
	WasteCost     float64 `json:"waste_cost"`
	OtherExpenses float64 `json:"other_expenses"`
	NetMargin     float64 `json:"net_margin"`
	CreatedAt     string  `json:"created_at"`
}

// resolveBranchIDFromBodyOrRoleForReport: branch_id'yi body'den veya role'den çöz
func resolveBranchIDFromBodyOrRoleForReport(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
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

func resolveBranchIDFromQueryOrRoleForReport(c *fiber.Ctx) (uint, error) {
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

func toMonthlyReportResponse(r models.MonthlyReport) MonthlyReportResponse {
	return MonthlyReportResponse{
		ID:            r.ID,
		BranchID:      r.BranchID,
		Year:          r.Year,
		Month:         r.Month,
		ReportDate:    r.ReportDate.Format("2006-01-02 15:04:05"),
		TotalRevenue:  r.TotalRevenue,
		FoodCost:      r.FoodCost,
		LaborCost:     r.LaborCost,
		TipsCollected: r.TipsCollected,
		WasteCost:     r.WasteCost,
		OtherExpenses: r.OtherExpenses,
		NetMargin:     r.NetMargin,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/monthly-reports
// Ay kapanışında dondurulmuş rapor kes. Kaynak veriler silinmez,
// rapor o anki hesabın fotoğrafıdır.
func CreateMonthlyReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMonthlyReportRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Year < 2000 || body.Month < 1 || body.Month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz yıl veya ay")
		}

		branchID, err := resolveBranchIDFromBodyOrRoleForReport(c, body.BranchID)
		if err != nil {
			return err
		}

		// Bu ay için rapor zaten var mı kontrol et
		var existingReport models.MonthlyReport
		err = database.DB.Where("branch_id = ? AND year = ? AND month = ?", branchID, body.Year, body.Month).
			First(&existingReport).Error
		if err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ay için rapor zaten oluşturulmuş")
		}

		summary, err := financial.BuildMonthlySummary(branchID, body.Year, body.Month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor verileri hesaplanamadı")
		}

		// Kırılımlar JSONB olarak saklanır
		reportDataJSON, _ := json.Marshal(summary)

		report := models.MonthlyReport{
			BranchID:      branchID,
			Year:          body.Year,
			Month:         body.Month,
			ReportDate:    time.Now(),
			TotalRevenue:  summary.Revenue.Total,
			FoodCost:      summary.FoodCost,
			LaborCost:     summary.Labor.Total,
			TipsCollected: summary.TipsPaidOut,
			WasteCost:     summary.WasteCost,
			OtherExpenses: summary.Other.Total,
			NetMargin:     summary.NetMargin,
			ReportData:    string(reportDataJSON),
		}

		if err := database.DB.Create(&report).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toMonthlyReportResponse(report))
	}
}

// GET /api/admin/monthly-reports
// Raporları listele
func ListMonthlyReportsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRoleForReport(c)
		if err != nil {
			return err
		}

		var reports []models.MonthlyReport
		if err := database.DB.
			Where("branch_id = ?", branchID).
			Order("year DESC, month DESC").
			Find(&reports).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Raporlar listelenemedi")
		}

		resp := make([]MonthlyReportResponse, 0, len(reports))
		for _, r := range reports {
			resp = append(resp, toMonthlyReportResponse(r))
		}

		return c.JSON(resp)
	}
}

// GET /api/admin/monthly-reports/:id
// Rapor detayını getir
func GetMonthlyReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var report models.MonthlyReport
		if err := database.DB.First(&report, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rapor bulunamadı")
		}

		// Branch kontrolü
		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if ok && role == models.RoleBranchAdmin {
			bVal := c.Locals(auth.CtxBranchIDKey)
			bPtr, ok := bVal.(*uint)
			if ok && bPtr != nil && *bPtr != report.BranchID {
				return fiber.NewError(fiber.StatusForbidden, "Bu rapora erişim yetkiniz yok")
			}
		}

		var reportData map[string]interface{}
		if report.ReportData != "" {
			if err := json.Unmarshal([]byte(report.ReportData), &reportData); err != nil {
				// JSON parse hatası varsa boş map döndür
				reportData = make(map[string]interface{})
			}
		} else {
			// ReportData boşsa boş map döndür
			reportData = make(map[string]interface{})
		}

		return c.JSON(fiber.Map{
			"id":             report.ID,
			"branch_id":      report.BranchID,
			"year":           report.Year,
			"month":          report.Month,
			"report_date":    report.ReportDate.Format("2006-01-02 15:04:05"),
			"total_revenue":  report.TotalRevenue,
			"food_cost":      report.FoodCost,
			"labor_cost":     report.LaborCost,
			"tips_collected": report.TipsCollected,
			"waste_cost":     report.WasteCost,
			"other_expenses": report.OtherExpenses,
			"net_margin":     report.NetMargin,
			"report_data":    reportData,
			"created_at":     report.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}
