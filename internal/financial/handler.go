package financial

import (
	"fmt"
	"math"
	"time"

	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/inventory"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/staff"

	"github.com/gofiber/fiber/v2"
)

type ChannelRevenue struct {
	Channel models.SalesChannel `json:"channel"`
	Total   float64             `json:"total"`
}

type ExpenseByCategory struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
}

type EmployeeLabor struct {
	EmployeeID uint    `json:"employee_id"`
	Name       string  `json:"name"`
	Hours      float64 `json:"hours"`
	HourlyWage float64 `json:"hourly_wage"`
	Cost       float64 `json:"cost"`
}

type RevenueBlock struct {
	Items        []ChannelRevenue `json:"items"`
	DeclaredTips float64          `json:"declared_tips"`
	Total        float64          `json:"total"`
}

type LaborBlock struct {
	Items []EmployeeLabor `json:"items"`
	Total float64         `json:"total"`
}

type ExpenseBlock struct {
	Items []ExpenseByCategory `json:"items"`
	Total float64             `json:"total"`
}

// MonthlySummary: bir şubenin aylık maliyet/kâr dökümü.
// Bahşişler personele aittir, gider toplamına girmez; bilgi satırı olarak döner.
type MonthlySummary struct {
	BranchID    uint         `json:"branch_id"`
	Year        int          `json:"year"`
	Month       int          `json:"month"`
	Revenue     RevenueBlock `json:"revenue"`
	FoodCost    float64      `json:"food_cost"` // stoğa işlenmiş fatura toplamı
	Labor       LaborBlock   `json:"labor"`
	TipsPaidOut float64      `json:"tips_paid_out"`
	WasteCost   float64      `json:"waste_cost"`
	Other       ExpenseBlock `json:"other_expenses"`
	TotalCosts  float64      `json:"total_costs"`
	NetMargin   float64      `json:"net_margin"`
	FoodCostPct float64      `json:"food_cost_pct"` // food_cost / ciro * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// -----------------------------------
// Yardımcı: branch_id'yi çöz
// -----------------------------------

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

// BuildMonthlySummary: ay bazlı gelir/maliyet kırılımını toplar.
// Aylık rapor kesme akışı da aynı hesabı kullanır.
func BuildMonthlySummary(branchID uint, year, month int) (*MonthlySummary, error) {
	loc := time.Now().Location()
	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	lastDay := firstDay.AddDate(0, 1, -1)

	// ---------------------------
	// 1) Ciro (sales_records, kanal bazlı)
	// ---------------------------

	type revRow struct {
		Channel string  `gorm:"column:channel"`
		Gross   float64 `gorm:"column:gross"`
		Tips    float64 `gorm:"column:tips"`
	}
	var revRows []revRow

	if err := database.DB.
		Model(&models.SalesRecord{}).
		Select("channel, SUM(gross_amount) as gross, SUM(tip_amount) as tips").
		Where("branch_id = ? AND date >= ? AND date <= ?", branchID, firstDay, lastDay).
		Group("channel").
		Scan(&revRows).Error; err != nil {
		return nil, fmt.Errorf("ciro hesaplanamadı: %w", err)
	}

	revenue := RevenueBlock{Items: make([]ChannelRevenue, 0, len(revRows))}
	for _, r := range revRows {
		revenue.Items = append(revenue.Items, ChannelRevenue{
			Channel: models.SalesChannel(r.Channel),
			Total:   r.Gross,
		})
		revenue.Total += r.Gross
		revenue.DeclaredTips += r.Tips
	}

	// ---------------------------
	// 2) Yemek maliyeti (stoğa işlenmiş faturalar)
	// ---------------------------

	var foodCost float64
	if err := database.DB.
		Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("branch_id = ? AND status = ? AND date >= ? AND date <= ?", branchID, models.InvoicePosted, firstDay, lastDay).
		Scan(&foodCost).Error; err != nil {
		return nil, fmt.Errorf("yemek maliyeti hesaplanamadı: %w", err)
	}

	// ---------------------------
	// 3) İşçilik (mesai saatleri * saatlik ücret)
	// ---------------------------

	// lastDay gün başını gösterir, mesai için gün sonuna kadar say
	hours, err := staff.WorkedHoursForPeriod(branchID, firstDay, lastDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("mesai saatleri hesaplanamadı: %w", err)
	}

	labor := LaborBlock{Items: make([]EmployeeLabor, 0, len(hours))}
	if len(hours) > 0 {
		ids := make([]uint, 0, len(hours))
		for id := range hours {
			ids = append(ids, id)
		}
		var employees []models.Employee
		if err := database.DB.Where("id IN ?", ids).Find(&employees).Error; err != nil {
			return nil, fmt.Errorf("personel bilgileri alınamadı: %w", err)
		}
		for _, emp := range employees {
			h := round2(hours[emp.ID])
			cost := round2(h * emp.HourlyWage)
			labor.Items = append(labor.Items, EmployeeLabor{
				EmployeeID: emp.ID,
				Name:       emp.Name,
				Hours:      h,
				HourlyWage: emp.HourlyWage,
				Cost:       cost,
			})
			labor.Total += cost
		}
		labor.Total = round2(labor.Total)
	}

	// ---------------------------
	// 4) Dağıtılan bahşişler (bilgi satırı)
	// ---------------------------

	var tipsPaid float64
	if err := database.DB.
		Model(&models.TipPayout{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("branch_id = ? AND date >= ? AND date <= ?", branchID, firstDay, lastDay).
		Scan(&tipsPaid).Error; err != nil {
		return nil, fmt.Errorf("bahşiş toplamı hesaplanamadı: %w", err)
	}

	// ---------------------------
	// 5) Zayiat maliyeti
	// ---------------------------

	wasteCost := inventory.WasteTotalForPeriod(branchID, firstDay, lastDay)

	// ---------------------------
	// 6) Diğer giderler (kategori bazlı)
	// ---------------------------

	type expRow struct {
		CategoryID uint    `gorm:"column:category_id"`
		Total      float64 `gorm:"column:total"`
	}
	var expRows []expRow

	if err := database.DB.
		Model(&models.Expense{}).
		Select("category_id, SUM(amount) as total").
		Where("branch_id = ? AND date >= ? AND date <= ?", branchID, firstDay, lastDay).
		Group("category_id").
		Scan(&expRows).Error; err != nil {
		return nil, fmt.Errorf("giderler hesaplanamadı: %w", err)
	}

	catIDs := make([]uint, 0, len(expRows))
	for _, r := range expRows {
		catIDs = append(catIDs, r.CategoryID)
	}

	catMap := make(map[uint]string)
	if len(catIDs) > 0 {
		var cats []models.ExpenseCategory
		if err := database.DB.Where("id IN ?", catIDs).Find(&cats).Error; err != nil {
			return nil, fmt.Errorf("kategori bilgileri alınamadı: %w", err)
		}
		for _, ccat := range cats {
			catMap[ccat.ID] = ccat.Name
		}
	}

	other := ExpenseBlock{Items: make([]ExpenseByCategory, 0, len(expRows))}
	for _, r := range expRows {
		other.Items = append(other.Items, ExpenseByCategory{
			CategoryID:   r.CategoryID,
			CategoryName: catMap[r.CategoryID],
			Total:        r.Total,
		})
		other.Total += r.Total
	}

	// ---------------------------
	// 7) Toplamlar
	// ---------------------------

	totalCosts := round2(foodCost + labor.Total + wasteCost + other.Total)
	netMargin := round2(revenue.Total - totalCosts)

	var foodPct float64
	if revenue.Total > 0 {
		foodPct = round2(foodCost / revenue.Total * 100)
	}

	return &MonthlySummary{
		BranchID:    branchID,
		Year:        year,
		Month:       month,
		Revenue:     revenue,
		FoodCost:    foodCost,
		Labor:       labor,
		TipsPaidOut: tipsPaid,
		WasteCost:   wasteCost,
		Other:       other,
		TotalCosts:  totalCosts,
		NetMargin:   netMargin,
		FoodCostPct: foodPct,
	}, nil
}

// -----------------------------------
// GET /api/financial-summary/monthly
// ?year=2025&month=12[&branch_id=1]
// -----------------------------------
func MonthlyFinancialSummaryHandler() fiber.Handler {
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

		summary, err := BuildMonthlySummary(branchID, year, month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		return c.JSON(summary)
	}
}
