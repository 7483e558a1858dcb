package staff

import (
	"math"
	"time"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LaborSummaryItem struct {
	EmployeeID uint    `json:"employee_id"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Hours      float64 `json:"hours"`
	HourlyWage float64 `json:"hourly_wage"`
	LaborCost  float64 `json:"labor_cost"`
}

type LaborSummaryResponse struct {
	BranchID   uint               `json:"branch_id"`
	From       string             `json:"from"`
	To         string             `json:"to"`
	Items      []LaborSummaryItem `json:"items"`
	TotalHours float64            `json:"total_hours"`
	TotalCost  float64            `json:"total_cost"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EntryHours: kapalı bir mesai kaydının net saati (mola düşülmüş)
// Açık kayıtlarda 0 döner
func EntryHours(e models.TimeEntry) float64 {
	if e.ClockOut == nil {
		return 0
	}
	min := e.ClockOut.Sub(e.ClockIn).Minutes() - float64(e.BreakMin)
	if min < 0 {
		min = 0
	}
	return round2(min / 60)
}

// OverlapMinutes: kaydın [from, to) aralığına düşen net dakikası.
// Mola, kesişen paya orantılı düşülür (aralık sınırını aşan kayıtlar için)
func OverlapMinutes(e models.TimeEntry, from, to time.Time) float64 {
	if e.ClockOut == nil {
		return 0
	}

	in := e.ClockIn
	out := *e.ClockOut

	raw := out.Sub(in).Minutes()
	if raw <= 0 {
		return 0
	}

	start := in
	if from.After(start) {
		start = from
	}
	end := out
	if to.Before(end) {
		end = to
	}

	overlap := end.Sub(start).Minutes()
	if overlap <= 0 {
		return 0
	}

	net := overlap - float64(e.BreakMin)*overlap/raw
	if net < 0 {
		net = 0
	}
	return net
}

// WorkedHours: personel bazında [from, to) aralığındaki toplam net saat
func WorkedHours(entries []models.TimeEntry, from, to time.Time) map[uint]float64 {
	minutes := make(map[uint]float64)
	for _, e := range entries {
		minutes[e.EmployeeID] += OverlapMinutes(e, from, to)
	}

	hours := make(map[uint]float64, len(minutes))
	for id, m := range minutes {
		hours[id] = round2(m / 60)
	}
	return hours
}

// WorkedHoursForPeriod: aralıkla kesişen kapalı kayıtları çekip saatleri hesaplar
// (bahşiş havuzunun hours yöntemi de burayı kullanır)
func WorkedHoursForPeriod(branchID uint, from, to time.Time) (map[uint]float64, error) {
	var entries []models.TimeEntry
	if err := database.DB.
		Where("branch_id = ? AND clock_out IS NOT NULL AND clock_in < ? AND clock_out > ?", branchID, to, from).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return WorkedHours(entries, from, to), nil
}

// -------------------------------------------------
// GET /api/time-entries/summary?from=2025-12-01&to=2025-12-31
// Dönem içi çalışma saati ve işçilik maliyeti özeti
// -------------------------------------------------
func LaborSummaryHandler() fiber.Handler {
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
			return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
		}
		// to günü dahil
		toEnd := to.AddDate(0, 0, 1)

		hours, err := WorkedHoursForPeriod(branchID, from, toEnd)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesai kayıtları okunamadı")
		}

		var emps []models.Employee
		if err := database.DB.Where("branch_id = ?", branchID).Order("name asc").Find(&emps).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel listelenemedi")
		}

		resp := LaborSummaryResponse{
			BranchID: branchID,
			From:     fromStr,
			To:       toStr,
			Items:    make([]LaborSummaryItem, 0, len(emps)),
		}

		for _, e := range emps {
			h := hours[e.ID]
			if h == 0 {
				continue
			}
			cost := round2(h * e.HourlyWage)
			resp.Items = append(resp.Items, LaborSummaryItem{
				EmployeeID: e.ID,
				Name:       e.Name,
				Role:       e.Role,
				Hours:      h,
				HourlyWage: e.HourlyWage,
				LaborCost:  cost,
			})
			resp.TotalHours += h
			resp.TotalCost += cost
		}

		resp.TotalHours = round2(resp.TotalHours)
		resp.TotalCost = round2(resp.TotalCost)

		return c.JSON(resp)
	}
}
