package dashboard

import (
	"fmt"
	"math"
	"time"

	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CostChartPoint struct {
	Label       string  `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	Revenue     float64 `json:"revenue"`
	FoodCost    float64 `json:"food_cost"`
	LaborCost   float64 `json:"labor_cost"`
	Tips        float64 `json:"tips"`
	FoodCostPct float64 `json:"food_cost_pct"`
}

type CostChartGrandTotals struct {
	Revenue     float64 `json:"revenue"`
	FoodCost    float64 `json:"food_cost"`
	LaborCost   float64 `json:"labor_cost"`
	Tips        float64 `json:"tips"`
	FoodCostPct float64 `json:"food_cost_pct"`
}

type CostChartResponse struct {
	BranchID    uint                 `json:"branch_id"`
	Period      string               `json:"period"` // daily | weekly | monthly
	From        string               `json:"from"`
	To          string               `json:"to"`
	Points      []CostChartPoint     `json:"points"`
	GrandTotals CostChartGrandTotals `json:"grand_totals"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// context'ten branch id çıkar (branch_admin için JWT, super_admin için query param)
// super_admin için ?branch_id=1 zorunlu
func getBranchIDFromContext(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleBranchAdmin {
		branchIDVal := c.Locals(auth.CtxBranchIDKey)
		branchIDPtr, ok := branchIDVal.(*uint)
		if !ok || branchIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *branchIDPtr, nil
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

// GET /api/dashboard/cost-chart?period=daily&count=7&branch_id=1
// Ciro, yemek maliyeti (stoğa işlenen faturalar), işçilik ve bahşişi
// aynı zaman eksenine oturtur.
func CostChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := getBranchIDFromContext(c)
		if err != nil {
			return err
		}

		period := c.Query("period", "daily") // daily | weekly | monthly
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		// bugünün 00:00'ı
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		var start time.Time
		var bucketExpr string

		switch period {
		case "weekly":
			// count hafta geriye
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
			bucketExpr = "date_trunc('week', %s)::date"
		case "monthly":
			// ilgili ayların başından itibaren
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
			// son ayın son günü dahil
			end = start.AddDate(0, count, 0).AddDate(0, 0, -1)
			bucketExpr = "date_trunc('month', %s)::date"
		default:
			// daily
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
			bucketExpr = "%s::date"
		}

		// aggregation sonucu satır yapısı
		type row struct {
			Bucket time.Time `gorm:"column:bucket"`
			Total  float64   `gorm:"column:total"`
		}

		// bucket bazlı toplama
		type bucketAgg struct {
			Bucket    time.Time
			Revenue   float64
			FoodCost  float64
			LaborCost float64
			Tips      float64
		}

		buckets := make(map[time.Time]*bucketAgg)
		bucketFor := func(t time.Time) *bucketAgg {
			agg, ok := buckets[t]
			if !ok {
				agg = &bucketAgg{Bucket: t}
				buckets[t] = agg
			}
			return agg
		}

		// 1) Ciro + bahşiş (sales_records)
		revSQL := fmt.Sprintf(`
			SELECT %s AS bucket,
				   SUM(gross_amount) AS total,
				   SUM(tip_amount) AS tips
			FROM sales_records
			WHERE branch_id = ? AND date >= ? AND date <= ?
			GROUP BY bucket
			ORDER BY bucket ASC;
		`, fmt.Sprintf(bucketExpr, "date"))

		type revRow struct {
			Bucket time.Time `gorm:"column:bucket"`
			Total  float64   `gorm:"column:total"`
			Tips   float64   `gorm:"column:tips"`
		}
		var revRows []revRow
		if err := database.DB.Raw(revSQL, branchID, start, end).Scan(&revRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}
		for _, r := range revRows {
			agg := bucketFor(r.Bucket)
			agg.Revenue += r.Total
			agg.Tips += r.Tips
		}

		// 2) Yemek maliyeti (stoğa işlenmiş faturalar)
		foodSQL := fmt.Sprintf(`
			SELECT %s AS bucket,
				   SUM(total_amount) AS total
			FROM invoices
			WHERE branch_id = ? AND status = 'posted' AND date >= ? AND date <= ?
			GROUP BY bucket
			ORDER BY bucket ASC;
		`, fmt.Sprintf(bucketExpr, "date"))

		var foodRows []row
		if err := database.DB.Raw(foodSQL, branchID, start, end).Scan(&foodRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}
		for _, r := range foodRows {
			bucketFor(r.Bucket).FoodCost += r.Total
		}

		// 3) İşçilik: mesai, giriş gününün bucket'ına yazılır
		laborSQL := fmt.Sprintf(`
			SELECT %s AS bucket,
				   SUM(GREATEST(EXTRACT(EPOCH FROM (t.clock_out - t.clock_in)) / 3600.0 - t.break_min / 60.0, 0) * e.hourly_wage) AS total
			FROM time_entries t
			JOIN employees e ON e.id = t.employee_id
			WHERE t.branch_id = ? AND t.clock_out IS NOT NULL AND t.clock_in >= ? AND t.clock_in < ?
			GROUP BY bucket
			ORDER BY bucket ASC;
		`, fmt.Sprintf(bucketExpr, "t.clock_in"))

		var laborRows []row
		if err := database.DB.Raw(laborSQL, branchID, start, end.AddDate(0, 0, 1)).Scan(&laborRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}
		for _, r := range laborRows {
			bucketFor(r.Bucket).LaborCost += r.Total
		}

		// map'ten slice'a taşı ve sıralı hale getir
		ordered := make([]bucketAgg, 0, len(buckets))
		for _, v := range buckets {
			ordered = append(ordered, *v)
		}

		// tarih sıralaması
		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				if ordered[j].Bucket.Before(ordered[i].Bucket) {
					ordered[i], ordered[j] = ordered[j], ordered[i]
				}
			}
		}

		points := make([]CostChartPoint, 0, len(ordered))
		grand := CostChartGrandTotals{}

		for _, b := range ordered {
			label := b.Bucket.Format("2006-01-02")
			var pct float64
			if b.Revenue > 0 {
				pct = round2(b.FoodCost / b.Revenue * 100)
			}
			points = append(points, CostChartPoint{
				Label:       label,
				Revenue:     round2(b.Revenue),
				FoodCost:    round2(b.FoodCost),
				LaborCost:   round2(b.LaborCost),
				Tips:        round2(b.Tips),
				FoodCostPct: pct,
			})

			grand.Revenue += b.Revenue
			grand.FoodCost += b.FoodCost
			grand.LaborCost += b.LaborCost
			grand.Tips += b.Tips
		}

		grand.Revenue = round2(grand.Revenue)
		grand.FoodCost = round2(grand.FoodCost)
		grand.LaborCost = round2(grand.LaborCost)
		grand.Tips = round2(grand.Tips)
		if grand.Revenue > 0 {
			grand.FoodCostPct = round2(grand.FoodCost / grand.Revenue * 100)
		}

		resp := CostChartResponse{
			BranchID:    branchID,
			Period:      period,
			From:        start.Format("2006-01-02"),
			To:          end.Format("2006-01-02"),
			Points:      points,
			GrandTotals: grand,
		}

		return c.JSON(resp)
	}
}
