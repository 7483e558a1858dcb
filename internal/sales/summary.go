package sales

import (
	"fmt"
	"time"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RevenueChartPoint struct {
	Label    string  `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	DineIn   float64 `json:"dinein"`
	Takeout  float64 `json:"takeout"`
	Delivery float64 `json:"delivery"`
	Tips     float64 `json:"tips"`
	Total    float64 `json:"total"`
}

type RevenueChartGrandTotals struct {
	DineIn   float64 `json:"dinein"`
	Takeout  float64 `json:"takeout"`
	Delivery float64 `json:"delivery"`
	Tips     float64 `json:"tips"`
	Total    float64 `json:"total"`
}

type RevenueChartResponse struct {
	BranchID    uint                    `json:"branch_id"`
	Period      string                  `json:"period"` // daily | weekly | monthly
	From        string                  `json:"from"`
	To          string                  `json:"to"`
	Points      []RevenueChartPoint     `json:"points"`
	GrandTotals RevenueChartGrandTotals `json:"grand_totals"`
}

// GET /api/sales/summary?period=daily&count=7&branch_id=1
func RevenueSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
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

		switch period {
		case "weekly":
			// count hafta geriye
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
		case "monthly":
			// ilgili ayların başından itibaren
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
		default:
			// daily
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
		}

		// aggregation sonucu satır yapısı
		type row struct {
			Bucket  time.Time `gorm:"column:bucket"`
			Channel string    `gorm:"column:channel"`
			Gross   float64   `gorm:"column:gross"`
			Tips    float64   `gorm:"column:tips"`
		}
		var rows []row

		var sql string
		switch period {
		case "weekly":
			sql = `
				SELECT date_trunc('week', date)::date AS bucket,
					   channel,
					   SUM(gross_amount) AS gross,
					   SUM(tip_amount) AS tips
				FROM sales_records
				WHERE branch_id = ? AND date >= ? AND date <= ?
				GROUP BY bucket, channel
				ORDER BY bucket ASC;
			`
		case "monthly":
			sql = `
				SELECT date_trunc('month', date)::date AS bucket,
					   channel,
					   SUM(gross_amount) AS gross,
					   SUM(tip_amount) AS tips
				FROM sales_records
				WHERE branch_id = ? AND date >= ? AND date <= ?
				GROUP BY bucket, channel
				ORDER BY bucket ASC;
			`
			// son ayın son günü dahil
			end = start.AddDate(0, count, 0).AddDate(0, 0, -1)
		default: // daily
			sql = `
				SELECT date::date AS bucket,
					   channel,
					   SUM(gross_amount) AS gross,
					   SUM(tip_amount) AS tips
				FROM sales_records
				WHERE branch_id = ? AND date >= ? AND date <= ?
				GROUP BY bucket, channel
				ORDER BY bucket ASC;
			`
		}

		if err := database.DB.Raw(sql, branchID, start, end).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		// bucket bazlı toplama
		type bucketAgg struct {
			Bucket   time.Time
			DineIn   float64
			Takeout  float64
			Delivery float64
			Tips     float64
			Total    float64
		}

		buckets := make(map[time.Time]*bucketAgg)

		for _, r := range rows {
			agg, ok := buckets[r.Bucket]
			if !ok {
				agg = &bucketAgg{Bucket: r.Bucket}
				buckets[r.Bucket] = agg
			}

			switch r.Channel {
			case string(models.SalesChannelDineIn):
				agg.DineIn += r.Gross
			case string(models.SalesChannelTakeout):
				agg.Takeout += r.Gross
			case string(models.SalesChannelDelivery):
				agg.Delivery += r.Gross
			}
			agg.Tips += r.Tips
		}

		// map'ten slice'a taşı ve sıralı hale getir
		ordered := make([]bucketAgg, 0, len(buckets))
		for _, v := range buckets {
			v.Total = v.DineIn + v.Takeout + v.Delivery
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

		points := make([]RevenueChartPoint, 0, len(ordered))
		grand := RevenueChartGrandTotals{}

		for _, b := range ordered {
			label := b.Bucket.Format("2006-01-02")
			points = append(points, RevenueChartPoint{
				Label:    label,
				DineIn:   b.DineIn,
				Takeout:  b.Takeout,
				Delivery: b.Delivery,
				Tips:     b.Tips,
				Total:    b.Total,
			})

			grand.DineIn += b.DineIn
			grand.Takeout += b.Takeout
			grand.Delivery += b.Delivery
			grand.Tips += b.Tips
			grand.Total += b.Total
		}

		resp := RevenueChartResponse{
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

// GET /api/sales/tips-total?from=...&to=...&branch_id=1
// Havuz oluştururken varsayılan tutar olarak kullanılır.
func DeclaredTipsTotalHandler() fiber.Handler {
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
			return fiber.NewError(fiber.StatusBadRequest, "from geçersiz")
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to geçersiz")
		}

		var total float64
		if err := database.DB.Model(&models.SalesRecord{}).
			Where("branch_id = ? AND date >= ? AND date <= ?", branchID, from, to).
			Select("COALESCE(SUM(tip_amount), 0)").
			Scan(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bahşiş toplamı hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"branch_id":  branchID,
			"from":       fromStr,
			"to":         toStr,
			"tips_total": total,
		})
	}
}
