package tips

import (
	"fmt"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTipPayoutRequest struct {
	EmployeeID uint    `json:"employee_id"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"` // boşsa bugün
	Note       string  `json:"note"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type TipPayoutResponse struct {
	ID           uint    `json:"id"`
	BranchID     uint    `json:"branch_id"`
	EmployeeID   uint    `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Note         string  `json:"note"`
}

type TipBalanceItem struct {
	EmployeeID   uint    `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Accrued      float64 `json:"accrued"` // kapanan havuzlardan hak edilen
	Paid         float64 `json:"paid"`
	Balance      float64 `json:"balance"`
}

// -------------------------------------------------
// POST /api/tip-payouts
// Hak edilen bahşişin ödenmesi (kısmi ödeme olabilir)
// -------------------------------------------------
func CreateTipPayoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTipPayoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.EmployeeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "employee_id zorunlu")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar 0'dan büyük olmalı")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		var emp models.Employee
		if err := database.DB.First(&emp, "id = ? AND branch_id = ?", body.EmployeeID, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		var date time.Time
		if body.Date == "" {
			now := time.Now()
			date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		} else {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
			}
			date = d
		}

		payout := models.TipPayout{
			BranchID:   branchID,
			EmployeeID: emp.ID,
			Amount:     body.Amount,
			Date:       date,
			Note:       body.Note,
		}

		if err := database.DB.Create(&payout).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme kaydedilemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &payout.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tip_payout",
				EntityID:    payout.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Bahşiş ödemesi: %s - %.2f TL", emp.Name, payout.Amount),
				Before:      nil,
				After:       payout,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(TipPayoutResponse{
			ID:           payout.ID,
			BranchID:     payout.BranchID,
			EmployeeID:   payout.EmployeeID,
			EmployeeName: emp.Name,
			Amount:       payout.Amount,
			Date:         payout.Date.Format("2006-01-02"),
			Note:         payout.Note,
		})
	}
}

// -------------------------------------------------
// GET /api/tip-payouts?from=2025-12-01&to=2025-12-31&employee_id=3
// -------------------------------------------------
func ListTipPayoutsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.TipPayout{}).Where("branch_id = ?", branchID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if eidStr := c.Query("employee_id"); eidStr != "" {
			var eid uint
			if _, err := fmt.Sscan(eidStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("employee_id = ?", eid)
			}
		}

		var payouts []models.TipPayout
		if err := dbq.Order("date desc, id desc").Find(&payouts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}

		var emps []models.Employee
		database.DB.Where("branch_id = ?", branchID).Find(&emps)
		nameByID := make(map[uint]string, len(emps))
		for _, e := range emps {
			nameByID[e.ID] = e.Name
		}

		resp := make([]TipPayoutResponse, 0, len(payouts))
		for _, p := range payouts {
			resp = append(resp, TipPayoutResponse{
				ID:           p.ID,
				BranchID:     p.BranchID,
				EmployeeID:   p.EmployeeID,
				EmployeeName: nameByID[p.EmployeeID],
				Amount:       p.Amount,
				Date:         p.Date.Format("2006-01-02"),
				Note:         p.Note,
			})
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// DELETE /api/tip-payouts/:id
// -------------------------------------------------
func DeleteTipPayoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödeme ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var payout models.TipPayout
		if err := database.DB.First(&payout, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ödeme bulunamadı")
		}

		if err := database.DB.Delete(&payout).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme silinemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &payout.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tip_payout",
				EntityID:    payout.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Bahşiş ödemesi silindi: %.2f TL", payout.Amount),
				Before:      payout,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Ödeme silindi"})
	}
}

// -------------------------------------------------
// GET /api/tip-payouts/balances
// Personel bazında hak ediş / ödenen / kalan
// -------------------------------------------------
func TipBalancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		type row struct {
			EmployeeID uint    `gorm:"column:employee_id"`
			Total      float64 `gorm:"column:total"`
		}

		// Hak ediş: kapanan havuzların payları
		var accruedRows []row
		if err := database.DB.Model(&models.TipShare{}).
			Select("tip_shares.employee_id, SUM(tip_shares.amount) as total").
			Joins("JOIN tip_pools ON tip_pools.id = tip_shares.tip_pool_id").
			Where("tip_pools.branch_id = ? AND tip_pools.status = ?", branchID, models.TipPoolClosed).
			Group("tip_shares.employee_id").
			Scan(&accruedRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hak edişler hesaplanamadı")
		}

		var paidRows []row
		if err := database.DB.Model(&models.TipPayout{}).
			Select("employee_id, SUM(amount) as total").
			Where("branch_id = ?", branchID).
			Group("employee_id").
			Scan(&paidRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler hesaplanamadı")
		}

		accrued := make(map[uint]float64, len(accruedRows))
		for _, r := range accruedRows {
			accrued[r.EmployeeID] = r.Total
		}
		paid := make(map[uint]float64, len(paidRows))
		for _, r := range paidRows {
			paid[r.EmployeeID] = r.Total
		}

		var emps []models.Employee
		if err := database.DB.Where("branch_id = ?", branchID).Order("name asc").Find(&emps).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel listelenemedi")
		}

		resp := make([]TipBalanceItem, 0, len(emps))
		for _, e := range emps {
			a := accrued[e.ID]
			p := paid[e.ID]
			if a == 0 && p == 0 {
				continue
			}
			resp = append(resp, TipBalanceItem{
				EmployeeID:   e.ID,
				EmployeeName: e.Name,
				Accrued:      a,
				Paid:         p,
				Balance:      a - p,
			})
		}

		return c.JSON(resp)
	}
}
