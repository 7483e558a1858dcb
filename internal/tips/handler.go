package tips

import (
	"fmt"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/integrations"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/staff"

	"github.com/gofiber/fiber/v2"
)

type CreateTipPoolRequest struct {
	PeriodStart string   `json:"period_start"` // "2025-12-01"
	PeriodEnd   string   `json:"period_end"`   // "2025-12-07"
	Method      string   `json:"method"`       // "hours" | "role_weight" | "even"
	TotalAmount *float64 `json:"total_amount"` // boşsa dönemdeki beyan edilen bahşişlerden
	Note        string   `json:"note"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type UpdateTipPoolRequest struct {
	PeriodStart *string  `json:"period_start"`
	PeriodEnd   *string  `json:"period_end"`
	Method      *string  `json:"method"`
	TotalAmount *float64 `json:"total_amount"`
	Note        *string  `json:"note"`
}

type TipShareItem struct {
	EmployeeID   uint    `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Basis        float64 `json:"basis"` // saat veya ağırlık
	Amount       float64 `json:"amount"`
}

type TipPoolResponse struct {
	ID          uint           `json:"id"`
	BranchID    uint           `json:"branch_id"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	Method      string         `json:"method"`
	TotalAmount float64        `json:"total_amount"`
	Status      string         `json:"status"`
	Note        string         `json:"note"`
	ClosedAt    *string        `json:"closed_at"`
	Shares      []TipShareItem `json:"shares,omitempty"`
}

// -------------------------
// Yardımcı Fonksiyonlar
// -------------------------

func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var branchID *uint
	bVal := c.Locals(auth.CtxBranchIDKey)
	if bPtr, ok := bVal.(*uint); ok && bPtr != nil {
		branchID = bPtr
	}

	return userID, user.Name, branchID, nil
}

func resolveBranchIDFromBodyOrRole(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
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

func validMethod(m string) bool {
	switch models.TipPoolMethod(m) {
	case models.TipMethodHours, models.TipMethodRoleWeight, models.TipMethodEven:
		return true
	}
	return false
}

func toPoolResponse(p models.TipPool) TipPoolResponse {
	resp := TipPoolResponse{
		ID:          p.ID,
		BranchID:    p.BranchID,
		PeriodStart: p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   p.PeriodEnd.Format("2006-01-02"),
		Method:      string(p.Method),
		TotalAmount: p.TotalAmount,
		Status:      string(p.Status),
		Note:        p.Note,
	}
	if p.ClosedAt != nil {
		s := p.ClosedAt.Format("2006-01-02 15:04:05")
		resp.ClosedAt = &s
	}
	return resp
}

// Dönemdeki beyan edilen bahşişlerin toplamı (havuz tutarı girilmezse varsayılan)
func declaredTipsTotal(branchID uint, start, end time.Time) float64 {
	var total float64
	database.DB.Model(&models.SalesRecord{}).
		Select("COALESCE(SUM(tip_amount), 0)").
		Where("branch_id = ? AND date >= ? AND date <= ?", branchID, start, end).
		Scan(&total)
	return total
}

// Havuz yöntemine göre katılımcıları toplar.
// hours: dönemde çalışması olan bahşişe dahil personel (pasifler dahil,
// dönem içinde çalıştılarsa pay alırlar) + aktif olup hiç çalışmayanlar (0 pay)
// role_weight / even: aktif ve bahşişe dahil personel
func collectParticipants(pool models.TipPool) ([]Participant, map[uint]models.Employee, error) {
	var emps []models.Employee
	if err := database.DB.Where("branch_id = ? AND tip_eligible = ?", pool.BranchID, true).
		Order("id asc").Find(&emps).Error; err != nil {
		return nil, nil, err
	}

	byID := make(map[uint]models.Employee, len(emps))
	for _, e := range emps {
		byID[e.ID] = e
	}

	parts := make([]Participant, 0, len(emps))

	switch pool.Method {
	case models.TipMethodHours:
		hours, err := staff.WorkedHoursForPeriod(pool.BranchID, pool.PeriodStart, pool.PeriodEnd.AddDate(0, 0, 1))
		if err != nil {
			return nil, nil, err
		}
		for _, e := range emps {
			h := hours[e.ID]
			if !e.IsActive && h == 0 {
				continue
			}
			parts = append(parts, Participant{EmployeeID: e.ID, Weight: h})
		}

	case models.TipMethodRoleWeight:
		for _, e := range emps {
			if !e.IsActive {
				continue
			}
			parts = append(parts, Participant{EmployeeID: e.ID, Weight: e.TipWeight})
		}

	case models.TipMethodEven:
		for _, e := range emps {
			if !e.IsActive {
				continue
			}
			parts = append(parts, Participant{EmployeeID: e.ID, Weight: 1})
		}
	}

	return parts, byID, nil
}

func sharesToItems(shares []Share, byID map[uint]models.Employee) []TipShareItem {
	items := make([]TipShareItem, 0, len(shares))
	for _, s := range shares {
		items = append(items, TipShareItem{
			EmployeeID:   s.EmployeeID,
			EmployeeName: byID[s.EmployeeID].Name,
			Basis:        s.Weight,
			Amount:       s.AmountTL(),
		})
	}
	return items
}

// -------------------------------------------------
// POST /api/tip-pools
// -------------------------------------------------
func CreateTipPoolHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTipPoolRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if !validMethod(body.Method) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz yöntem (hours|role_weight|even)")
		}

		start, err := time.Parse("2006-01-02", body.PeriodStart)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "period_start formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}
		end, err := time.Parse("2006-01-02", body.PeriodEnd)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "period_end formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}
		if end.Before(start) {
			return fiber.NewError(fiber.StatusBadRequest, "Dönem sonu dönem başından önce olamaz")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		var total float64
		if body.TotalAmount != nil {
			if *body.TotalAmount < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Bahşiş tutarı negatif olamaz")
			}
			total = *body.TotalAmount
		} else {
			total = declaredTipsTotal(branchID, start, end)
		}

		pool := models.TipPool{
			BranchID:    branchID,
			PeriodStart: start,
			PeriodEnd:   end,
			Method:      models.TipPoolMethod(body.Method),
			TotalAmount: total,
			Status:      models.TipPoolOpen,
			Note:        body.Note,
		}

		if err := database.DB.Create(&pool).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bahşiş havuzu oluşturulamadı")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &pool.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tip_pool",
				EntityID:    pool.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Bahşiş havuzu açıldı: %s - %s (%.2f TL)", body.PeriodStart, body.PeriodEnd, total),
				Before:      nil,
				After:       pool,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toPoolResponse(pool))
	}
}

// -------------------------------------------------
// GET /api/tip-pools?status=open
// -------------------------------------------------
func ListTipPoolsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.TipPool{}).Where("branch_id = ?", branchID)

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var pools []models.TipPool
		if err := dbq.Order("period_start desc, id desc").Find(&pools).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Havuzlar listelenemedi")
		}

		resp := make([]TipPoolResponse, 0, len(pools))
		for _, p := range pools {
			resp = append(resp, toPoolResponse(p))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/tip-pools/:id
// Kapalı havuzda kaydedilmiş paylar döner
// -------------------------------------------------
func GetTipPoolHandler() fiber.Handler {
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

		resp := toPoolResponse(pool)

		if len(pool.Shares) > 0 {
			var emps []models.Employee
			database.DB.Where("branch_id = ?", branchID).Find(&emps)
			nameByID := make(map[uint]string, len(emps))
			for _, e := range emps {
				nameByID[e.ID] = e.Name
			}

			resp.Shares = make([]TipShareItem, 0, len(pool.Shares))
			for _, s := range pool.Shares {
				resp.Shares = append(resp.Shares, TipShareItem{
					EmployeeID:   s.EmployeeID,
					EmployeeName: nameByID[s.EmployeeID],
					Basis:        s.Basis,
					Amount:       s.Amount,
				})
			}
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/tip-pools/:id/preview
// Payları kaydetmeden hesaplar (havuz açıkken kullanılır)
// -------------------------------------------------
func PreviewTipPoolHandler() fiber.Handler {
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
		if err := database.DB.First(&pool, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bahşiş havuzu bulunamadı")
		}

		parts, byID, err := collectParticipants(pool)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Katılımcılar hesaplanamadı")
		}

		shares, err := Distribute(pool.TotalAmount, parts)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		resp := toPoolResponse(pool)
		resp.Shares = sharesToItems(shares, byID)

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/tip-pools/:id
// Sadece açık havuz düzenlenebilir
// -------------------------------------------------
func UpdateTipPoolHandler() fiber.Handler {
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
		if err := database.DB.First(&pool, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bahşiş havuzu bulunamadı")
		}

		if pool.Status == models.TipPoolClosed {
			return fiber.NewError(fiber.StatusConflict, "Kapalı havuz düzenlenemez")
		}

		var body UpdateTipPoolRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := pool

		if body.PeriodStart != nil {
			start, err := time.Parse("2006-01-02", *body.PeriodStart)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "period_start formatı geçersiz")
			}
			pool.PeriodStart = start
		}
		if body.PeriodEnd != nil {
			end, err := time.Parse("2006-01-02", *body.PeriodEnd)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "period_end formatı geçersiz")
			}
			pool.PeriodEnd = end
		}
		if pool.PeriodEnd.Before(pool.PeriodStart) {
			return fiber.NewError(fiber.StatusBadRequest, "Dönem sonu dönem başından önce olamaz")
		}
		if body.Method != nil {
			if !validMethod(*body.Method) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz yöntem (hours|role_weight|even)")
			}
			pool.Method = models.TipPoolMethod(*body.Method)
		}
		if body.TotalAmount != nil {
			if *body.TotalAmount < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Bahşiş tutarı negatif olamaz")
			}
			pool.TotalAmount = *body.TotalAmount
		}
		if body.Note != nil {
			pool.Note = *body.Note
		}

		if err := database.DB.Save(&pool).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Havuz güncellenemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &pool.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tip_pool",
				EntityID:    pool.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Bahşiş havuzu güncellendi (ID: %d)", pool.ID),
				Before:      before,
				After:       pool,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toPoolResponse(pool))
	}
}

// -------------------------------------------------
// POST /api/tip-pools/:id/close
// Payları hesaplar, kaydeder ve havuzu kilitler
// -------------------------------------------------
func CloseTipPoolHandler() fiber.Handler {
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
		if err := database.DB.First(&pool, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bahşiş havuzu bulunamadı")
		}

		if pool.Status == models.TipPoolClosed {
			return fiber.NewError(fiber.StatusConflict, "Havuz zaten kapalı")
		}

		parts, byID, err := collectParticipants(pool)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Katılımcılar hesaplanamadı")
		}
		if len(parts) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bahşişe dahil katılımcı yok, havuz kapatılamaz")
		}

		shares, err := Distribute(pool.TotalAmount, parts)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		now := time.Now()

		// Paylar ve havuz durumu tek transaction'da
		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		for _, s := range shares {
			shareRow := models.TipShare{
				TipPoolID:  pool.ID,
				EmployeeID: s.EmployeeID,
				Basis:      s.Weight,
				Amount:     s.AmountTL(),
			}
			if err := tx.Create(&shareRow).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Paylar kaydedilemedi")
			}
		}

		if err := tx.Model(&models.TipPool{}).Where("id = ?", pool.ID).Updates(map[string]interface{}{
			"status":    models.TipPoolClosed,
			"closed_at": now,
		}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Havuz kapatılamadı")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Havuz kapatılamadı")
		}

		pool.Status = models.TipPoolClosed
		pool.ClosedAt = &now

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &pool.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tip_pool",
				EntityID:    pool.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Bahşiş havuzu kapatıldı: %.2f TL / %d kişi", pool.TotalAmount, len(shares)),
				Before:      nil,
				After:       pool,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		integrations.Emit(pool.BranchID, models.WebhookTipPoolClosed, map[string]interface{}{
			"pool_id":      pool.ID,
			"branch_id":    pool.BranchID,
			"period_start": pool.PeriodStart.Format("2006-01-02"),
			"period_end":   pool.PeriodEnd.Format("2006-01-02"),
			"method":       pool.Method,
			"total_amount": pool.TotalAmount,
			"share_count":  len(shares),
		})

		resp := toPoolResponse(pool)
		resp.Shares = sharesToItems(shares, byID)

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// DELETE /api/tip-pools/:id
// Sadece açık havuz silinebilir
// -------------------------------------------------
func DeleteTipPoolHandler() fiber.Handler {
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
		if err := database.DB.First(&pool, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bahşiş havuzu bulunamadı")
		}

		if pool.Status == models.TipPoolClosed {
			return fiber.NewError(fiber.StatusConflict, "Kapalı havuz silinemez")
		}

		if err := database.DB.Delete(&pool).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Havuz silinemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &pool.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tip_pool",
				EntityID:    pool.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Bahşiş havuzu silindi (ID: %d)", pool.ID),
				Before:      pool,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Bahşiş havuzu silindi"})
	}
}
