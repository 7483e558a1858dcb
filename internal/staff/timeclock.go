package staff

import (
	"fmt"
	"time"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type ClockInRequest struct {
	EmployeeID uint   `json:"employee_id"`
	PIN        string `json:"pin"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type ClockOutRequest struct {
	EmployeeID uint   `json:"employee_id"`
	PIN        string `json:"pin"`
	BreakMin   *int   `json:"break_min"`
	BranchID   *uint  `json:"branch_id"`
}

type CreateTimeEntryRequest struct {
	EmployeeID uint    `json:"employee_id"`
	ClockIn    string  `json:"clock_in"`  // "2006-01-02 15:04" formatında
	ClockOut   *string `json:"clock_out"` // boşsa açık mesai
	BreakMin   int     `json:"break_min"`
	Note       string  `json:"note"`
	BranchID   *uint   `json:"branch_id"`
}

type UpdateTimeEntryRequest struct {
	ClockIn  *string `json:"clock_in"`
	ClockOut *string `json:"clock_out"`
	BreakMin *int    `json:"break_min"`
	Note     *string `json:"note"`
}

type TimeEntryResponse struct {
	ID           uint    `json:"id"`
	BranchID     uint    `json:"branch_id"`
	EmployeeID   uint    `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	ClockIn      string  `json:"clock_in"`
	ClockOut     *string `json:"clock_out"`
	BreakMin     int     `json:"break_min"`
	Source       string  `json:"source"`
	Note         string  `json:"note"`
	Hours        float64 `json:"hours"` // açık mesaide 0
}

const clockTimeLayout = "2006-01-02 15:04"

func parseClockTime(s string) (time.Time, error) {
	return time.ParseInLocation(clockTimeLayout, s, time.Now().Location())
}

func toTimeEntryResponse(e models.TimeEntry, employeeName string) TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:           e.ID,
		BranchID:     e.BranchID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: employeeName,
		ClockIn:      e.ClockIn.Format(clockTimeLayout),
		BreakMin:     e.BreakMin,
		Source:       string(e.Source),
		Note:         e.Note,
	}
	if e.ClockOut != nil {
		out := e.ClockOut.Format(clockTimeLayout)
		resp.ClockOut = &out
		resp.Hours = EntryHours(e)
	}
	return resp
}

// PIN doğrulaması: personel şubede, aktif ve PIN tanımlı olmalı
func verifyEmployeePIN(employeeID uint, branchID uint, pin string) (*models.Employee, error) {
	var emp models.Employee
	if err := database.DB.First(&emp, "id = ? AND branch_id = ?", employeeID, branchID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
	}
	if !emp.IsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "Personel pasif, mesai işlemi yapamaz")
	}
	if emp.PINHash == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Personelin PIN'i tanımlı değil")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PINHash), []byte(pin)); err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "PIN hatalı")
	}
	return &emp, nil
}

// -------------------------------------------------
// POST /api/time-clock/in
// Ortak terminalden PIN ile giriş
// -------------------------------------------------
func ClockInHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClockInRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.EmployeeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "employee_id zorunlu")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		emp, err := verifyEmployeePIN(body.EmployeeID, branchID, body.PIN)
		if err != nil {
			return err
		}

		// Açık mesai varken ikinci giriş yapılamaz
		var openCount int64
		database.DB.Model(&models.TimeEntry{}).
			Where("employee_id = ? AND clock_out IS NULL", emp.ID).
			Count(&openCount)
		if openCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Açık mesai kaydı zaten var")
		}

		entry := models.TimeEntry{
			BranchID:   branchID,
			EmployeeID: emp.ID,
			ClockIn:    time.Now(),
			Source:     models.TimeEntrySourcePIN,
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesai kaydı oluşturulamadı")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "time_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Mesai girişi: %s", emp.Name),
				Before:      nil,
				After:       toTimeEntryResponse(entry, emp.Name),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toTimeEntryResponse(entry, emp.Name))
	}
}

// -------------------------------------------------
// POST /api/time-clock/out
// -------------------------------------------------
func ClockOutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClockOutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.EmployeeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "employee_id zorunlu")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		emp, err := verifyEmployeePIN(body.EmployeeID, branchID, body.PIN)
		if err != nil {
			return err
		}

		var entry models.TimeEntry
		if err := database.DB.Where("employee_id = ? AND clock_out IS NULL", emp.ID).
			Order("clock_in desc").First(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Açık mesai kaydı bulunamadı")
		}

		now := time.Now()
		if !now.After(entry.ClockIn) {
			return fiber.NewError(fiber.StatusBadRequest, "Çıkış zamanı giriş zamanından sonra olmalı")
		}
		// 16 saati aşan mesai büyük olasılıkla unutulmuş çıkıştır;
		// yönetici manuel kayıt yoluyla düzeltmeli
		if now.Sub(entry.ClockIn) > 16*time.Hour {
			return fiber.NewError(fiber.StatusBadRequest, "Mesai 16 saati aşmış, kaydı yönetici manuel olarak kapatmalı")
		}

		breakMin := 0
		if body.BreakMin != nil {
			breakMin = *body.BreakMin
		}
		if breakMin < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Mola süresi negatif olamaz")
		}
		if float64(breakMin) > now.Sub(entry.ClockIn).Minutes() {
			return fiber.NewError(fiber.StatusBadRequest, "Mola süresi mesai süresinden uzun olamaz")
		}

		before := entry

		entry.ClockOut = &now
		entry.BreakMin = breakMin

		if err := database.DB.Save(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesai kaydı güncellenemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "time_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Mesai çıkışı: %s (%.2f saat)", emp.Name, EntryHours(entry)),
				Before:      before,
				After:       entry,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toTimeEntryResponse(entry, emp.Name))
	}
}

// -------------------------------------------------
// POST /api/time-entries
// Yönetici tarafından manuel kayıt (düzeltme, unutulan giriş vs.)
// -------------------------------------------------
func CreateTimeEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTimeEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.EmployeeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "employee_id zorunlu")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		var emp models.Employee
		if err := database.DB.First(&emp, "id = ? AND branch_id = ?", body.EmployeeID, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		clockIn, err := parseClockTime(body.ClockIn)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "clock_in formatı geçersiz, 'YYYY-MM-DD HH:MM' olmalı")
		}

		entry := models.TimeEntry{
			BranchID:   branchID,
			EmployeeID: emp.ID,
			ClockIn:    clockIn,
			BreakMin:   body.BreakMin,
			Source:     models.TimeEntrySourceManual,
			Note:       body.Note,
		}

		if body.ClockOut != nil && *body.ClockOut != "" {
			clockOut, err := parseClockTime(*body.ClockOut)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "clock_out formatı geçersiz, 'YYYY-MM-DD HH:MM' olmalı")
			}
			if !clockOut.After(clockIn) {
				return fiber.NewError(fiber.StatusBadRequest, "Çıkış zamanı giriş zamanından sonra olmalı")
			}
			if body.BreakMin < 0 || float64(body.BreakMin) > clockOut.Sub(clockIn).Minutes() {
				return fiber.NewError(fiber.StatusBadRequest, "Mola süresi mesai süresinden uzun olamaz")
			}
			entry.ClockOut = &clockOut
		} else {
			// Açık kayıt: başka açık kayıt olmamalı
			var openCount int64
			database.DB.Model(&models.TimeEntry{}).
				Where("employee_id = ? AND clock_out IS NULL", emp.ID).
				Count(&openCount)
			if openCount > 0 {
				return fiber.NewError(fiber.StatusConflict, "Açık mesai kaydı zaten var")
			}
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesai kaydı oluşturulamadı")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "time_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Manuel mesai kaydı: %s", emp.Name),
				Before:      nil,
				After:       toTimeEntryResponse(entry, emp.Name),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toTimeEntryResponse(entry, emp.Name))
	}
}

// -------------------------------------------------
// GET /api/time-entries?from=2025-12-01&to=2025-12-31&employee_id=3
// -------------------------------------------------
func ListTimeEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.TimeEntry{}).Where("branch_id = ?", branchID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("clock_in >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			// to gününün sonuna kadar
			dbq = dbq.Where("clock_in < ?", to.AddDate(0, 0, 1))
		}
		if eidStr := c.Query("employee_id"); eidStr != "" {
			var eid uint
			if _, err := fmt.Sscan(eidStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("employee_id = ?", eid)
			}
		}

		var entries []models.TimeEntry
		if err := dbq.Order("clock_in asc, id asc").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesai kayıtları listelenemedi")
		}

		// Personel isimleri tek sorguda
		var emps []models.Employee
		database.DB.Where("branch_id = ?", branchID).Find(&emps)
		nameByID := make(map[uint]string, len(emps))
		for _, e := range emps {
			nameByID[e.ID] = e.Name
		}

		resp := make([]TimeEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, toTimeEntryResponse(e, nameByID[e.EmployeeID]))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/time-entries/:id
// -------------------------------------------------
func UpdateTimeEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kayıt ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var entry models.TimeEntry
		if err := database.DB.First(&entry, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mesai kaydı bulunamadı")
		}

		var body UpdateTimeEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var emp models.Employee
		database.DB.First(&emp, "id = ?", entry.EmployeeID)

		before := entry

		if body.ClockIn != nil {
			clockIn, err := parseClockTime(*body.ClockIn)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "clock_in formatı geçersiz, 'YYYY-MM-DD HH:MM' olmalı")
			}
			entry.ClockIn = clockIn
		}
		if body.ClockOut != nil {
			if *body.ClockOut == "" {
				entry.ClockOut = nil
			} else {
				clockOut, err := parseClockTime(*body.ClockOut)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "clock_out formatı geçersiz, 'YYYY-MM-DD HH:MM' olmalı")
				}
				entry.ClockOut = &clockOut
			}
		}
		if body.BreakMin != nil {
			if *body.BreakMin < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Mola süresi negatif olamaz")
			}
			entry.BreakMin = *body.BreakMin
		}
		if body.Note != nil {
			entry.Note = *body.Note
		}

		// Düzeltme sonrası tutarlılık kontrolü
		if entry.ClockOut != nil {
			if !entry.ClockOut.After(entry.ClockIn) {
				return fiber.NewError(fiber.StatusBadRequest, "Çıkış zamanı giriş zamanından sonra olmalı")
			}
			if float64(entry.BreakMin) > entry.ClockOut.Sub(entry.ClockIn).Minutes() {
				return fiber.NewError(fiber.StatusBadRequest, "Mola süresi mesai süresinden uzun olamaz")
			}
		}

		// Manuel düzeltme kaynağı işaretle
		entry.Source = models.TimeEntrySourceManual

		if err := database.DB.Save(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesai kaydı güncellenemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "time_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Mesai kaydı düzeltildi: %s", emp.Name),
				Before:      before,
				After:       entry,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toTimeEntryResponse(entry, emp.Name))
	}
}

// -------------------------------------------------
// DELETE /api/time-entries/:id
// -------------------------------------------------
func DeleteTimeEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kayıt ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var entry models.TimeEntry
		if err := database.DB.First(&entry, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mesai kaydı bulunamadı")
		}

		var emp models.Employee
		database.DB.First(&emp, "id = ?", entry.EmployeeID)

		if err := database.DB.Delete(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesai kaydı silinemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &entry.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "time_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Mesai kaydı silindi: %s", emp.Name),
				Before:      entry,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Mesai kaydı silindi"})
	}
}
