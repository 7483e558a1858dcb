package staff

import (
	"fmt"
	"strings"

	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateEmployeeRequest struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"` // "garson", "komi", "şef" gibi serbest metin
	HourlyWage  float64  `json:"hourly_wage"`
	PIN         string   `json:"pin"` // 4-6 haneli, opsiyonel
	TipEligible *bool    `json:"tip_eligible"`
	TipWeight   *float64 `json:"tip_weight"`
	// super_admin için opsiyonel:
	BranchID *uint `json:"branch_id"`
}

type UpdateEmployeeRequest struct {
	Name        *string  `json:"name"`
	Role        *string  `json:"role"`
	HourlyWage  *float64 `json:"hourly_wage"`
	TipEligible *bool    `json:"tip_eligible"`
	TipWeight   *float64 `json:"tip_weight"`
	IsActive    *bool    `json:"is_active"`
}

type SetPINRequest struct {
	PIN string `json:"pin"`
}

type EmployeeResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	HourlyWage  float64 `json:"hourly_wage"`
	HasPIN      bool    `json:"has_pin"`
	TipEligible bool    `json:"tip_eligible"`
	TipWeight   float64 `json:"tip_weight"`
	IsActive    bool    `json:"is_active"`
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

// PIN 4-6 haneli rakam olmalı
func validatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return fiber.NewError(fiber.StatusBadRequest, "PIN 4-6 haneli olmalı")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fiber.NewError(fiber.StatusBadRequest, "PIN sadece rakam içermeli")
		}
	}
	return nil
}

func toEmployeeResponse(e models.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID,
		BranchID:    e.BranchID,
		Name:        e.Name,
		Role:        e.Role,
		HourlyWage:  e.HourlyWage,
		HasPIN:      e.PINHash != "",
		TipEligible: e.TipEligible,
		TipWeight:   e.TipWeight,
		IsActive:    e.IsActive,
	}
}

// -------------------------------------------------
// POST /api/employees
// -------------------------------------------------
func CreateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Personel adı zorunlu")
		}
		if body.HourlyWage < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Saatlik ücret negatif olamaz")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		emp := models.Employee{
			BranchID:    branchID,
			Name:        body.Name,
			Role:        strings.TrimSpace(body.Role),
			HourlyWage:  body.HourlyWage,
			TipEligible: true,
			TipWeight:   1,
			IsActive:    true,
		}

		if body.PIN != "" {
			if err := validatePIN(body.PIN); err != nil {
				return err
			}
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(body.PIN), bcrypt.DefaultCost)
			if hashErr != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "PIN hashlenemedi")
			}
			emp.PINHash = string(hash)
		}

		if body.TipEligible != nil {
			emp.TipEligible = *body.TipEligible
		}
		if body.TipWeight != nil {
			if *body.TipWeight < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Bahşiş ağırlığı negatif olamaz")
			}
			emp.TipWeight = *body.TipWeight
		}

		if err := database.DB.Create(&emp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel oluşturulamadı")
		}

		// Audit log yaz (PIN hash'i log'a yazılmaz)
		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			afterData := map[string]interface{}{
				"id":           emp.ID,
				"branch_id":    emp.BranchID,
				"name":         emp.Name,
				"role":         emp.Role,
				"hourly_wage":  emp.HourlyWage,
				"tip_eligible": emp.TipEligible,
				"tip_weight":   emp.TipWeight,
			}
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &emp.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "employee",
				EntityID:    emp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Personel eklendi: %s (%s)", emp.Name, emp.Role),
				Before:      nil,
				After:       afterData,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(emp))
	}
}

// -------------------------------------------------
// GET /api/employees?active=true
// -------------------------------------------------
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Employee{}).Where("branch_id = ?", branchID)

		if c.Query("active") == "true" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var emps []models.Employee
		if err := dbq.Order("name asc").Find(&emps).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel listelenemedi")
		}

		resp := make([]EmployeeResponse, 0, len(emps))
		for _, e := range emps {
			resp = append(resp, toEmployeeResponse(e))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/employees/:id
// -------------------------------------------------
func UpdateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz personel ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var emp models.Employee
		if err := database.DB.First(&emp, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		var body UpdateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := toEmployeeResponse(emp)

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Personel adı boş olamaz")
			}
			emp.Name = name
		}
		if body.Role != nil {
			emp.Role = strings.TrimSpace(*body.Role)
		}
		if body.HourlyWage != nil {
			if *body.HourlyWage < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Saatlik ücret negatif olamaz")
			}
			emp.HourlyWage = *body.HourlyWage
		}
		if body.TipEligible != nil {
			emp.TipEligible = *body.TipEligible
		}
		if body.TipWeight != nil {
			if *body.TipWeight < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Bahşiş ağırlığı negatif olamaz")
			}
			emp.TipWeight = *body.TipWeight
		}
		if body.IsActive != nil {
			emp.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&emp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel güncellenemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &emp.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "employee",
				EntityID:    emp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Personel güncellendi: %s", emp.Name),
				Before:      before,
				After:       toEmployeeResponse(emp),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toEmployeeResponse(emp))
	}
}

// -------------------------------------------------
// POST /api/employees/:id/pin
// PIN sıfırlama; hash asla log'a yazılmaz
// -------------------------------------------------
func SetEmployeePINHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz personel ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var emp models.Employee
		if err := database.DB.First(&emp, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		var body SetPINRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if err := validatePIN(body.PIN); err != nil {
			return err
		}

		hash, hashErr := bcrypt.GenerateFromPassword([]byte(body.PIN), bcrypt.DefaultCost)
		if hashErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "PIN hashlenemedi")
		}

		if err := database.DB.Model(&emp).Update("pin_hash", string(hash)).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "PIN güncellenemedi")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &emp.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "employee",
				EntityID:    emp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("PIN güncellendi: %s", emp.Name),
				Before:      nil,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "PIN güncellendi"})
	}
}

// -------------------------------------------------
// DELETE /api/employees/:id
// Hard delete yok, pasife alınır (mesai geçmişi korunur)
// -------------------------------------------------
func DeactivateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz personel ID")
		}

		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var emp models.Employee
		if err := database.DB.First(&emp, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		if err := database.DB.Model(&emp).Update("is_active", false).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel pasife alınamadı")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    &emp.BranchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "employee",
				EntityID:    emp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Personel pasife alındı: %s", emp.Name),
				Before:      nil,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Personel pasife alındı"})
	}
}
