package invoice

import (
	"fmt"
	"strings"

	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateSupplierRequest struct {
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
	TaxNumber   string `json:"tax_number"`
	BranchID    *uint  `json:"branch_id"` // super_admin için opsiyonel
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name"`
	ContactInfo *string `json:"contact_info"`
	TaxNumber   *string `json:"tax_number"`
	IsActive    *bool   `json:"is_active"`
}

type SupplierResponse struct {
	ID          uint   `json:"id"`
	BranchID    uint   `json:"branch_id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
	TaxNumber   string `json:"tax_number"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
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

// branch_admin yalnızca kendi şubesinin tedarikçisine dokunabilir
func checkSupplierAccess(c *fiber.Ctx, supplier models.Supplier) error {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if ok && role == models.RoleBranchAdmin {
		bVal := c.Locals(auth.CtxBranchIDKey)
		bPtr, ok := bVal.(*uint)
		if !ok || bPtr == nil || *bPtr != supplier.BranchID {
			return fiber.NewError(fiber.StatusForbidden, "Bu tedarikçiye erişim yetkiniz yok")
		}
	}
	return nil
}

func toSupplierResponse(s models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		BranchID:    s.BranchID,
		Name:        s.Name,
		ContactInfo: s.ContactInfo,
		TaxNumber:   s.TaxNumber,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   s.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// -------------------------
// Supplier CRUD
// -------------------------

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
		}

		branchID, err := resolveBranchIDFromBodyOrRole(c, body.BranchID)
		if err != nil {
			return err
		}

		supplier := models.Supplier{
			BranchID:    branchID,
			Name:        strings.TrimSpace(body.Name),
			ContactInfo: strings.TrimSpace(body.ContactInfo),
			TaxNumber:   strings.TrimSpace(body.TaxNumber),
			IsActive:    true,
		}

		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toSupplierResponse(supplier))
	}
}

// GET /api/suppliers?active=true
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("branch_id = ?", branchID)
		if c.Query("active") == "true" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var suppliers []models.Supplier
		if err := dbq.Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			resp = append(resp, toSupplierResponse(s))
		}

		return c.JSON(resp)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		if err := checkSupplierAccess(c, supplier); err != nil {
			return err
		}

		var body UpdateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
			}
			supplier.Name = name
		}
		if body.ContactInfo != nil {
			supplier.ContactInfo = strings.TrimSpace(*body.ContactInfo)
		}
		if body.TaxNumber != nil {
			supplier.TaxNumber = strings.TrimSpace(*body.TaxNumber)
		}
		if body.IsActive != nil {
			supplier.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi güncellenemedi")
		}

		return c.JSON(toSupplierResponse(supplier))
	}
}

// DELETE /api/suppliers/:id
// Faturası veya ödemesi olan tedarikçi silinmez, pasife alınır.
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		if err := checkSupplierAccess(c, supplier); err != nil {
			return err
		}

		var invoiceCount int64
		database.DB.Model(&models.Invoice{}).Where("supplier_id = ?", supplier.ID).Count(&invoiceCount)
		if invoiceCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Faturası olan tedarikçi silinemez, pasife alın")
		}

		var paymentCount int64
		database.DB.Model(&models.SupplierPayment{}).Where("supplier_id = ?", supplier.ID).Count(&paymentCount)
		if paymentCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Ödeme kaydı olan tedarikçi silinemez, pasife alın")
		}

		if err := database.DB.Delete(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
