package admin

import (
	"strings"

	"mutfak-backend/internal/database"
	"mutfak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type BranchResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	AdminCount int64  `json:"admin_count"`
	CreatedAt  string `json:"created_at"`
}

type CreateBranchRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"` // Opsiyonel
}

type UpdateBranchRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type CreateBranchAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type BranchAdminResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	BranchID    *uint   `json:"branch_id"`
	LastLoginAt *string `json:"last_login_at"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func branchAdminCount(branchID uint) int64 {
	var count int64
	database.DB.Model(&models.User{}).
		Where("branch_id = ? AND role = ?", branchID, models.RoleBranchAdmin).
		Count(&count)
	return count
}

func toBranchResponse(b models.Branch, adminCount int64) BranchResponse {
	return BranchResponse{
		ID:         b.ID,
		Name:       b.Name,
		Address:    b.Address,
		Phone:      b.Phone,
		AdminCount: adminCount,
		CreatedAt:  b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// ŞUBE CRUD
// ----------------------------------------

// POST /api/admin/branches
func CreateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
		}

		var exists int64
		database.DB.Model(&models.Branch{}).
			Where("LOWER(name) = LOWER(?)", body.Name).
			Count(&exists)
		if exists > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu isimde bir şube zaten var")
		}

		branch := models.Branch{
			Name:    body.Name,
			Address: strings.TrimSpace(body.Address),
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Create(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toBranchResponse(branch, 0))
	}
}

// GET /api/admin/branches
func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branches []models.Branch
		if err := database.DB.Order("name asc").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
		}

		// Admin sayıları tek sorguda
		type countRow struct {
			BranchID uint
			Cnt      int64
		}
		var rows []countRow
		database.DB.Model(&models.User{}).
			Select("branch_id, COUNT(*) AS cnt").
			Where("branch_id IS NOT NULL AND role = ?", models.RoleBranchAdmin).
			Group("branch_id").
			Scan(&rows)
		counts := make(map[uint]int64, len(rows))
		for _, r := range rows {
			counts[r.BranchID] = r.Cnt
		}

		res := make([]BranchResponse, 0, len(branches))
		for _, b := range branches {
			res = append(res, toBranchResponse(b, counts[b.ID]))
		}

		return c.JSON(res)
	}
}

// GET /api/admin/branches/:id
func GetBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		return c.JSON(toBranchResponse(branch, branchAdminCount(branch.ID)))
	}
}

// PUT /api/admin/branches/:id
func UpdateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		var body UpdateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
			}

			var exists int64
			database.DB.Model(&models.Branch{}).
				Where("LOWER(name) = LOWER(?) AND id != ?", name, branch.ID).
				Count(&exists)
			if exists > 0 {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir şube zaten var")
			}

			branch.Name = name
		}

		if body.Address != nil {
			branch.Address = strings.TrimSpace(*body.Address)
		}

		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube güncellenemedi")
		}

		return c.JSON(toBranchResponse(branch, branchAdminCount(branch.ID)))
	}
}

// DELETE /api/admin/branches/:id
//
// Operasyonel verisi olan şube silinemez; boş şube silinirken
// şubeye bağlı adminler de kaldırılır.
func DeleteBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).Where("branch_id = ?", branch.ID).Count(&productCount)
		if productCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Şubede kayıtlı ürünler var, şube silinemez")
		}

		var employeeCount int64
		database.DB.Model(&models.Employee{}).Where("branch_id = ?", branch.ID).Count(&employeeCount)
		if employeeCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Şubede kayıtlı personel var, şube silinemez")
		}

		var salesCount int64
		database.DB.Model(&models.SalesRecord{}).Where("branch_id = ?", branch.ID).Count(&salesCount)
		if salesCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Şubenin satış kayıtları var, şube silinemez")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("branch_id = ? AND role = ?", branch.ID, models.RoleBranchAdmin).
				Delete(&models.User{}).Error; err != nil {
				return err
			}
			return tx.Delete(&branch).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// ŞUBE ADMİNLERİ
// ----------------------------------------

// POST /api/admin/branches/:id/admins
func CreateBranchAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		var body CreateBranchAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}
		if len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 8 karakter olmalı")
		}

		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Bu email zaten kayıtlı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleBranchAdmin,
			BranchID:     &branch.ID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube admini oluşturulamadı")
		}

		// Şifre sadece bu yanıtta bir kez döner; sonrasında geri alınamaz
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"branch_id": user.BranchID,
			"password":  body.Password,
		})
	}
}

// GET /api/admin/branches/:id/admins
func ListBranchAdminsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID := c.Params("id")

		var users []models.User
		if err := database.DB.
			Where("branch_id = ? AND role = ?", branchID, models.RoleBranchAdmin).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Adminler listelenemedi")
		}

		res := make([]BranchAdminResponse, 0, len(users))
		for _, u := range users {
			var lastLogin *string
			if u.LastLoginAt != nil {
				formatted := u.LastLoginAt.Format("2006-01-02 15:04:05")
				lastLogin = &formatted
			}

			res = append(res, BranchAdminResponse{
				ID:          u.ID,
				Name:        u.Name,
				Email:       u.Email,
				Role:        string(u.Role),
				BranchID:    u.BranchID,
				LastLoginAt: lastLogin,
				CreatedAt:   u.CreatedAt.Format("2006-01-02 15:04:05"),
				UpdatedAt:   u.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}
