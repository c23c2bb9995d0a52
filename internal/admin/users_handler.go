package admin

import (
	"fmt"
	"strings"

	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type userResponse struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Role             models.UserRole `json:"role"`
	Revoked          bool            `json:"revoked"`
	RequiresApproval bool            `json:"requires_approval"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		Revoked:          u.Revoked,
		RequiresApproval: u.RequiresApproval,
	}
}

// GET /api/admin/users
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("id ASC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}
		out := make([]userResponse, 0, len(users))
		for _, u := range users {
			out = append(out, toUserResponse(u))
		}
		return c.JSON(out)
	}
}

type createUserBody struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

// POST /api/admin/users — admin eliyle açılan hesap onay beklemez.
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body createUserBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunludur")
		}
		if !models.ValidRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol")
		}

		var existing models.User
		if err := database.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Bu email zaten kayıtlı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre oluşturulamadı")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         body.Role,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		adminID, adminName, aerr := auth.CurrentUserName(c)
		if aerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      adminID,
				UserName:    adminName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("user_created: %s (%s)", user.Email, user.Role),
				After:       toUserResponse(user),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// DELETE /api/admin/users/:id — hesap silinmez, iptal edilir; geçmiş
// kayıtlardaki foreign key'ler kopmasın.
func RevokeUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kullanıcı id")
		}

		adminID, adminName, aerr := auth.CurrentUserName(c)
		if aerr != nil {
			return aerr
		}
		if uint(id) == adminID {
			return fiber.NewError(fiber.StatusBadRequest, "Kendi hesabını iptal edemezsin")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		before := toUserResponse(user)
		if err := database.DB.Model(&user).Update("revoked", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı iptal edilemedi")
		}
		user.Revoked = true

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      adminID,
			UserName:    adminName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("user_revoked: %s", user.Email),
			Before:      before,
			After:       toUserResponse(user),
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}

// GET /api/admin/pending-users
func PendingUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.
			Where("requires_approval = ? AND revoked = ?", true, false).
			Order("created_at ASC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bekleyen kullanıcılar listelenemedi")
		}
		out := make([]userResponse, 0, len(users))
		for _, u := range users {
			out = append(out, toUserResponse(u))
		}
		return c.JSON(out)
	}
}

type approveBody struct {
	UserID uint `json:"user_id"`
}

// POST /api/admin/approve-user
func ApproveUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body approveBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", body.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}
		if !user.RequiresApproval {
			return fiber.NewError(fiber.StatusConflict, "Kullanıcı zaten onaylı")
		}

		if err := database.DB.Model(&user).Update("requires_approval", false).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı onaylanamadı")
		}
		user.RequiresApproval = false

		adminID, adminName, aerr := auth.CurrentUserName(c)
		if aerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      adminID,
				UserName:    adminName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("user_approved: %s", user.Email),
				After:       toUserResponse(user),
			})
		}

		return c.JSON(fiber.Map{"ok": true, "saved": toUserResponse(user)})
	}
}
