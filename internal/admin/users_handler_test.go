package admin

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/config"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAdminApp(t *testing.T, db *gorm.DB) (*fiber.App, string) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret-test-secret-test-secret!"}

	admin := testutil.CreateUser(t, db, "patron", models.RoleAdmin)
	token, err := auth.GenerateToken(cfg.JWTSecret, admin)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	grp := app.Group("/admin", auth.JWTMiddleware(cfg), auth.RequireRole(models.RoleAdmin))
	grp.Get("/users", ListUsersHandler())
	grp.Post("/users", CreateUserHandler())
	grp.Delete("/users/:id", RevokeUserHandler())
	grp.Get("/pending-users", PendingUsersHandler())
	grp.Post("/approve-user", ApproveUserHandler())
	return app, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.Bytes()
}

func TestApproveUserFlow(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newAdminApp(t, db)

	pending := models.User{
		Name: "yeni", Email: "yeni@test.local", PasswordHash: "x",
		Role: models.RoleClerk, RequiresApproval: true,
	}
	require.NoError(t, db.Create(&pending).Error)

	status, body := doJSON(t, app, "GET", "/admin/pending-users", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []userResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	status, _ = doJSON(t, app, "POST", "/admin/approve-user", token, fiber.Map{"user_id": pending.ID})
	require.Equal(t, fiber.StatusOK, status)

	var got models.User
	require.NoError(t, db.First(&got, pending.ID).Error)
	assert.False(t, got.RequiresApproval)

	// İkinci onay conflict döner
	status, _ = doJSON(t, app, "POST", "/admin/approve-user", token, fiber.Map{"user_id": pending.ID})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestCreateUserSkipsApproval(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newAdminApp(t, db)

	status, body := doJSON(t, app, "POST", "/admin/users", token, fiber.Map{
		"name": "el ile", "email": "elile@test.local", "password": "parola", "role": "cashier",
	})
	require.Equal(t, fiber.StatusCreated, status)

	var created userResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.False(t, created.RequiresApproval)

	// Aynı email ikinci kez açılamaz
	status, _ = doJSON(t, app, "POST", "/admin/users", token, fiber.Map{
		"name": "el ile", "email": "elile@test.local", "password": "parola", "role": "cashier",
	})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestRevokeUser(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newAdminApp(t, db)
	victim := testutil.CreateUser(t, db, "eski", models.RoleCashier)

	status, _ := doJSON(t, app, "DELETE", "/admin/users/"+itoa(victim.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	// Kayıt silinmez, iptal işaretlenir
	var got models.User
	require.NoError(t, db.First(&got, victim.ID).Error)
	assert.True(t, got.Revoked)
}

func TestRevokeSelfRejected(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newAdminApp(t, db)

	var admin models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).First(&admin).Error)

	status, _ := doJSON(t, app, "DELETE", "/admin/users/"+itoa(admin.ID), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
