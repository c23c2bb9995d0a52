package cart

import (
	"net/http/httptest"
	"testing"

	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/config"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sepet geçmişi kasa ekranıdır: tezgahtar göremez, kasiyer ve admin görür.
func TestCartHistoryRequiresCashierOrAdmin(t *testing.T) {
	db := testutil.SetupDB(t)
	cfg := &config.Config{JWTSecret: "test-secret-test-secret-test-secret!"}

	app := fiber.New()
	app.Get("/carts/history",
		auth.JWTMiddleware(cfg),
		auth.RequireRole(models.RoleCashier, models.RoleAdmin),
		CartHistoryHandler())

	cases := []struct {
		role models.UserRole
		want int
	}{
		{models.RoleClerk, fiber.StatusForbidden},
		{models.RoleCashier, fiber.StatusOK},
		{models.RoleAdmin, fiber.StatusOK},
	}
	for _, tc := range cases {
		user := testutil.CreateUser(t, db, "hist-"+string(tc.role), tc.role)
		token, err := auth.GenerateToken(cfg.JWTSecret, user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/carts/history", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "rol: %s", tc.role)
	}
}
