package message

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/config"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"
	"stokpos-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageApp(t *testing.T, user *models.User) (*fiber.App, string) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret-test-secret-test-secret!"}

	token, err := auth.GenerateToken(cfg.JWTSecret, user)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Post("/messages", auth.JWTMiddleware(cfg), SendMessageHandler())
	return app, token
}

func postMessage(t *testing.T, app *fiber.App, token string, body any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/messages", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestSendMessageBroadcastPayload(t *testing.T) {
	db := testutil.SetupDB(t)
	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)
	app, token := newMessageApp(t, clerk)

	sink := testutil.ConnectRecorder(t, 0)

	status := postMessage(t, app, token, fiber.Map{"message": "kasa 2 açılıyor"})
	require.Equal(t, fiber.StatusOK, status)

	require.True(t, sink.Received(realtime.EventGlobalMessage))
	for _, e := range sink.Events() {
		if e.Event == realtime.EventGlobalMessage {
			payload := e.Data.(fiber.Map)
			assert.Equal(t, clerk.ID, payload["from_id"])
			assert.Equal(t, clerk.Name, payload["from_name"])
			assert.Equal(t, models.RoleClerk, payload["from_role"])
			assert.Equal(t, "kasa 2 açılıyor", payload["message"])
			assert.Equal(t, uint(0), payload["target"])
			assert.NotNil(t, payload["created_at"])
		}
	}
}

func TestSendMessageTargetedDelivery(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)
	app, token := newMessageApp(t, cashier)

	clerkSink := testutil.ConnectRecorder(t, clerk.ID)
	otherSink := testutil.ConnectRecorder(t, 0)

	status := postMessage(t, app, token, fiber.Map{
		"message": "depoya bakar mısın",
		"target":  clerk.ID,
	})
	require.Equal(t, fiber.StatusOK, status)

	assert.True(t, clerkSink.Received(realtime.EventGlobalMessage))
	// Hedefli mesaj diğer oturumlara gitmez
	assert.False(t, otherSink.Received(realtime.EventGlobalMessage))
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.CreateUser(t, db, "yonetici", models.RoleAdmin)
	app, token := newMessageApp(t, admin)

	status := postMessage(t, app, token, fiber.Map{"message": "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
