package message

import (
	"strings"
	"time"

	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

type sendBody struct {
	Message string `json:"message"`
	Target  uint   `json:"target"` // 0 = herkese
}

// POST /api/messages: bağlı ekranlara mesaj gönderir. target verilirse
// sadece o kullanıcının oturumuna, verilmezse herkese. Kalıcı kayıt yok,
// mesaj sadece o an bağlı olanlara ulaşır.
func SendMessageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body sendBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Message = strings.TrimSpace(body.Message)
		if body.Message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Mesaj boş olamaz")
		}

		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		_, userName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		payload := fiber.Map{
			"from_id":    userID,
			"from_name":  userName,
			"from_role":  role,
			"message":    body.Message,
			"target":     body.Target,
			"created_at": time.Now(),
		}

		if body.Target != 0 {
			realtime.Default.SendToUser(body.Target, realtime.EventGlobalMessage, payload)
		} else {
			realtime.Default.Broadcast(realtime.EventGlobalMessage, payload)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "message",
			Action:      models.AuditActionCreate,
			Description: "global_message: " + body.Message,
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}
