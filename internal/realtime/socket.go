package realtime

import (
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// UpgradeMiddleware: /ws sadece websocket upgrade isteklerini kabul eder.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SocketHandler: bağlantı yaşam döngüsü. Oturum hub'a eklenir,
// bağlantı kopunca düşer.
func SocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sess := hub.Add(conn)
		defer hub.Remove(sess)

		log.Println("socket connected", sess.ID)

		for {
			var frame inboundFrame
			if err := conn.ReadJSON(&frame); err != nil {
				// bağlantı koptu veya bozuk frame geldi
				return
			}
			if frame.Event == "" {
				continue
			}
			hub.Dispatch(sess, frame.Event, frame.Data)
		}
	})
}
