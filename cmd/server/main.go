package main

import (
	"encoding/json"
	"log"
	"strings"

	"stokpos-backend/internal/admin"
	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/call"
	"stokpos-backend/internal/cart"
	"stokpos-backend/internal/config"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/inventory"
	"stokpos-backend/internal/message"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/purchase"
	"stokpos-backend/internal/realtime"
	"stokpos-backend/internal/sale"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Ürün görselleri
	app.Static("/uploads", cfg.ItemImagePath)

	// WebSocket: kimlik bağlama ve çağrı/talep event'leri
	registerSocketHandlers(realtime.Default)
	app.Use("/ws", realtime.UpgradeMiddleware())
	app.Get("/ws", realtime.SocketHandler(realtime.Default))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/signup", auth.SignupHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/private-admin-signup", auth.PrivateAdminSignupHandler(cfg))
	api.Get("/auth/private-admin-signup", auth.PrivateAdminSignupInfoHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Ürünler ve stok
	protected.Get("/items", inventory.ListItemsHandler())
	protected.Get("/items/low", inventory.LowStockHandler())
	protected.Get("/items/:id/movements", inventory.ListMovementsHandler())
	protected.Post("/items", auth.RequireRole(models.RoleAdmin), inventory.CreateItemHandler(cfg))
	protected.Post("/items/restock", auth.RequireRole(models.RoleAdmin, models.RoleCashier), inventory.RestockHandler())
	protected.Post("/items/:id/price", auth.RequireRole(models.RoleAdmin), inventory.SetItemPriceHandler())

	// Mal alma talepleri
	protected.Post("/purchases/request", auth.RequireRole(models.RoleClerk, models.RoleAdmin), purchase.CreateRequestHandler())
	protected.Post("/purchases/confirm", auth.RequireRole(models.RoleCashier, models.RoleAdmin), purchase.ConfirmHandler())
	protected.Post("/purchases/deny", auth.RequireRole(models.RoleCashier, models.RoleAdmin), purchase.DenyHandler())
	protected.Post("/purchases/mark-paid", auth.RequireRole(models.RoleCashier, models.RoleAdmin), purchase.MarkPaidHandler())
	protected.Get("/purchases/pending", purchase.PendingHandler())
	protected.Get("/purchases/mine", auth.RequireRole(models.RoleClerk, models.RoleAdmin), purchase.MineHandler())

	// Sepetler
	protected.Post("/carts", auth.RequireRole(models.RoleClerk, models.RoleAdmin), cart.CreateCartHandler())
	protected.Post("/carts/confirm", auth.RequireRole(models.RoleCashier, models.RoleAdmin), cart.ConfirmCartHandler())
	protected.Post("/carts/pay", auth.RequireRole(models.RoleCashier, models.RoleAdmin), cart.PayCartHandler())
	protected.Post("/carts/cancel", auth.RequireRole(models.RoleCashier, models.RoleAdmin), cart.CancelCartHandler())
	protected.Get("/carts/pending", cart.PendingCartsHandler())
	protected.Get("/carts/history", auth.RequireRole(models.RoleCashier, models.RoleAdmin), cart.CartHistoryHandler())
	protected.Get("/carts/:id/items", cart.CartItemsHandler())

	// Doğrudan satış (kasa)
	protected.Post("/sales", auth.RequireRole(models.RoleCashier, models.RoleAdmin), sale.CreateSaleHandler())

	// Mesajlaşma (tüm roller, target ile hedefli gönderim)
	protected.Post("/messages", message.SendMessageHandler())

	// Audit logs
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Delete("/users/:id", admin.RevokeUserHandler())
	adminRoutes.Get("/pending-users", admin.PendingUsersHandler())
	adminRoutes.Post("/approve-user", admin.ApproveUserHandler())

	adminRoutes.Get("/sales", sale.ListSalesHandler())
	adminRoutes.Get("/purchases", admin.PurchaseHistoryHandler())
	adminRoutes.Get("/analytics", admin.AnalyticsHandler())
	adminRoutes.Get("/reports/daily", admin.DailyReportHandler(cfg))
	adminRoutes.Get("/reports/daily/xlsx", admin.DailyReportExcelHandler())

	// Gece yarısı gün sonu raporu
	reportCron := admin.StartDailyReportJob(cfg)
	defer reportCron.Stop()

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}

// registerSocketHandlers: istemciden gelen socket event'lerini servislere
// bağlar. HTTP ile aynı servis fonksiyonları kullanılır, socket ayrı bir
// iş kuralı yolu değildir.
func registerSocketHandlers(hub *realtime.Hub) {
	hub.HandleFunc(realtime.EventCallClerk, func(s *realtime.Session, data json.RawMessage) {
		var p struct {
			ClerkID uint `json:"clerk_id"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		callerID := s.UserID()
		if callerID == 0 {
			return
		}
		if _, err := call.Place(callerID, p.ClerkID); err != nil {
			log.Printf("call:clerk başarısız (user %d): %v", callerID, err)
		}
	})

	hub.HandleFunc(realtime.EventCallRespond, func(s *realtime.Session, data json.RawMessage) {
		var p struct {
			CallID   uint   `json:"call_id"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		clerkID := s.UserID()
		if clerkID == 0 {
			return
		}
		var clerk models.User
		if err := database.DB.First(&clerk, "id = ?", clerkID).Error; err != nil {
			return
		}
		if _, err := call.Respond(p.CallID, p.Response, clerkID, clerk.Name); err != nil {
			log.Printf("call:response başarısız (call %d): %v", p.CallID, err)
		}
	})

	hub.HandleFunc(realtime.EventPurchaseRequest, func(s *realtime.Session, data json.RawMessage) {
		var p struct {
			ItemID   uint             `json:"item_id"`
			Quantity int              `json:"quantity"`
			Note     string           `json:"note"`
			UnitType models.PriceType `json:"unit_type"`
			Price    float64          `json:"price"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		clerkID := s.UserID()
		if clerkID == 0 {
			return
		}
		if _, err := purchase.Create(purchase.CreateInput{
			ItemID:   p.ItemID,
			ClerkID:  clerkID,
			Quantity: p.Quantity,
			Note:     p.Note,
			UnitType: p.UnitType,
			Price:    p.Price,
		}); err != nil {
			log.Printf("purchase:request başarısız (user %d): %v", clerkID, err)
		}
	})
}
