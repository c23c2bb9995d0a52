package admin

import (
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/analytics?start_date=&end_date=
// Satış toplamları: genel ciro, ödeme yöntemine göre ve kasiyere göre.
func AnalyticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Sale{})
		if s := c.Query("start_date"); s != "" {
			q = q.Where("created_at >= ?", s)
		}
		if e := c.Query("end_date"); e != "" {
			q = q.Where("created_at <= ?", e+" 23:59:59")
		}

		var sales []models.Sale
		if err := q.Preload("Cashier").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar okunamadı")
		}

		totalRevenue := 0.0
		byPayment := make(map[string]float64)
		type cashierTotal struct {
			Name    string  `json:"name"`
			Count   int     `json:"count"`
			Revenue float64 `json:"revenue"`
		}
		perCashier := make(map[uint]*cashierTotal)

		for _, s := range sales {
			totalRevenue += s.Total
			byPayment[s.PaymentMethod] += s.Total

			ct, ok := perCashier[s.CashierID]
			if !ok {
				ct = &cashierTotal{Name: s.Cashier.Name}
				perCashier[s.CashierID] = ct
			}
			ct.Count++
			ct.Revenue += s.Total
		}

		// Tezgahtar tarafı: talep sayıları
		type clerkTotal struct {
			ClerkID uint   `json:"clerk_id"`
			Name    string `json:"name"`
			Count   int64  `json:"count"`
		}
		var perClerk []clerkTotal
		if err := database.DB.Model(&models.PurchaseRequest{}).
			Select("purchase_requests.clerk_id, users.name, COUNT(*) as count").
			Joins("JOIN users ON users.id = purchase_requests.clerk_id").
			Group("purchase_requests.clerk_id, users.name").
			Scan(&perClerk).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talep istatistikleri okunamadı")
		}

		return c.JSON(fiber.Map{
			"total_revenue": totalRevenue,
			"sales_count":   len(sales),
			"by_payment":    byPayment,
			"per_cashier":   perCashier,
			"per_clerk":     perClerk,
		})
	}
}

// GET /api/admin/purchases?status= — tüm talep geçmişi.
func PurchaseHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("Item").Preload("Clerk")
		if s := c.Query("status"); s != "" {
			q = q.Where("status = ?", s)
		}

		var reqs []models.PurchaseRequest
		if err := q.Order("created_at DESC").Find(&reqs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talepler listelenemedi")
		}

		out := make([]fiber.Map, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, fiber.Map{
				"id":             r.ID,
				"item_id":        r.ItemID,
				"item_name":      r.Item.Name,
				"clerk_id":       r.ClerkID,
				"clerk_name":     r.Clerk.Name,
				"quantity":       r.Quantity,
				"status":         r.Status,
				"note":           r.Note,
				"unit_type":      r.UnitType,
				"price":          r.Price,
				"payment_method": r.PaymentMethod,
				"paid_by":        r.PaidBy,
				"paid_at":        r.PaidAt,
				"created_at":     r.CreatedAt,
			})
		}
		return c.JSON(out)
	}
}
