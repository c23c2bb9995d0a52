package sale

import (
	"fmt"
	"sort"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/inventory"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DirectSaleBody struct {
	PaymentMethod string `json:"payment_method"`
	Items         []struct {
		ItemID   uint    `json:"item_id"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	} `json:"items"`
}

// POST /api/sales (cashier/admin): kasada yapılan doğrudan satış.
// Sepet/talep akışından geçmez, stok burada düşer.
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DirectSaleBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satış kalemi zorunlu")
		}

		cashierID, cashierName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		total := 0.0
		lines := make([]Line, 0, len(body.Items))
		for _, it := range body.Items {
			if it.ItemID == 0 || it.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalemlerde item_id zorunlu, quantity pozitif olmalı")
			}
			total += it.Price * float64(it.Quantity)
			lines = append(lines, Line{ItemID: it.ItemID, Quantity: it.Quantity, Price: it.Price})
		}

		// Aynı anda iki satışın ortak ürünlerde kilitlenmemesi için id
		// sırasıyla, tekrar eden kalemler için tek sefer kilitle
		seen := make(map[uint]bool, len(lines))
		itemIDs := make([]uint, 0, len(lines))
		for _, l := range lines {
			if !seen[l.ItemID] {
				seen[l.ItemID] = true
				itemIDs = append(itemIDs, l.ItemID)
			}
		}
		sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })
		for _, id := range itemIDs {
			unlock := database.LockEntity("item", id)
			defer unlock()
		}

		var saleRec *models.Sale
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var serr error
			saleRec, serr = Record(tx, cashierID, total, body.PaymentMethod)
			if serr != nil {
				return serr
			}
			if serr = RecordLines(tx, saleRec.ID, lines); serr != nil {
				return serr
			}
			for _, l := range lines {
				if _, serr = inventory.AdjustQuantity(tx, l.ItemID, -l.Quantity, cashierID,
					models.MovementSale, fmt.Sprintf("Satış %d", saleRec.ID)); serr != nil {
					return serr
				}
			}
			return nil
		})
		if txErr != nil {
			return apperr.ToFiber(txErr)
		}

		realtime.Default.Broadcast(realtime.EventSaleCreated, map[string]any{"saleId": saleRec.ID})
		realtime.Default.Broadcast(realtime.EventStockRefresh, map[string]any{})

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      cashierID,
			UserName:    cashierName,
			EntityType:  "sale",
			EntityID:    saleRec.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("direct_sale: total=%.2f method=%s", total, saleRec.PaymentMethod),
			After:       saleRec,
		})

		return c.JSON(fiber.Map{"id": saleRec.ID, "saved": saleRec})
	}
}

// GET /api/admin/sales?start_date=&end_date= (admin)
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("Cashier").Preload("Items")
		if s := c.Query("start_date"); s != "" {
			q = q.Where("created_at >= ?", s)
		}
		if e := c.Query("end_date"); e != "" {
			q = q.Where("created_at <= ?", e+" 23:59:59")
		}

		var sales []models.Sale
		if err := q.Order("created_at DESC").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		out := make([]fiber.Map, 0, len(sales))
		for _, s := range sales {
			items := make([]fiber.Map, 0, len(s.Items))
			for _, it := range s.Items {
				items = append(items, fiber.Map{
					"item_id":  it.ItemID,
					"quantity": it.Quantity,
					"price":    it.Price,
				})
			}
			out = append(out, fiber.Map{
				"id":             s.ID,
				"cashier_id":     s.CashierID,
				"cashier_name":   s.Cashier.Name,
				"total":          s.Total,
				"payment_method": s.PaymentMethod,
				"created_at":     s.CreatedAt,
				"items":          items,
			})
		}
		return c.JSON(out)
	}
}
