package cart

import (
	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCartBody struct {
	CustomerName string      `json:"customer_name"`
	Items        []LineInput `json:"items"`
}

// POST /api/carts (clerk/admin)
func CreateCartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCartBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		clerkID, clerkName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		view, serr := Create(clerkID, clerkName, body.CustomerName, body.Items)
		if serr != nil {
			return apperr.ToFiber(serr)
		}
		return c.JSON(fiber.Map{"id": view.ID, "saved": view})
	}
}

type cartActionBody struct {
	CartID        uint   `json:"cart_id"`
	PaymentMethod string `json:"payment_method"`
}

// POST /api/carts/confirm (cashier/admin)
func ConfirmCartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body cartActionBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		view, serr := Confirm(body.CartID, actorID, actorName)
		if serr != nil {
			return apperr.ToFiber(serr)
		}
		return c.JSON(fiber.Map{"ok": true, "saved": view})
	}
}

// POST /api/carts/pay (cashier/admin)
func PayCartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body cartActionBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		result, serr := Pay(body.CartID, actorID, actorName, body.PaymentMethod)
		if serr != nil {
			return apperr.ToFiber(serr)
		}
		return c.JSON(fiber.Map{"ok": true, "saved": result.Cart, "saleId": result.SaleID})
	}
}

// POST /api/carts/cancel (cashier/admin)
func CancelCartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body cartActionBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		view, serr := Cancel(body.CartID, actorID, actorName)
		if serr != nil {
			return apperr.ToFiber(serr)
		}
		return c.JSON(fiber.Map{"ok": true, "saved": view})
	}
}

// GET /api/carts/pending (kasiyer ekranı)
func PendingCartsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		views, err := Pending()
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(views)
	}
}

// GET /api/carts/:id/items
func CartItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sepet id")
		}

		var items []models.CartItem
		if dberr := database.DB.Preload("Item").
			Where("cart_id = ?", id).
			Find(&items).Error; dberr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sepet kalemleri listelenemedi")
		}

		out := make([]fiber.Map, 0, len(items))
		for _, it := range items {
			out = append(out, fiber.Map{
				"id":        it.ID,
				"item_id":   it.ItemID,
				"item_name": it.Item.Name,
				"quantity":  it.Quantity,
				"price":     it.Price,
			})
		}
		return c.JSON(out)
	}
}

// GET /api/carts/history?cart_id=&item_id=&start_date=&end_date=&min_total=
func CartHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := HistoryFilter{
			CartID:    uint(c.QueryInt("cart_id", 0)),
			ItemID:    uint(c.QueryInt("item_id", 0)),
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
			MinTotal:  c.QueryFloat("min_total", 0),
		}
		views, err := History(f)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(views)
	}
}
