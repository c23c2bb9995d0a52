package purchase

import (
	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateRequestBody struct {
	ItemID   uint             `json:"item_id"`
	Quantity int              `json:"quantity"`
	Note     string           `json:"note"`
	UnitType models.PriceType `json:"unit_type"`
	Price    float64          `json:"price"`
}

// POST /api/purchases/request (clerk/admin)
func CreateRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		clerkID, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		view, serr := Create(CreateInput{
			ItemID:   body.ItemID,
			ClerkID:  clerkID,
			Quantity: body.Quantity,
			Note:     body.Note,
			UnitType: body.UnitType,
			Price:    body.Price,
		})
		if serr != nil {
			return apperr.ToFiber(serr)
		}

		return c.JSON(fiber.Map{"id": view.ID, "saved": view})
	}
}

type actionBody struct {
	RequestID     uint   `json:"request_id"`
	Reason        string `json:"reason"`
	PaymentMethod string `json:"payment_method"`
}

// POST /api/purchases/confirm (cashier/admin)
func ConfirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body actionBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		view, serr := Confirm(body.RequestID, actorID, actorName)
		if serr != nil {
			return apperr.ToFiber(serr)
		}
		return c.JSON(fiber.Map{"ok": true, "saved": view})
	}
}

// POST /api/purchases/deny (cashier/admin)
func DenyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body actionBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		view, serr := Deny(body.RequestID, actorID, actorName, body.Reason)
		if serr != nil {
			return apperr.ToFiber(serr)
		}
		return c.JSON(fiber.Map{"ok": true, "saved": view})
	}
}

// POST /api/purchases/mark-paid (cashier/admin)
func MarkPaidHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body actionBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := auth.CurrentUserName(c)
		if err != nil {
			return err
		}

		result, serr := MarkPaid(body.RequestID, actorID, actorName, body.PaymentMethod)
		if serr != nil {
			return apperr.ToFiber(serr)
		}

		if result.Partial {
			// Talep paid oldu ama satış kalemi yazılamadı, elle mutabakat gerekir
			return c.JSON(fiber.Map{
				"ok":      false,
				"partial": true,
				"saved":   result.Request,
				"saleId":  result.SaleID,
				"note":    "Satış kalemi kaydedilemedi",
			})
		}

		return c.JSON(fiber.Map{"ok": true, "saved": result.Request, "saleId": result.SaleID})
	}
}

// GET /api/purchases/pending
func PendingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		views, err := Pending()
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(views)
	}
}

// GET /api/purchases/mine (clerk'in kendi talepleri)
func MineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clerkID, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		views, serr := Mine(clerkID)
		if serr != nil {
			return apperr.ToFiber(serr)
		}
		return c.JSON(views)
	}
}
