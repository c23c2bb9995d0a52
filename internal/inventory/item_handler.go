package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/config"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ItemResponse struct {
	ID              uint               `json:"id"`
	SKU             string             `json:"sku"`
	Name            string             `json:"name"`
	Quantity        int                `json:"quantity"`
	BoxQuantity     int                `json:"box_quantity"`
	LowThreshold    int                `json:"low_threshold"`
	MediumThreshold int                `json:"medium_threshold"`
	Status          models.StockStatus `json:"status"`
	PriceItem       *float64           `json:"price_item"`
	PriceBox        *float64           `json:"price_box"`
	Image           string             `json:"image,omitempty"`
	CreatedAt       string             `json:"created_at"`
}

func toItemResponse(item *models.Item, prices []models.ItemPrice, imagePath string) ItemResponse {
	resp := ItemResponse{
		ID:              item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		Quantity:        item.Quantity,
		BoxQuantity:     item.BoxQuantity,
		LowThreshold:    item.LowThreshold,
		MediumThreshold: item.MediumThreshold,
		Status:          item.Status(),
		Image:           imagePath,
		CreatedAt:       item.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, p := range prices {
		price := p.Price
		switch p.PriceType {
		case models.PriceTypeItem:
			resp.PriceItem = &price
		case models.PriceTypeBox:
			resp.PriceBox = &price
		}
	}
	return resp
}

// POST /api/items (admin)
// multipart/form-data: sku, name, quantity, box_quantity, price_item,
// price_box, image (opsiyonel dosya)
func CreateItemHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := strings.TrimSpace(c.FormValue("name"))
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}

		sku := strings.TrimSpace(c.FormValue("sku"))
		if sku == "" {
			sku = fmt.Sprintf("SKU_%d", time.Now().UnixMilli())
		}

		item := models.Item{
			SKU:             sku,
			Name:            name,
			LowThreshold:    5,
			MediumThreshold: 20,
		}
		if _, err := fmt.Sscan(c.FormValue("quantity", "0"), &item.Quantity); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "quantity geçersiz")
		}
		if _, err := fmt.Sscan(c.FormValue("box_quantity", "0"), &item.BoxQuantity); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "box_quantity geçersiz")
		}
		if item.Quantity < 0 || item.BoxQuantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktarlar negatif olamaz")
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün oluşturulamadı, SKU kayıtlı olabilir")
		}

		// Fiyat etiketleri
		for _, pt := range []struct {
			field string
			typ   models.PriceType
		}{{"price_item", models.PriceTypeItem}, {"price_box", models.PriceTypeBox}} {
			raw := c.FormValue(pt.field)
			if raw == "" {
				continue
			}
			var price float64
			if _, err := fmt.Sscan(raw, &price); err != nil || price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, pt.field+" geçersiz")
			}
			database.DB.Create(&models.ItemPrice{ItemID: item.ID, PriceType: pt.typ, Price: price})
		}

		// Görsel (opsiyonel)
		imagePath := ""
		if file, err := c.FormFile("image"); err == nil && file != nil {
			if mkErr := os.MkdirAll(cfg.ItemImagePath, 0o755); mkErr == nil {
				filename := fmt.Sprintf("item_%d_%d%s", item.ID, time.Now().UnixMilli(), filepath.Ext(file.Filename))
				dst := filepath.Join(cfg.ItemImagePath, filename)
				if saveErr := c.SaveFile(file, dst); saveErr == nil {
					imagePath = "/uploads/" + filename
					database.DB.Create(&models.ItemImage{ItemID: item.ID, Path: imagePath})
				}
			}
		}

		userID, userName, err := auth.CurrentUserName(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Ürün eklendi: %s", item.Name),
				After:       item,
			})
		}

		var prices []models.ItemPrice
		database.DB.Where("item_id = ?", item.ID).Find(&prices)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": toItemResponse(&item, prices, imagePath)})
	}
}

// GET /api/items
// Tüm ürünler, türetilmiş status + fiyat etiketleri + görsel yolu ile.
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Item
		if err := database.DB.Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		var prices []models.ItemPrice
		database.DB.Find(&prices)
		pricesByItem := make(map[uint][]models.ItemPrice)
		for _, p := range prices {
			pricesByItem[p.ItemID] = append(pricesByItem[p.ItemID], p)
		}

		var images []models.ItemImage
		database.DB.Find(&images)
		imageByItem := make(map[uint]string)
		for _, im := range images {
			if _, ok := imageByItem[im.ItemID]; !ok {
				imageByItem[im.ItemID] = im.Path
			}
		}

		resp := make([]ItemResponse, 0, len(items))
		for i := range items {
			resp = append(resp, toItemResponse(&items[i], pricesByItem[items[i].ID], imageByItem[items[i].ID]))
		}
		return c.JSON(resp)
	}
}

// GET /api/items/low
// medium eşiğinin altındaki ürünler; is_low kritik eşiğin altını işaretler.
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Item
		if err := database.DB.
			Where("quantity <= medium_threshold").
			Order("quantity ASC").
			Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		type lowItem struct {
			ItemResponse
			IsLow bool `json:"is_low"`
		}
		resp := make([]lowItem, 0, len(items))
		for i := range items {
			resp = append(resp, lowItem{
				ItemResponse: toItemResponse(&items[i], nil, ""),
				IsLow:        items[i].Quantity <= items[i].LowThreshold,
			})
		}
		return c.JSON(resp)
	}
}

type RestockRequest struct {
	ItemID   uint   `json:"item_id"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// POST /api/items/restock
// Stok girişi: miktarı artırır, restock hareketi yazar, stock:update yayar.
func RestockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ItemID == 0 || body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_id zorunlu, quantity pozitif olmalı")
		}

		userID, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		unlock := database.LockEntity("item", body.ItemID)
		defer unlock()

		var item *models.Item
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var aerr error
			item, aerr = AdjustQuantity(tx, body.ItemID, body.Quantity, userID, models.MovementRestock, body.Note)
			return aerr
		})
		if txErr != nil {
			return apperr.ToFiber(txErr)
		}

		realtime.Default.Broadcast(realtime.EventStockUpdate, fiber.Map{
			"item_id":  item.ID,
			"quantity": item.Quantity,
		})

		return c.JSON(fiber.Map{
			"item_id":  item.ID,
			"quantity": item.Quantity,
			"status":   item.Status(),
		})
	}
}

// GET /api/items/:id/movements
// Hareket geçmişi, en yeni önce.
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := c.ParamsInt("id")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var item models.Item
		if err := database.DB.First(&item, "id = ?", itemID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var movements []models.StockMovement
		if err := database.DB.
			Where("item_id = ?", itemID).
			Order("created_at DESC, id DESC").
			Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		return c.JSON(movements)
	}
}

type SetPriceRequest struct {
	PriceType models.PriceType `json:"price_type"`
	Price     float64          `json:"price"`
}

// POST /api/items/:id/price (admin)
// Tek fiyat etiketini günceller (varsa eskisi silinir).
func SetItemPriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := c.ParamsInt("id")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var body SetPriceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.PriceType != models.PriceTypeItem && body.PriceType != models.PriceTypeBox {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz price_type")
		}
		if body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
		}

		var item models.Item
		if err := database.DB.First(&item, "id = ?", itemID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("item_id = ? AND price_type = ?", itemID, body.PriceType).
				Delete(&models.ItemPrice{}).Error; err != nil {
				return err
			}
			return tx.Create(&models.ItemPrice{
				ItemID:    uint(itemID),
				PriceType: body.PriceType,
				Price:     body.Price,
			}).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fiyat güncellenemedi")
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}
