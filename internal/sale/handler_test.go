package sale

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"stokpos-backend/internal/auth"
	"stokpos-backend/internal/config"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSaleApp(t *testing.T, db *gorm.DB) (*fiber.App, string) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret-test-secret-test-secret!"}

	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	token, err := auth.GenerateToken(cfg.JWTSecret, cashier)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Post("/sales", auth.JWTMiddleware(cfg), auth.RequireRole(models.RoleCashier, models.RoleAdmin), CreateSaleHandler())
	return app, token
}

func postSale(t *testing.T, app *fiber.App, token string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/sales", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestDirectSaleDecrementsStock(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newSaleApp(t, db)
	kola := testutil.CreateItem(t, db, "kola", 20)

	status, _ := postSale(t, app, token, fiber.Map{
		"payment_method": "cash",
		"items": []fiber.Map{
			{"item_id": kola.ID, "quantity": 3, "price": 4.00},
		},
	})
	require.Equal(t, fiber.StatusOK, status)

	var got models.Item
	require.NoError(t, db.First(&got, kola.ID).Error)
	assert.Equal(t, 17, got.Quantity)

	var saleRec models.Sale
	require.NoError(t, db.Preload("Items").First(&saleRec).Error)
	assert.Equal(t, 12.00, saleRec.Total)
	require.Len(t, saleRec.Items, 1)

	var mv models.StockMovement
	require.NoError(t, db.First(&mv).Error)
	assert.Equal(t, models.MovementSale, mv.Type)
	assert.Equal(t, 3, mv.Quantity)
}

func TestDirectSaleInsufficientStockRollsBack(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newSaleApp(t, db)
	kola := testutil.CreateItem(t, db, "kola", 20)
	cips := testutil.CreateItem(t, db, "cips", 1)

	status, body := postSale(t, app, token, fiber.Map{
		"payment_method": "cash",
		"items": []fiber.Map{
			{"item_id": kola.ID, "quantity": 3, "price": 4.00},
			{"item_id": cips.ID, "quantity": 5, "price": 7.50},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Yetersiz stok", body["error"])

	// Satış da stok düşüşü de kalmamalı
	var saleCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	assert.Zero(t, saleCount)

	var got models.Item
	require.NoError(t, db.First(&got, kola.ID).Error)
	assert.Equal(t, 20, got.Quantity)
}

// Aynı ürün iki ayrı kalem olarak gelebilir (adet + koli fiyatı); istek
// takılmadan dönmeli ve toplam düşüş iki kalemin toplamı olmalı.
func TestDirectSaleWithDuplicateItemLines(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newSaleApp(t, db)
	kola := testutil.CreateItem(t, db, "kola", 20)

	status, _ := postSale(t, app, token, fiber.Map{
		"payment_method": "cash",
		"items": []fiber.Map{
			{"item_id": kola.ID, "quantity": 2, "price": 4.00},
			{"item_id": kola.ID, "quantity": 3, "price": 3.50},
		},
	})
	require.Equal(t, fiber.StatusOK, status)

	var got models.Item
	require.NoError(t, db.First(&got, kola.ID).Error)
	assert.Equal(t, 15, got.Quantity)

	var saleRec models.Sale
	require.NoError(t, db.Preload("Items").First(&saleRec).Error)
	assert.Equal(t, 18.50, saleRec.Total)
	assert.Len(t, saleRec.Items, 2)
}

func TestDirectSaleRequiresItems(t *testing.T) {
	db := testutil.SetupDB(t)
	app, token := newSaleApp(t, db)

	status, _ := postSale(t, app, token, fiber.Map{"payment_method": "cash", "items": []fiber.Map{}})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
