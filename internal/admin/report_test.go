package admin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stokpos-backend/internal/config"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSale(t *testing.T, db *gorm.DB, cashierID uint, total float64, method string, lines ...models.SaleItem) *models.Sale {
	t.Helper()
	s := models.Sale{CashierID: cashierID, Total: total, PaymentMethod: method}
	require.NoError(t, db.Create(&s).Error)
	for _, l := range lines {
		l.SaleID = s.ID
		require.NoError(t, db.Create(&l).Error)
	}
	return &s
}

func TestBuildDailyReportAggregates(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	kola := testutil.CreateItem(t, db, "kola", 100)
	cips := testutil.CreateItem(t, db, "cips", 100)

	seedSale(t, db, cashier.ID, 20.00, "cash",
		models.SaleItem{ItemID: kola.ID, Quantity: 5, Price: 4.00})
	seedSale(t, db, cashier.ID, 15.00, "card",
		models.SaleItem{ItemID: kola.ID, Quantity: 1, Price: 4.00},
		models.SaleItem{ItemID: cips.ID, Quantity: 2, Price: 5.50})

	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)
	require.NoError(t, db.Create(&models.Cart{ClerkID: clerk.ID, Status: models.CartPaid, Total: 20.00}).Error)

	report, err := BuildDailyReport(time.Now())
	require.NoError(t, err)

	assert.Equal(t, 35.00, report.Revenue)
	assert.Equal(t, 2, report.SalesCount)
	assert.Equal(t, 2, report.Customers)
	assert.Equal(t, 1, report.PaidCarts)
	assert.Equal(t, 20.00, report.ByPayment["cash"])
	assert.Equal(t, 15.00, report.ByPayment["card"])

	require.Len(t, report.Products, 2)
	byName := make(map[string]ProductLine)
	for _, p := range report.Products {
		byName[p.Name] = p
	}
	assert.Equal(t, 6, byName["kola"].Quantity)
	assert.Equal(t, 24.00, byName["kola"].Revenue)
	assert.Equal(t, 2, byName["cips"].Quantity)
}

func TestBuildDailyReportEmptyDay(t *testing.T) {
	testutil.SetupDB(t)

	report, err := BuildDailyReport(time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Zero(t, report.Revenue)
	assert.Zero(t, report.SalesCount)
	assert.Empty(t, report.Products)
}

func TestArchiveReportWritesJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{ReportPath: filepath.Join(dir, "reports")}
	report := &DailyReport{
		Date:      "2026-08-29",
		Revenue:   35.00,
		ByPayment: map[string]float64{"cash": 35.00},
	}

	require.NoError(t, ArchiveReport(cfg, report))

	raw, err := os.ReadFile(filepath.Join(cfg.ReportPath, "daily-2026-08-29.json"))
	require.NoError(t, err)

	var got DailyReport
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, report.Revenue, got.Revenue)
	assert.Equal(t, report.Date, got.Date)
}

func TestReportToExcel(t *testing.T) {
	report := &DailyReport{
		Date:      "2026-08-29",
		Revenue:   35.00,
		ByPayment: map[string]float64{"cash": 35.00},
		Products:  []ProductLine{{Name: "kola", Quantity: 6, Revenue: 24.00}},
	}

	f, err := ReportToExcel(report)
	require.NoError(t, err)
	defer f.Close()

	val, err := f.GetCellValue("Gün Sonu", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29", val)
}
