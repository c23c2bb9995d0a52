package inventory

import (
	"sync"
	"testing"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustQuantityWritesMovement(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	item := testutil.CreateItem(t, db, "kola", 10)

	got, err := AdjustQuantity(db, item.ID, -3, user.ID, models.MovementSale, "test")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)

	var mv models.StockMovement
	require.NoError(t, db.First(&mv).Error)
	assert.Equal(t, models.MovementSale, mv.Type)
	assert.Equal(t, 3, mv.Quantity) // hep pozitif
	assert.Equal(t, user.ID, mv.UserID)
}

func TestAdjustQuantityToExactlyZero(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	item := testutil.CreateItem(t, db, "kola", 5)

	got, err := AdjustQuantity(db, item.ID, -5, user.ID, models.MovementSale, "")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestAdjustQuantityRejectsNegativeStock(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	item := testutil.CreateItem(t, db, "kola", 5)

	_, err := AdjustQuantity(db, item.ID, -6, user.ID, models.MovementSale, "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidationError))

	// Başarısız ayarlama hareket bırakmamalı
	var count int64
	db.Model(&models.StockMovement{}).Count(&count)
	assert.Zero(t, count)

	var got models.Item
	require.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, 5, got.Quantity)
}

// Farklı iş akışları aynı ürüne farklı entity kilitleri üzerinden ulaşır;
// miktar güncellemesi göreli olduğu için hiçbir artış kaybolmamalı.
func TestAdjustQuantityConcurrentDeltasAllLand(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	item := testutil.CreateItem(t, db, "kola", 100)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := AdjustQuantity(db, item.ID, 1, user.ID, models.MovementRestock, "eşzamanlı giriş")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var got models.Item
	require.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, 100+workers, got.Quantity)

	var movements int64
	db.Model(&models.StockMovement{}).Where("item_id = ?", item.ID).Count(&movements)
	assert.Equal(t, int64(workers), movements)
}

func TestAdjustQuantityUnknownItem(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)

	_, err := AdjustQuantity(db, 999, 1, user.ID, models.MovementRestock, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
