package testutil

import (
	"testing"

	"stokpos-backend/internal/database"
	"stokpos-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDB: in-memory sqlite üzerinde tam şemayı kurar ve global bağlantıyı
// test süresince değiştirir. Tek bağlantı zorunlu, yoksa her pool bağlantısı
// ayrı bir boş memory veritabanı görür.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})

	return db
}

// CreateUser: test kullanıcısı. Şifre hash'i sahte, login testleri kendi
// hash'ini üretir.
func CreateUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        name + "@test.local",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

// CreateItem: verilen stokla test ürünü.
func CreateItem(t *testing.T, db *gorm.DB, name string, quantity int) *models.Item {
	t.Helper()
	it := models.Item{
		SKU:             "SKU_" + name,
		Name:            name,
		Quantity:        quantity,
		LowThreshold:    5,
		MediumThreshold: 20,
	}
	require.NoError(t, db.Create(&it).Error)
	return &it
}
