package database

import (
	"log"

	"stokpos-backend/internal/config"
	"stokpos-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	seedDefaultAdmin(DB)

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: tüm modelleri migrate et. Testler sqlite üzerinde aynı şemayı kurar.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.ItemPrice{},
		&models.ItemImage{},
		&models.StockMovement{},
		&models.PurchaseRequest{},
		&models.Cart{},
		&models.CartItem{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Call{},
		&models.AuditLog{},
	)
}

// seedDefaultAdmin: hiç admin yoksa varsayılan admin oluştur.
// İlk kurulumdan sonra şifre mutlaka değiştirilmeli.
func seedDefaultAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Varsayılan admin şifresi hashlenemedi: %v", err)
		return
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@local",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Varsayılan admin oluşturulamadı: %v", err)
		return
	}
	log.Println("Varsayılan admin oluşturuldu: email=admin@local password=admin")
}
