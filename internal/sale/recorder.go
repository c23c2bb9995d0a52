package sale

import (
	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/models"

	"gorm.io/gorm"
)

// Line: satışa giren tek kalem.
type Line struct {
	ItemID   uint
	Quantity int
	Price    float64
}

// Record: satış kaydını oluşturur. Kalemler RecordLines ile ayrı yazılır,
// çünkü mark-paid akışında satış commit olduktan sonra kalem yazımı
// bilinçli olarak best-effort'tur.
func Record(tx *gorm.DB, cashierID uint, total float64, paymentMethod string) (*models.Sale, error) {
	if paymentMethod == "" {
		paymentMethod = "unknown"
	}
	s := models.Sale{
		CashierID:     cashierID,
		Total:         total,
		PaymentMethod: paymentMethod,
	}
	if err := tx.Create(&s).Error; err != nil {
		return nil, apperr.Internal("Satış kaydı oluşturulamadı", err)
	}
	return &s, nil
}

func RecordLines(tx *gorm.DB, saleID uint, lines []Line) error {
	for _, l := range lines {
		item := models.SaleItem{
			SaleID:   saleID,
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			Price:    l.Price,
		}
		if err := tx.Create(&item).Error; err != nil {
			return apperr.Dependency("Satış kalemi kaydedilemedi", err)
		}
	}
	return nil
}
