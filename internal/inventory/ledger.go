package inventory

import (
	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/models"

	"gorm.io/gorm"
)

// AdjustQuantity: ürün miktarını delta kadar değiştirir ve stok hareketi
// yazar. Çağıranın transaction'ı içinde çalışır; miktar eksiye düşecekse
// hiçbir şey yazmadan hata döner, eksi stok yok.
//
// Güncelleme göreli tek UPDATE'tir (quantity = quantity + delta, eksiye
// düşüş WHERE'de engelli): farklı kilitler üzerinden aynı ürüne ulaşan iki
// handler oku-hesapla-yaz yarışına giremez.
func AdjustQuantity(tx *gorm.DB, itemID uint, delta int, actorID uint, mvType models.MovementType, note string) (*models.Item, error) {
	res := tx.Model(&models.Item{}).
		Where("id = ? AND quantity + ? >= 0", itemID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return nil, apperr.Internal("Stok güncellenemedi", res.Error)
	}

	if res.RowsAffected == 0 {
		var exists models.Item
		if err := tx.First(&exists, "id = ?", itemID).Error; err != nil {
			return nil, apperr.NotFound("Ürün bulunamadı")
		}
		return nil, apperr.Validation("Yetersiz stok")
	}

	var item models.Item
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, apperr.Internal("Ürün okunamadı", err)
	}

	qty := delta
	if qty < 0 {
		qty = -qty
	}
	movement := models.StockMovement{
		ItemID:   item.ID,
		UserID:   actorID,
		Type:     mvType,
		Quantity: qty,
		Note:     note,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, apperr.Internal("Stok hareketi kaydedilemedi", err)
	}

	return &item, nil
}
