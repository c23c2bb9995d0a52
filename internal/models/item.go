package models

import "time"

type StockStatus string

const (
	StockLow    StockStatus = "low"
	StockMedium StockStatus = "medium"
	StockEnough StockStatus = "enough"
)

type Item struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	SKU             string `gorm:"size:50;uniqueIndex;not null" json:"sku"`
	Name            string `gorm:"size:100;not null" json:"name"`
	Quantity        int    `gorm:"not null;default:0" json:"quantity"`
	BoxQuantity     int    `gorm:"not null;default:0" json:"box_quantity"`     // bir kolideki adet
	LowThreshold    int    `gorm:"not null;default:5" json:"low_threshold"`    // kritik stok sınırı
	MediumThreshold int    `gorm:"not null;default:20" json:"medium_threshold"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Prices []ItemPrice `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
}

// Status: eşiklere göre türetilen stok durumu
func (i *Item) Status() StockStatus {
	if i.Quantity <= i.LowThreshold {
		return StockLow
	}
	if i.Quantity <= i.MediumThreshold {
		return StockMedium
	}
	return StockEnough
}

type PriceType string

const (
	PriceTypeItem PriceType = "item" // adet fiyatı
	PriceTypeBox  PriceType = "box"  // koli fiyatı
)

type ItemPrice struct {
	ID        uint      `gorm:"primaryKey"`
	ItemID    uint      `gorm:"index;not null"`
	PriceType PriceType `gorm:"size:10;not null"`
	Price     float64   `gorm:"not null"`
}

// ItemImage: ürün görseli referansı (görselin kendisi diskte)
type ItemImage struct {
	ID     uint   `gorm:"primaryKey"`
	ItemID uint   `gorm:"index;not null"`
	Path   string `gorm:"size:255;not null"`
}
