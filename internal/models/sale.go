package models

import "time"

// Sale: ödeme tamamlandığında bir kez oluşturulan finansal kayıt.
type Sale struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	CashierID     uint    `gorm:"index;not null" json:"cashier_id"`
	Cashier       User    `json:"-"`
	Total         float64 `gorm:"not null" json:"total"`
	PaymentMethod string  `gorm:"size:20;not null" json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"-"`
}

type SaleItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	SaleID   uint    `gorm:"index;not null" json:"sale_id"`
	ItemID   uint    `gorm:"index;not null" json:"item_id"`
	Quantity int     `gorm:"not null" json:"quantity"`
	Price    float64 `gorm:"not null" json:"price"`
}
