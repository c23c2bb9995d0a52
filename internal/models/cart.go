package models

import "time"

type CartStatus string

const (
	CartSent      CartStatus = "sent"
	CartConfirmed CartStatus = "confirmed"
	CartPaid      CartStatus = "paid"      // terminal
	CartCancelled CartStatus = "cancelled" // terminal
)

// Cart: tezgahtarın müşteri için hazırladığı sepet.
// sent -> confirmed -> paid, veya sent|confirmed -> cancelled.
type Cart struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ClerkID      uint       `gorm:"index;not null" json:"clerk_id"`
	Clerk        User       `json:"-"`
	CustomerName string     `gorm:"size:100" json:"customer_name"`
	Status       CartStatus `gorm:"size:10;index;not null" json:"status"`
	Total        float64    `gorm:"not null" json:"total"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
}

// CartItem: sepetle birlikte oluşturulur, sonradan değişmez.
type CartItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	CartID   uint    `gorm:"index;not null" json:"cart_id"`
	ItemID   uint    `gorm:"index;not null" json:"item_id"`
	Item     Item    `json:"-"`
	Quantity int     `gorm:"not null" json:"quantity"`
	Price    float64 `gorm:"not null" json:"price"` // sepet anındaki birim fiyat
}
