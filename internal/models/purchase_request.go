package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestConfirmed RequestStatus = "confirmed"
	RequestDenied    RequestStatus = "denied"
	RequestPaid      RequestStatus = "paid"
)

// PurchaseRequest: tezgahtarın stoktan mal alma talebi.
// pending -> confirmed | denied, paid'e pending veya confirmed'dan geçilir.
// Ödeme bilgileri eskiden note içinde JSON'dı, artık ayrı kolonlar.
type PurchaseRequest struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ItemID   uint `gorm:"index;not null" json:"item_id"`
	Item     Item `json:"-"`
	ClerkID  uint `gorm:"index;not null" json:"clerk_id"`
	Clerk    User `json:"-"`
	Quantity int  `gorm:"not null" json:"quantity"`

	Note     string    `gorm:"size:255" json:"note"`               // serbest metin
	UnitType PriceType `gorm:"size:10;default:item" json:"unit_type"` // item / box
	Price    float64   `json:"price"`                              // birim fiyat (talep anında)

	Status RequestStatus `gorm:"size:10;index;not null" json:"status"`

	PaymentMethod string     `gorm:"size:20" json:"payment_method,omitempty"`
	PaidBy        *uint      `json:"paid_by,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
