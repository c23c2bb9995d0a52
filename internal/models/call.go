package models

import "time"

type CallStatus string

const (
	CallPending  CallStatus = "pending"
	CallAnswered CallStatus = "answered" // tezgahtar geliyor
	CallOccupied CallStatus = "occupied" // tezgahtarın müşterisi var
)

// Call: kasiyerden tezgahtara geçici çağrı kaydı. Stok/para etkisi yok,
// sadece bildirim el sıkışması.
type Call struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CallerID  uint       `gorm:"index;not null" json:"caller_id"` // çağıran kasiyer
	ClerkID   uint       `gorm:"index;not null" json:"clerk_id"`  // çağrılan tezgahtar
	Status    CallStatus `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
