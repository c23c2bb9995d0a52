package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleCashier UserRole = "cashier"
	RoleClerk   UserRole = "clerk"
)

// ValidRole: signup'tan gelen rol adı tanımlı mı?
func ValidRole(r UserRole) bool {
	return r == RoleAdmin || r == RoleCashier || r == RoleClerk
}

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`

	// Hesap durumu (eski user_meta tablosu buraya taşındı)
	Revoked          bool `gorm:"not null;default:false"`
	RequiresApproval bool `gorm:"not null;default:false"` // admin onayı bekliyor mu?

	CreatedAt time.Time
	UpdatedAt time.Time
}
