package models

import "time"

type MovementType string

const (
	MovementRestock MovementType = "restock" // stok girişi (iade dahil)
	MovementSale    MovementType = "sale"    // satışla çıkan
	MovementRemove  MovementType = "remove"  // tezgahtarın raftan aldığı
)

// StockMovement: her miktar değişikliği için değiştirilemez denetim kaydı.
// created_at sırasına göre okunduğunda miktar geçmişi yeniden kurulabilir.
type StockMovement struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ItemID   uint `gorm:"index;not null" json:"item_id"`
	Item     Item `json:"-"`
	UserID   uint `gorm:"index;not null" json:"user_id"` // hareketi yapan kullanıcı
	Type     MovementType `gorm:"size:10;not null" json:"type"`
	Quantity int          `gorm:"not null" json:"quantity"` // hep pozitif, yön Type'tan belli
	Note     string       `gorm:"size:255" json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}
