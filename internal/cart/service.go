package cart

import (
	"fmt"
	"sort"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/inventory"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"
	"stokpos-backend/internal/sale"

	"gorm.io/gorm"
)

// CartView: HTTP cevabı ve broadcast payload'ı, clerk adı join'li.
type CartView struct {
	models.Cart
	ClerkName string `json:"clerk_name"`
}

func loadView(db *gorm.DB, cartID uint) (*CartView, error) {
	var crt models.Cart
	if err := db.Preload("Clerk").First(&crt, "id = ?", cartID).Error; err != nil {
		return nil, apperr.NotFound("Sepet bulunamadı")
	}
	return &CartView{Cart: crt, ClerkName: crt.Clerk.Name}, nil
}

type LineInput struct {
	ItemID   uint    `json:"item_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Create: sepeti sent durumunda açar, her kalem için stok düşer ve remove
// hareketi yazılır. Herhangi bir kalemde stok yetmezse sepetin tamamı
// reddedilir.
func Create(clerkID uint, clerkName, customerName string, lines []LineInput) (*CartView, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("Sepet boş olamaz")
	}
	for _, l := range lines {
		if l.ItemID == 0 || l.Quantity <= 0 {
			return nil, apperr.Validation("Kalemlerde item_id zorunlu, quantity pozitif olmalı")
		}
		if l.Price < 0 {
			return nil, apperr.Validation("Fiyat negatif olamaz")
		}
	}

	// Aynı iki sepetin ortak ürünlerde kilitlenmemesi için id sırasıyla,
	// tekrar eden kalemler için tek sefer kilitle
	seen := make(map[uint]bool, len(lines))
	itemIDs := make([]uint, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			itemIDs = append(itemIDs, l.ItemID)
		}
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })
	for _, id := range itemIDs {
		unlock := database.LockEntity("item", id)
		defer unlock()
	}

	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}

	var crt models.Cart
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		crt = models.Cart{
			ClerkID:      clerkID,
			CustomerName: customerName,
			Status:       models.CartSent,
			Total:        total,
		}
		if err := tx.Create(&crt).Error; err != nil {
			return apperr.Internal("Sepet oluşturulamadı", err)
		}

		for _, l := range lines {
			item := models.CartItem{
				CartID:   crt.ID,
				ItemID:   l.ItemID,
				Quantity: l.Quantity,
				Price:    l.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return apperr.Internal("Sepet kalemi oluşturulamadı", err)
			}
			if _, err := inventory.AdjustQuantity(tx, l.ItemID, -l.Quantity, clerkID,
				models.MovementRemove, fmt.Sprintf("Sepet %d için ayrıldı", crt.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, verr := loadView(database.DB, crt.ID)
	if verr != nil {
		return nil, verr
	}

	realtime.Default.Broadcast(realtime.EventCartNew, map[string]any{"cart": view})
	realtime.Default.Broadcast(realtime.EventStockRefresh, map[string]any{})

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      clerkID,
		UserName:    clerkName,
		EntityType:  "cart",
		EntityID:    crt.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("cart_created: total=%.2f", total),
		After:       crt,
	})

	return view, nil
}

// Confirm: sent sepeti onaylar. Stok etkisi yok, stok zaten açılışta düştü.
func Confirm(cartID, actorID uint, actorName string) (*CartView, error) {
	unlock := database.LockEntity("cart", cartID)
	defer unlock()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var crt models.Cart
		if err := tx.First(&crt, "id = ?", cartID).Error; err != nil {
			return apperr.NotFound("Sepet bulunamadı")
		}
		if crt.Status != models.CartSent {
			return apperr.InvalidState("Sepet bu durumdan onaylanamaz")
		}
		return tx.Model(&crt).Update("status", models.CartConfirmed).Error
	})
	if err != nil {
		return nil, err
	}

	view, verr := loadView(database.DB, cartID)
	if verr != nil {
		return nil, verr
	}

	realtime.Default.Broadcast(realtime.EventCartConfirmed, view)

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "cart",
		EntityID:    cartID,
		Action:      models.AuditActionUpdate,
		Description: "cart_confirmed",
		After:       view.Cart,
	})

	return view, nil
}

// PayResult: ödeme sonucu.
type PayResult struct {
	Cart   *CartView
	SaleID uint
}

// Pay: sepeti paid yapar, kalemlerden satış kaydı oluşturur.
func Pay(cartID, actorID uint, actorName, paymentMethod string) (*PayResult, error) {
	unlock := database.LockEntity("cart", cartID)
	defer unlock()

	var saleRec *models.Sale
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var crt models.Cart
		if err := tx.Preload("Items").First(&crt, "id = ?", cartID).Error; err != nil {
			return apperr.NotFound("Sepet bulunamadı")
		}
		if crt.Status == models.CartPaid || crt.Status == models.CartCancelled {
			return apperr.InvalidState("Sepet bu durumdan ödenemez")
		}

		if err := tx.Model(&crt).Update("status", models.CartPaid).Error; err != nil {
			return apperr.Internal("Sepet güncellenemedi", err)
		}

		var serr error
		saleRec, serr = sale.Record(tx, actorID, crt.Total, paymentMethod)
		if serr != nil {
			return serr
		}

		lines := make([]sale.Line, 0, len(crt.Items))
		for _, it := range crt.Items {
			lines = append(lines, sale.Line{ItemID: it.ItemID, Quantity: it.Quantity, Price: it.Price})
		}
		return sale.RecordLines(tx, saleRec.ID, lines)
	})
	if err != nil {
		return nil, err
	}

	view, verr := loadView(database.DB, cartID)
	if verr != nil {
		return nil, verr
	}

	realtime.Default.Broadcast(realtime.EventCartPaid, view)
	realtime.Default.Broadcast(realtime.EventSaleCreated, map[string]any{"saleId": saleRec.ID})

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "cart",
		EntityID:    cartID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("cart_paid: sale=%d method=%s", saleRec.ID, paymentMethod),
		After:       view.Cart,
	})

	return &PayResult{Cart: view, SaleID: saleRec.ID}, nil
}

// Cancel: sent veya confirmed sepeti iptal eder; her kalemin miktarı stoka
// iade edilir. paid ve cancelled terminaldir.
func Cancel(cartID, actorID uint, actorName string) (*CartView, error) {
	unlock := database.LockEntity("cart", cartID)
	defer unlock()

	type stockChange struct {
		itemID   uint
		quantity int
	}
	var changes []stockChange

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var crt models.Cart
		if err := tx.Preload("Items").First(&crt, "id = ?", cartID).Error; err != nil {
			return apperr.NotFound("Sepet bulunamadı")
		}
		if crt.Status == models.CartPaid || crt.Status == models.CartCancelled {
			return apperr.InvalidState("Sepet iptal edilemez")
		}

		for _, it := range crt.Items {
			item, aerr := inventory.AdjustQuantity(tx, it.ItemID, it.Quantity, actorID,
				models.MovementRestock, fmt.Sprintf("Sepet %d iptal edildi", cartID))
			if aerr != nil {
				return aerr
			}
			changes = append(changes, stockChange{itemID: item.ID, quantity: item.Quantity})
		}

		return tx.Model(&crt).Update("status", models.CartCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	view, verr := loadView(database.DB, cartID)
	if verr != nil {
		return nil, verr
	}

	for _, ch := range changes {
		realtime.Default.Broadcast(realtime.EventStockUpdate, map[string]any{
			"item_id":  ch.itemID,
			"quantity": ch.quantity,
		})
	}
	realtime.Default.Broadcast(realtime.EventCartCancelled, view)

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "cart",
		EntityID:    cartID,
		Action:      models.AuditActionUpdate,
		Description: "cart_cancelled",
		After:       view.Cart,
	})

	return view, nil
}

// Pending: kasiyer ekranı için sent durumundaki sepetler.
func Pending() ([]CartView, error) {
	var carts []models.Cart
	if err := database.DB.Preload("Clerk").
		Where("status = ?", models.CartSent).
		Order("created_at ASC").
		Find(&carts).Error; err != nil {
		return nil, apperr.Internal("Sepetler listelenemedi", err)
	}
	views := make([]CartView, 0, len(carts))
	for _, crt := range carts {
		views = append(views, CartView{Cart: crt, ClerkName: crt.Clerk.Name})
	}
	return views, nil
}

// HistoryFilter: sepet geçmişi sorgusu (kasiyer ve admin ekranları).
type HistoryFilter struct {
	CartID    uint
	ItemID    uint
	StartDate string // "2006-01-02"
	EndDate   string
	MinTotal  float64
}

func History(f HistoryFilter) ([]CartView, error) {
	q := database.DB.Preload("Clerk").Preload("Items")
	if f.CartID != 0 {
		q = q.Where("id = ?", f.CartID)
	}
	if f.StartDate != "" {
		q = q.Where("created_at >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("created_at <= ?", f.EndDate+" 23:59:59")
	}
	if f.MinTotal > 0 {
		q = q.Where("total >= ?", f.MinTotal)
	}

	var carts []models.Cart
	if err := q.Order("created_at DESC").Find(&carts).Error; err != nil {
		return nil, apperr.Internal("Sepet geçmişi listelenemedi", err)
	}

	views := make([]CartView, 0, len(carts))
	for _, crt := range carts {
		if f.ItemID != 0 {
			found := false
			for _, it := range crt.Items {
				if it.ItemID == f.ItemID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		views = append(views, CartView{Cart: crt, ClerkName: crt.Clerk.Name})
	}
	return views, nil
}
