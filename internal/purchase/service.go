package purchase

import (
	"fmt"
	"time"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/inventory"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"
	"stokpos-backend/internal/sale"

	"gorm.io/gorm"
)

// RequestView: HTTP cevabı ve broadcast payload'ı, item/clerk adları join'li.
type RequestView struct {
	models.PurchaseRequest
	ItemName  string `json:"item_name"`
	ClerkName string `json:"clerk_name"`
}

func loadView(db *gorm.DB, requestID uint) (*RequestView, error) {
	var req models.PurchaseRequest
	if err := db.Preload("Item").Preload("Clerk").First(&req, "id = ?", requestID).Error; err != nil {
		return nil, apperr.NotFound("Talep bulunamadı")
	}
	return &RequestView{
		PurchaseRequest: req,
		ItemName:        req.Item.Name,
		ClerkName:       req.Clerk.Name,
	}, nil
}

type CreateInput struct {
	ItemID   uint
	ClerkID  uint
	Quantity int
	Note     string
	UnitType models.PriceType
	Price    float64
}

// Create: tezgahtar malı raftan fiziksel olarak aldığı için stok hemen
// düşülür (iyimser çıkış); talep pending olarak açılır. Yetersiz stokta
// talep tamamen reddedilir.
func Create(in CreateInput) (*RequestView, error) {
	if in.Quantity <= 0 {
		return nil, apperr.Validation("Miktar pozitif olmalı")
	}
	if in.UnitType == "" {
		in.UnitType = models.PriceTypeItem
	}
	if in.UnitType != models.PriceTypeItem && in.UnitType != models.PriceTypeBox {
		return nil, apperr.Validation("Geçersiz birim tipi")
	}
	if in.Price < 0 {
		return nil, apperr.Validation("Fiyat negatif olamaz")
	}

	unlock := database.LockEntity("item", in.ItemID)
	defer unlock()

	var req models.PurchaseRequest
	var item *models.Item
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var aerr error
		item, aerr = inventory.AdjustQuantity(tx, in.ItemID, -in.Quantity, in.ClerkID,
			models.MovementRemove, "Tezgahtar stoktan aldı")
		if aerr != nil {
			return aerr
		}

		req = models.PurchaseRequest{
			ItemID:   in.ItemID,
			ClerkID:  in.ClerkID,
			Quantity: in.Quantity,
			Note:     in.Note,
			UnitType: in.UnitType,
			Price:    in.Price,
			Status:   models.RequestPending,
		}
		return tx.Create(&req).Error
	})
	if err != nil {
		return nil, err
	}

	view, verr := loadView(database.DB, req.ID)
	if verr != nil {
		return nil, verr
	}

	realtime.Default.Broadcast(realtime.EventPurchaseNew, view)
	realtime.Default.Broadcast(realtime.EventStockUpdate, map[string]any{
		"item_id":  item.ID,
		"quantity": item.Quantity,
	})

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      in.ClerkID,
		UserName:    view.ClerkName,
		EntityType:  "purchase_request",
		EntityID:    req.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Talep açıldı: %s x%d", view.ItemName, in.Quantity),
		After:       req,
	})

	return view, nil
}

// Confirm: pending talebi onaylar. Mal resmi olarak envanter muhasebesine
// geri girer: miktar iade edilir ve restock hareketi yazılır.
func Confirm(requestID, actorID uint, actorName string) (*RequestView, error) {
	unlock := database.LockEntity("purchase_request", requestID)
	defer unlock()

	var item *models.Item
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var req models.PurchaseRequest
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			return apperr.NotFound("Talep bulunamadı")
		}
		if req.Status != models.RequestPending {
			return apperr.InvalidState("Talep zaten işlenmiş")
		}

		if err := tx.Model(&req).Update("status", models.RequestConfirmed).Error; err != nil {
			return apperr.Internal("Talep güncellenemedi", err)
		}

		var aerr error
		item, aerr = inventory.AdjustQuantity(tx, req.ItemID, req.Quantity, actorID,
			models.MovementRestock, fmt.Sprintf("Talep %d onaylandı", requestID))
		return aerr
	})
	if err != nil {
		return nil, err
	}

	view, verr := loadView(database.DB, requestID)
	if verr != nil {
		return nil, verr
	}

	realtime.Default.Broadcast(realtime.EventPurchaseConfirmed, view)
	realtime.Default.Broadcast(realtime.EventStockUpdate, map[string]any{
		"item_id":  item.ID,
		"quantity": item.Quantity,
	})

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "purchase_request",
		EntityID:    requestID,
		Action:      models.AuditActionUpdate,
		Description: "purchase_confirmed",
		After:       view.PurchaseRequest,
	})

	return view, nil
}

// Deny: pending talebi reddeder ve iyimser stok düşüşünü geri alır.
func Deny(requestID, actorID uint, actorName, reason string) (*RequestView, error) {
	unlock := database.LockEntity("purchase_request", requestID)
	defer unlock()

	var item *models.Item
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var req models.PurchaseRequest
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			return apperr.NotFound("Talep bulunamadı")
		}
		if req.Status != models.RequestPending {
			return apperr.InvalidState("Talep zaten işlenmiş")
		}

		if err := tx.Model(&req).Update("status", models.RequestDenied).Error; err != nil {
			return apperr.Internal("Talep güncellenemedi", err)
		}

		var aerr error
		item, aerr = inventory.AdjustQuantity(tx, req.ItemID, req.Quantity, actorID,
			models.MovementRestock, fmt.Sprintf("Talep %d reddedildi: %s", requestID, reason))
		return aerr
	})
	if err != nil {
		return nil, err
	}

	view, verr := loadView(database.DB, requestID)
	if verr != nil {
		return nil, verr
	}

	realtime.Default.Broadcast(realtime.EventPurchaseDenied, view)
	realtime.Default.Broadcast(realtime.EventStockUpdate, map[string]any{
		"item_id":  item.ID,
		"quantity": item.Quantity,
	})

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "purchase_request",
		EntityID:    requestID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("purchase_denied: %s", reason),
		After:       view.PurchaseRequest,
	})

	return view, nil
}

// PaidResult: mark-paid sonucu. Partial true ise talep paid oldu ve satış
// kaydı açıldı ama satış kalemi yazılamadı; operatör elle mutabakat yapar.
type PaidResult struct {
	Request *RequestView
	SaleID  uint
	Partial bool
}

// MarkPaid: pending veya confirmed talebi ödenmiş yapar ve satış kaydı
// oluşturur. Terminal durumlardan (denied/paid) geçiş yok.
func MarkPaid(requestID, actorID uint, actorName, paymentMethod string) (*PaidResult, error) {
	unlock := database.LockEntity("purchase_request", requestID)
	defer unlock()

	if paymentMethod == "" {
		paymentMethod = "unknown"
	}

	var req models.PurchaseRequest
	var saleRec *models.Sale
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			return apperr.NotFound("Talep bulunamadı")
		}
		if req.Status != models.RequestPending && req.Status != models.RequestConfirmed {
			return apperr.InvalidState("Talep bu durumdan ödenemez")
		}

		now := time.Now()
		updates := map[string]any{
			"status":         models.RequestPaid,
			"payment_method": paymentMethod,
			"paid_by":        actorID,
			"paid_at":        now,
		}
		if err := tx.Model(&req).Updates(updates).Error; err != nil {
			return apperr.Internal("Talep güncellenemedi", err)
		}

		total := req.Price * float64(req.Quantity)
		var serr error
		saleRec, serr = sale.Record(tx, actorID, total, paymentMethod)
		return serr
	})
	if err != nil {
		return nil, err
	}

	// Satış kalemi bilerek transaction dışında: patlarsa talep paid kalır
	// ve cevap partial döner.
	partial := false
	if lerr := sale.RecordLines(database.DB, saleRec.ID, []sale.Line{
		{ItemID: req.ItemID, Quantity: req.Quantity, Price: req.Price},
	}); lerr != nil {
		partial = true
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "purchase_request",
			EntityID:    requestID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("purchase_paid_partial: sale=%d: %v", saleRec.ID, lerr),
		})
	}

	view, verr := loadView(database.DB, requestID)
	if verr != nil {
		return nil, verr
	}

	realtime.Default.Broadcast(realtime.EventPurchasePaid, view)
	realtime.Default.Broadcast(realtime.EventSaleCreated, map[string]any{"saleId": saleRec.ID})

	if !partial {
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "purchase_request",
			EntityID:    requestID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("purchase_paid: sale=%d method=%s", saleRec.ID, paymentMethod),
			After:       view.PurchaseRequest,
		})
	}

	return &PaidResult{Request: view, SaleID: saleRec.ID, Partial: partial}, nil
}

// Pending: bekleyen talepler, item/clerk adlarıyla.
func Pending() ([]RequestView, error) {
	return listViews(database.DB.Where("status = ?", models.RequestPending))
}

// Mine: tezgahtarın kendi talepleri, en yeni önce.
func Mine(clerkID uint) ([]RequestView, error) {
	return listViews(database.DB.Where("clerk_id = ?", clerkID))
}

func listViews(q *gorm.DB) ([]RequestView, error) {
	var reqs []models.PurchaseRequest
	if err := q.Preload("Item").Preload("Clerk").
		Order("created_at DESC, id DESC").
		Find(&reqs).Error; err != nil {
		return nil, apperr.Internal("Talepler listelenemedi", err)
	}
	views := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, RequestView{
			PurchaseRequest: r,
			ItemName:        r.Item.Name,
			ClerkName:       r.Clerk.Name,
		})
	}
	return views, nil
}
