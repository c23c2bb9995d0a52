package call

import (
	"fmt"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/audit"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"
)

// Place: kasiyer tezgahtarı çağırır. Kayıt pending açılır, çağrılan
// tezgahtarın canlı oturumu yoksa çağrı herkese duyurulur.
func Place(callerID, clerkID uint) (*models.Call, error) {
	if clerkID == 0 {
		return nil, apperr.Validation("clerk_id zorunlu")
	}

	var clerk models.User
	if err := database.DB.First(&clerk, "id = ?", clerkID).Error; err != nil {
		return nil, apperr.NotFound("Tezgahtar bulunamadı")
	}

	crec := models.Call{
		CallerID: callerID,
		ClerkID:  clerkID,
		Status:   models.CallPending,
	}
	if err := database.DB.Create(&crec).Error; err != nil {
		return nil, apperr.Internal("Çağrı oluşturulamadı", err)
	}

	payload := map[string]any{
		"id":        crec.ID,
		"caller_id": callerID,
		"clerk_id":  clerkID,
		"status":    crec.Status,
	}

	// Çağırana onay, hedefe bildirim
	realtime.Default.SendToUser(callerID, realtime.EventCallCreated, payload)
	realtime.Default.SendToUser(clerkID, realtime.EventCallNew, payload)

	return &crec, nil
}

// Respond: tezgahtarın cevabı. answered "geliyorum", have_customer "meşgul"
// anlamına çevrilir; tanınmayan cevaplar olduğu gibi geçer.
func Respond(callID uint, response string, clerkID uint, clerkName string) (*models.Call, error) {
	unlock := database.LockEntity("call", callID)
	defer unlock()

	var crec models.Call
	if err := database.DB.First(&crec, "id = ?", callID).Error; err != nil {
		return nil, apperr.NotFound("Çağrı bulunamadı")
	}
	if crec.Status != models.CallPending {
		return nil, apperr.InvalidState("Çağrı zaten cevaplanmış")
	}

	status := models.CallStatus(response)
	message := response
	switch response {
	case "answered":
		status = models.CallAnswered
		message = "coming"
	case "have_customer":
		status = models.CallOccupied
		message = "occupied"
	}

	if err := database.DB.Model(&crec).Update("status", status).Error; err != nil {
		return nil, apperr.Internal("Çağrı güncellenemedi", err)
	}
	crec.Status = status

	realtime.Default.SendToUser(crec.CallerID, realtime.EventCallResponse, map[string]any{
		"id":       crec.ID,
		"clerk_id": crec.ClerkID,
		"status":   status,
		"response": response, // ham cevap
		"message":  message,  // ekranda gösterilen karşılık
	})

	_ = audit.WriteLog(audit.LogOptions{
		UserID:      clerkID,
		UserName:    clerkName,
		EntityType:  "call",
		EntityID:    crec.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("call_response: %s", message),
		After:       crec,
	})

	return &crec, nil
}
