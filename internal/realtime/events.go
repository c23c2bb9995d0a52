package realtime

// Sunucudan istemcilere giden event isimleri.
const (
	EventStockUpdate  = "stock:update"
	EventStockRefresh = "stock:refresh"

	EventPurchaseNew       = "purchase:new"
	EventPurchaseConfirmed = "purchase:confirmed"
	EventPurchaseDenied    = "purchase:denied"
	EventPurchasePaid      = "purchase:paid"

	EventCartNew       = "cart:new"
	EventCartConfirmed = "cart:confirmed"
	EventCartPaid      = "cart:paid"
	EventCartCancelled = "cart:cancelled"

	EventSaleCreated = "sale:created"

	EventCallCreated  = "call:created"
	EventCallNew      = "call:new"
	EventCallResponse = "call:response"

	EventGlobalMessage = "global:message"
	EventDailyReport   = "admin:daily_report"
)

// İstemcilerden gelen event isimleri.
const (
	EventIdentify        = "identify"
	EventCallClerk       = "call:clerk"
	EventCallRespond     = "call:response"
	EventPurchaseRequest = "purchase:request"
)

// Envelope: kablodaki tek mesaj formatı, iki yönde de aynı.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
