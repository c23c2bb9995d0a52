package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Sink: bir oturuma JSON yazabilen bağlantı. Gerçekte websocket.Conn,
// testlerde kayıt tutan sahte bağlantı.
type Sink interface {
	WriteJSON(v any) error
}

// Session: tek bir canlı bağlantı. userID, istemci identify gönderene
// kadar 0'dır.
type Session struct {
	ID string

	mu     sync.Mutex
	userID uint
	sink   Sink
}

func (s *Session) Emit(event string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.WriteJSON(Envelope{Event: event, Data: data})
}

func (s *Session) UserID() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// InboundHandler: istemciden gelen bir event'in işleyicisi.
type InboundHandler func(s *Session, data json.RawMessage)

// Hub: kimlik -> canlı oturum kaydı. Sadece hub mutasyon yapar:
// identify'da eklenir, disconnect'te düşer.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[uint]*Session

	handlerMu sync.RWMutex
	handlers  map[string]InboundHandler
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		byUser:   make(map[uint]*Session),
		handlers: make(map[string]InboundHandler),
	}
}

// Default: uygulama genelindeki hub. Servisler broadcast'lerini buraya atar.
var Default = NewHub()

func (h *Hub) Add(sink Sink) *Session {
	s := &Session{ID: uuid.NewString(), sink: sink}
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	return s
}

func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID)
	if uid := s.UserID(); uid != 0 && h.byUser[uid] == s {
		delete(h.byUser, uid)
	}
}

// Identify: oturumu kullanıcıya bağla. Aynı kullanıcı ikinci kez
// bağlanırsa son oturum kazanır.
func (h *Hub) Identify(s *Session, userID uint) {
	if userID == 0 {
		return
	}
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	h.mu.Lock()
	h.byUser[userID] = s
	h.mu.Unlock()
}

// Broadcast: bağlı tüm oturumlara gönder.
func (h *Hub) Broadcast(event string, data any) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.Emit(event, data); err != nil {
			log.Printf("realtime: %s gönderilemedi (session %s): %v", event, s.ID, err)
		}
	}
}

// SendToUser: hedef kullanıcının canlı oturumu varsa sadece ona gönder,
// yoksa herkese broadcast (teslimat garantisi hassaslıktan önce gelir).
// Hedefli gönderilebildiyse true döner.
func (h *Hub) SendToUser(userID uint, event string, data any) bool {
	h.mu.RLock()
	target := h.byUser[userID]
	h.mu.RUnlock()

	if target == nil {
		h.Broadcast(event, data)
		return false
	}
	if err := target.Emit(event, data); err != nil {
		log.Printf("realtime: %s kullanıcıya gönderilemedi (user %d): %v", event, userID, err)
	}
	return true
}

// ConnectedUser: kullanıcının canlı oturumu var mı?
func (h *Hub) ConnectedUser(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byUser[userID] != nil
}

// HandleFunc: istemciden gelen event için işleyici kaydet.
// Route tablosu gibi main'de kurulur.
func (h *Hub) HandleFunc(event string, fn InboundHandler) {
	h.handlerMu.Lock()
	h.handlers[event] = fn
	h.handlerMu.Unlock()
}

type identifyPayload struct {
	UserID uint `json:"userId"`
	ID     uint `json:"id"`
}

// Dispatch: gelen mesajı işleyicisine yönlendir. identify hub'ın kendi işi.
func (h *Hub) Dispatch(s *Session, event string, data json.RawMessage) {
	if event == EventIdentify {
		var p identifyPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		uid := p.UserID
		if uid == 0 {
			uid = p.ID
		}
		if uid != 0 {
			h.Identify(s, uid)
			log.Printf("socket identified user %d -> %s", uid, s.ID)
		}
		return
	}

	h.handlerMu.RLock()
	fn := h.handlers[event]
	h.handlerMu.RUnlock()

	if fn == nil {
		log.Printf("realtime: bilinmeyen event: %s", event)
		return
	}
	fn(s, data)
}
