package testutil

import (
	"sync"
	"testing"

	"stokpos-backend/internal/realtime"
)

// RecorderSink: teste giden event'leri biriktiren sahte bağlantı.
type RecorderSink struct {
	mu     sync.Mutex
	events []realtime.Envelope
}

func (r *RecorderSink) WriteJSON(v any) error {
	env, ok := v.(realtime.Envelope)
	if !ok {
		return nil
	}
	r.mu.Lock()
	r.events = append(r.events, env)
	r.mu.Unlock()
	return nil
}

// Events: o ana kadar yazılan event'lerin kopyası.
func (r *RecorderSink) Events() []realtime.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.Envelope, len(r.events))
	copy(out, r.events)
	return out
}

// Received: verilen isimde event geldi mi?
func (r *RecorderSink) Received(event string) bool {
	for _, e := range r.Events() {
		if e.Event == event {
			return true
		}
	}
	return false
}

// ConnectRecorder: global hub'a kayıt tutan bir oturum bağlar ve test
// bitince düşürür. userID 0 ise oturum anonim kalır.
func ConnectRecorder(t *testing.T, userID uint) *RecorderSink {
	t.Helper()
	sink := &RecorderSink{}
	session := realtime.Default.Add(sink)
	if userID != 0 {
		realtime.Default.Identify(session, userID)
	}
	t.Cleanup(func() { realtime.Default.Remove(session) })
	return sink
}
