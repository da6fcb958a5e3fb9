package realtime

import (
	"log"
	"sync"

	"absensi/internal/models"
)

const subscriberBuffer = 32

// AttendanceHub fans attendance events out to live subscribers. A slow
// subscriber loses events instead of blocking publishers.
type AttendanceHub struct {
	mu   sync.RWMutex
	subs map[chan models.AttendanceEvent]struct{}
}

func NewAttendanceHub() *AttendanceHub {
	return &AttendanceHub{subs: make(map[chan models.AttendanceEvent]struct{})}
}

func (h *AttendanceHub) Subscribe() (<-chan models.AttendanceEvent, func()) {
	ch := make(chan models.AttendanceEvent, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *AttendanceHub) Publish(ev models.AttendanceEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("[live][drop] event=%s subscriber buffer full", ev.ID)
		}
	}
}

func (h *AttendanceHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Serve streams events to conn until the client goes away.
func (h *AttendanceHub) Serve(conn *Conn) {
	events, unsubscribe := h.Subscribe()
	defer unsubscribe()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.Drain()
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("[live][write] err=%v", err)
				return
			}
		}
	}
}
