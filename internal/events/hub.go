// Package events fans record changes out to live dashboard connections.
package events

import (
	"sync"
	"time"

	"access_review/internal/metrics"
	"access_review/internal/models"
)

const (
	RecordCreated  = "record.created"
	RecordUpdated  = "record.updated"
	RecordReviewed = "record.reviewed"
	RecordDeleted  = "record.deleted"
)

type Event struct {
	Type     string               `json:"type"`
	RecordID string               `json:"recordId"`
	Record   *models.AccessRecord `json:"record,omitempty"`
	At       time.Time            `json:"at"`
}

// Hub delivers every published event to all current subscribers. A
// subscriber whose buffer is full misses the event; publishers never block.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{subs: make(map[chan Event]struct{}), buffer: buffer}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release it; it closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	metrics.EventSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
			metrics.EventSubscribers.Dec()
		})
	}
}

func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
