// Package realtime fans row change events out to subscribed streams.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
)

// Publisher accepts change events for delivery.
type Publisher interface {
	Publish(ctx context.Context, ev api.ChangeEvent) error
}

// Filter selects events for one subscriber. An empty RowID matches every
// row of Table.
type Filter struct {
	Table string
	RowID string
}

func (f Filter) match(ev api.ChangeEvent) bool {
	if f.Table != "" && f.Table != ev.Table {
		return false
	}
	return f.RowID == "" || f.RowID == ev.RowID
}

type subscriber struct {
	filter Filter
	ch     chan api.ChangeEvent
}

// Hub delivers events to in-process subscribers. Sends never block: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[int]*subscriber), buffer: buffer}
}

// Subscribe registers a subscriber. The returned cancel func removes it and
// closes the channel; calling it more than once is safe.
func (h *Hub) Subscribe(f Filter) (<-chan api.ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	s := &subscriber{filter: f, ch: make(chan api.ChangeEvent, h.buffer)}
	h.subs[id] = s

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

// Publish delivers ev to every matching subscriber.
func (h *Hub) Publish(_ context.Context, ev api.ChangeEvent) error {
	h.Deliver(ev)
	return nil
}

// Deliver is Publish without the context, used by relays.
func (h *Hub) Deliver(ev api.ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		if !s.filter.match(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
