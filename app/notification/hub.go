package notification

import (
	"sync"

	"github.com/estateshq/estates-backend/estates-notification/model"
)

// Hub fans invalidation signals out to an owner's attached observers
// (browser tabs on the websocket endpoint). Subscribe returns a disposer;
// observer lifetime is explicit and independent of any UI lifecycle.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan model.Signal
	nextID int
	closed bool
}

// NewHub creates an empty observer hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan model.Signal)}
}

// Subscribe registers an observer. The returned disposer releases it; calling
// the disposer twice is harmless.
func (h *Hub) Subscribe() (<-chan model.Signal, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan model.Signal, 8)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[id] = ch

	var once sync.Once
	dispose := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}
	return ch, dispose
}

// Broadcast delivers a signal to every observer. Sends never block: a slow
// observer misses the hint and catches up on its next re-fetch, which is
// equivalent because invalidation is idempotent.
func (h *Hub) Broadcast(sig model.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- sig:
		default:
		}
	}
}

// Observers reports how many observers are attached.
func (h *Hub) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close releases every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
