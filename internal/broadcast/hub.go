// Package broadcast is the process-wide "image updated" signal. There is a
// single topic and no payload: subscribers re-read whatever they display.
package broadcast

import "sync"

// TopicImageUpdated names the only topic; it doubles as the SSE event name.
const TopicImageUpdated = "image-updated"

// Hub fans a payload-free signal out to subscribers.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan struct{}
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener. The returned channel receives at most one
// pending signal; bursts coalesce. cancel unregisters and closes the channel.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish signals every subscriber without blocking.
func (h *Hub) Publish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
