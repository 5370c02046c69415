package sse

import (
	"strings"
	"sync"
)

// Event is one server-sent event addressed to a user
type Event struct {
	Recipient string      `json:"-"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
}

// Hub fans events out to the open streams of each user, keyed by email
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
	closed      bool
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  16,
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Subscribe registers a stream for email and returns its channel and cleanup function
func (h *Hub) Subscribe(email string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	k := key(email)
	ch := make(chan Event, h.bufferSize)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	if h.subscribers[k] == nil {
		h.subscribers[k] = make(map[chan Event]struct{})
	}
	h.subscribers[k][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[k][ch]; !ok {
				return
			}
			delete(h.subscribers[k], ch)
			close(ch)
			if len(h.subscribers[k]) == 0 {
				delete(h.subscribers, k)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all streams of one user. Slow streams drop events.
func (h *Hub) Publish(email string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Recipient = email
	for ch := range h.subscribers[key(email)] {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishToMany sends an event to several users, once per distinct email
func (h *Hub) PublishToMany(emails []string, event Event) {
	seen := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		k := key(email)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		h.Publish(email, event)
	}
}

// SubscriberCount returns the number of active streams for a user
func (h *Hub) SubscriberCount(email string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[key(email)])
}

// Close ends every open stream and refuses new ones. It is safe to call
// more than once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for k, streams := range h.subscribers {
		for ch := range streams {
			close(ch)
		}
		delete(h.subscribers, k)
	}
}
