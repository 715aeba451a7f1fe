package kv

import "sync"

// Change is published after a key was written (Value set) or deleted (Deleted).
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
	Remote  bool // made by another process
}

// Hub fans out changes to subscribers.
// Slow subscribers do not block writers: a change is dropped for a subscriber whose buffer is full.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
}

type subscription struct {
	key string // empty: all keys
	ch  chan Change
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscription)}
}

// Subscribe returns a channel of changes for key (all keys when empty) and a func to stop receiving them.
func (h *Hub) Subscribe(key string) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscription{key: key, ch: make(chan Change, 16)}
	h.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.key != "" && sub.key != c.Key {
			continue
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}
