// Package dedupe tracks feedback keys so that a retried submission is applied at most once.
package dedupe

import (
	"sync"
)

// Deduper records feedback keys for idempotency.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it if not.
	SeenAndRecord(key string) bool
	// Forget removes key so that a submission that failed to enqueue can be retried.
	Forget(key string)
	// Len returns the number of remembered keys.
	Len() int
}

// Window is a Deduper that remembers the most recent keys. When bounded it
// evicts the oldest key once full; when unbounded it never forgets on its own.
type Window struct {
	mu    sync.Mutex
	seen  map[string]int // key -> ring slot, -1 in unbounded mode
	ring  []string       // nil in unbounded mode
	used  []bool
	next  int
	limit int
}

// New creates a Window. The default bound is 50,000 keys.
func New(opts ...Option) *Window {
	w := &Window{limit: defaultLimit}
	for _, opt := range opts {
		opt(w)
	}
	w.seen = make(map[string]int)
	if w.limit > 0 {
		w.ring = make([]string, w.limit)
		w.used = make([]bool, w.limit)
	}
	return w
}

// SeenAndRecord implements Deduper.
func (w *Window) SeenAndRecord(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[key]; ok {
		return true
	}
	if w.ring == nil {
		w.seen[key] = -1
		return false
	}

	// Overwrite the oldest slot.
	if w.used[w.next] {
		delete(w.seen, w.ring[w.next])
	}
	w.ring[w.next] = key
	w.used[w.next] = true
	w.seen[key] = w.next
	w.next = (w.next + 1) % len(w.ring)
	return false
}

// Forget implements Deduper.
func (w *Window) Forget(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot, ok := w.seen[key]
	if !ok {
		return
	}
	delete(w.seen, key)
	if slot >= 0 {
		w.ring[slot] = ""
		w.used[slot] = false
	}
}

// Len implements Deduper.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
