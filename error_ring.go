package carousel

import "sync"

// ring is a thread-safe ring buffer retaining the most recent entries.
// It backs both rejection history and settings error history.
type ring[E any] struct {
	mu      sync.RWMutex
	entries []E
	size    int
	head    int
	count   int
}

// newRing creates a new ring buffer with the given capacity.
// If size is 0, the ring buffer is disabled.
func newRing[E any](size int) *ring[E] {
	if size <= 0 {
		return nil
	}
	return &ring[E]{
		entries: make([]E, size),
		size:    size,
	}
}

// push adds an entry to the ring buffer, overwriting the oldest when full.
func (r *ring[E]) push(e E) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.head] = e
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// clear removes all entries from the ring buffer.
func (r *ring[E]) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero E
	for i := range r.entries {
		r.entries[i] = zero
	}
	r.head = 0
	r.count = 0
}

// all returns all entries in the ring buffer, oldest first.
func (r *ring[E]) all() []E {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	result := make([]E, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		result[i] = r.entries[(start+i)%r.size]
	}
	return result
}
