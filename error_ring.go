package formz

import (
	"sync"
	"time"
)

// FeedError is one rejected document in a feed's error history.
type FeedError struct {
	At  time.Time
	Err error
}

// Error implements error.
func (e FeedError) Error() string {
	return e.At.Format(time.RFC3339) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e FeedError) Unwrap() error {
	return e.Err
}

// errorRing keeps the most recent feed errors. A nil ring is disabled and
// ignores every call.
type errorRing struct {
	mu      sync.RWMutex
	entries []FeedError
	head    int
	count   int
}

// newErrorRing returns a ring holding size entries, or nil when size <= 0.
func newErrorRing(size int) *errorRing {
	if size <= 0 {
		return nil
	}
	return &errorRing{entries: make([]FeedError, size)}
}

func (r *errorRing) push(at time.Time, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.head] = FeedError{At: at, Err: err}
	r.head = (r.head + 1) % len(r.entries)
	if r.count < len(r.entries) {
		r.count++
	}
}

func (r *errorRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.entries)
	r.head = 0
	r.count = 0
}

// all returns the retained entries, oldest first.
func (r *errorRing) all() []FeedError {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	size := len(r.entries)
	out := make([]FeedError, r.count)
	start := (r.head - r.count + size) % size
	for i := range out {
		out[i] = r.entries[(start+i)%size]
	}
	return out
}
