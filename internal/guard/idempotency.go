package guard

import (
	"context"
	"sync"
)

// Dedupe deduplicates engagement events by key. A reaction is keyed by
// user, channel and tag, so re-sending the same reaction does not award
// points twice.
type Dedupe struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewDedupe creates a new in-memory dedupe guard.
func NewDedupe() *Dedupe {
	return &Dedupe{
		seen: make(map[string]bool),
	}
}

// Check returns whether the given key has already been processed.
func (d *Dedupe) Check(_ context.Context, key string) Result {
	if key == "" {
		return Result{Allowed: true}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen[key] {
		return Result{
			Allowed: false,
			Reason:  "duplicate event: key already processed",
			Guard:   "dedupe",
		}
	}

	d.seen[key] = true
	return Result{Allowed: true}
}

// Remove deletes a key from the seen set, allowing the event again.
// Used when a reaction is withdrawn.
func (d *Dedupe) Remove(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}
