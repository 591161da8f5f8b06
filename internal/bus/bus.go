// Package bus provides the in-process publish/subscribe dispatcher that
// decouples the gamification engine from the services reacting to it.
package bus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clubhaus/backoffice/internal/domain"
)

// Handler reacts to a published event. Handlers run on their own goroutine;
// a panic inside one is recovered and logged, never propagated.
type Handler func(ctx context.Context, topic domain.EventType, payload any)

// Bus is a fire-and-forget event dispatcher. Publish never blocks on handler
// execution and makes no ordering or completion guarantees.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[domain.EventType][]Handler
	logger      *slog.Logger
	inflight    sync.WaitGroup
}

// New creates an empty bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[domain.EventType][]Handler),
		logger:      logger,
	}
}

// Subscribe registers a handler for a topic. Multiple handlers per topic are
// allowed; registration order is the fan-out order.
func (b *Bus) Subscribe(topic domain.EventType, h Handler) {
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], h)
	b.mu.Unlock()
	b.logger.Debug("bus handler registered", "topic", topic)
}

// Publish dispatches the payload to every handler of the topic, one goroutine
// per handler, and returns immediately.
func (b *Bus) Publish(ctx context.Context, topic domain.EventType, payload any) {
	b.mu.RLock()
	handlers := b.subscribers[topic]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.inflight.Add(1)
		go b.run(ctx, h, topic, payload)
	}
}

func (b *Bus) run(ctx context.Context, h Handler, topic domain.EventType, payload any) {
	defer b.inflight.Done()
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("bus handler panicked", "topic", topic, "error", rec)
		}
	}()
	h(ctx, topic, payload)
}

// Wait blocks until every handler spawned so far has returned. Delivery is
// best-effort in production; Wait exists for shutdown drains and tests.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
