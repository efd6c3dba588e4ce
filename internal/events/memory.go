package events

import (
	"context"
	"sync"

	"github.com/yungbote/orderdesk-backend/internal/domain"
)

// Handler reacts to one domain event.
type Handler func(ctx context.Context, e domain.Event) error

// MemoryBus is an in-process publisher for local mode and tests. Handlers for
// one event run sequentially in subscription order; distinct events may be
// published concurrently by the dispatcher, so handlers must not rely on
// cross-event ordering.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: map[string][]Handler{}}
}

// Subscribe registers a handler for events with the given name.
func (b *MemoryBus) Subscribe(name string, h Handler) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], h)
	b.mu.Unlock()
}

func (b *MemoryBus) Publish(ctx context.Context, e domain.Event) error {
	if b == nil || e == nil {
		return nil
	}
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[e.EventName()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
