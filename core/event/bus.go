package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aprenmaker/hubauth/core/logger"
)

// Bus is an in-process publish/subscribe hub.
//
// Publish runs every matching handler synchronously in registration order.
// Handler errors and panics are logged and never reach the publisher, so a
// failing subscriber cannot break the operation that published the event.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{logger: logger.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handlers. Returns a function that removes them again.
func (b *Bus) Subscribe(handlers ...Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handlers...)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		kept := b.handlers[:0:0]
		for _, h := range b.handlers {
			remove := false
			for _, r := range handlers {
				if h == r {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, h)
			}
		}
		b.handlers = kept
	}
}

// Publish delivers payload to every handler subscribed to its name and to
// wildcard handlers. It returns the number of handlers that succeeded.
func (b *Bus) Publish(ctx context.Context, payload any) int {
	name := NameOf(payload)

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		if n := h.EventName(); n == name || n == Wildcard {
			matched = append(matched, h)
		}
	}
	b.mu.RUnlock()

	ok := 0
	for _, h := range matched {
		if err := safeHandle(ctx, h, payload); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				logger.Event(name),
				logger.Error(err))
			continue
		}
		ok++
	}
	return ok
}
