package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aprenmaker/hubauth/core/logger"
)

// Dispatcher routes commands to their handlers.
// Dispatch runs the handler in the caller's goroutine and returns its error,
// so commands issued from one goroutine are handled in issue order.
//
// Example:
//
//	dispatcher := command.NewDispatcher(
//	    command.WithLogger(log),
//	    command.WithMiddleware(command.LoggingMiddleware(log)),
//	)
//	dispatcher.Register(command.NewHandlerFunc(onExternalLogin))
//	err := dispatcher.Dispatch(ctx, identity.ExternalLogin{Identity: id})
type Dispatcher struct {
	handlers   map[string]Handler
	middleware []Middleware
	logger     *slog.Logger
	mu         sync.RWMutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// NewDispatcher creates a new command dispatcher with the given options.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register registers handlers for their command types.
// Panics if a handler is already registered for the command.
func (d *Dispatcher) Register(handlers ...Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range handlers {
		name := h.Name()
		if _, exists := d.handlers[name]; exists {
			panic(fmt.Sprintf("%s: %s", ErrDuplicateHandler, name))
		}
		d.handlers[name] = h
	}
}

// Has reports whether a handler is registered for the command name.
func (d *Dispatcher) Has(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[name]
	return ok
}

// Dispatch executes cmd with its registered handler.
// Panics from handlers are recovered and returned as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd any) error {
	name := Name(cmd)

	handler, ok := d.getHandler(name)
	if !ok {
		d.logger.WarnContext(ctx, "no handler for command", logger.Action(name))
		return fmt.Errorf("%w: %s", ErrHandlerNotFound, name)
	}

	return safeHandle(ctx, handler, cmd)
}

func (d *Dispatcher) getHandler(name string) (Handler, bool) {
	d.mu.RLock()
	handler, exists := d.handlers[name]
	middleware := d.middleware
	d.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if len(middleware) > 0 {
		handler = wrap(handler, middleware)
	}
	return handler, true
}

// WithLogger sets the logger for the dispatcher.
// If not set, log output is discarded.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// WithMiddleware sets middleware for the dispatcher.
// Middleware is applied to all handlers in the order provided.
func WithMiddleware(middleware ...Middleware) Option {
	return func(d *Dispatcher) {
		d.middleware = append(d.middleware, middleware...)
	}
}
