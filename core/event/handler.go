package event

import (
	"context"
	"fmt"
)

// Wildcard is the event name that matches every published event.
const Wildcard = "*"

// HandlerFunc is a type-safe function signature for processing events of type T.
type HandlerFunc[T any] func(context.Context, T) error

// Handler processes events.
type Handler interface {
	// EventName returns the event name this handler processes.
	EventName() string

	// Handle executes the handler with the given event payload.
	Handle(ctx context.Context, payload any) error
}

// NewHandler creates a handler with an explicit event name.
//
//	audit := event.NewHandler(event.Wildcard, func(ctx context.Context, payload any) error {
//	    log.Info("event", "name", event.NameOf(payload))
//	    return nil
//	})
func NewHandler[T any](eventName string, fn HandlerFunc[T]) Handler {
	return &handlerFuncWrapper[T]{name: eventName, fn: fn}
}

// NewHandlerFunc creates a type-safe handler whose event name is derived from T.
//
//	bus.Subscribe(event.NewHandlerFunc(func(ctx context.Context, e session.LoginEvent) error {
//	    fmt.Println("welcome", e.Profile.DisplayName)
//	    return nil
//	}))
func NewHandlerFunc[T any](fn HandlerFunc[T]) Handler {
	return &handlerFuncWrapper[T]{name: nameOfType[T](), fn: fn}
}

type handlerFuncWrapper[T any] struct {
	name string
	fn   HandlerFunc[T]
}

func (h *handlerFuncWrapper[T]) EventName() string {
	return h.name
}

func (h *handlerFuncWrapper[T]) Handle(ctx context.Context, payload any) error {
	typed, ok := payload.(T)
	if !ok {
		return fmt.Errorf("%w: %s got %T", ErrInvalidPayload, h.name, payload)
	}
	return h.fn(ctx, typed)
}
