package command

import (
	"context"
	"fmt"
	"reflect"
)

// Handler handles one command type, identified by Name.
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload any) error
}

// HandlerFunc adapts a typed function to Handler.
type HandlerFunc[T any] struct {
	name string
	fn   func(context.Context, T) error
}

// NewHandlerFunc returns a Handler for commands of type T, named after T:
//
//	d.Register(command.NewHandlerFunc(func(ctx context.Context, cmd identity.ExternalLogin) error {
//		_, err := manager.OnExternalLogin(ctx, cmd.Identity)
//		return err
//	}))
func NewHandlerFunc[T any](fn func(context.Context, T) error) Handler {
	return &HandlerFunc[T]{name: nameOf(reflect.TypeFor[T]()), fn: fn}
}

func (h *HandlerFunc[T]) Name() string { return h.name }

func (h *HandlerFunc[T]) Handle(ctx context.Context, payload any) error {
	cmd, ok := payload.(T)
	if !ok {
		return fmt.Errorf("%w: %s handler got %T", ErrInvalidPayload, h.name, payload)
	}
	return h.fn(ctx, cmd)
}

// Name returns the name cmd is dispatched under.
func Name(cmd any) string {
	return nameOf(reflect.TypeOf(cmd))
}
