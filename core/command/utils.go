package command

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

var names sync.Map // reflect.Type -> string

// nameOf returns the bare type name of t with pointers unwrapped.
// Unnamed types fall back to their type string.
func nameOf(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if n, ok := names.Load(t); ok {
		return n.(string)
	}

	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	n := base.Name()
	if n == "" {
		n = base.String()
	}
	names.Store(t, n)
	return n
}

// wrap applies mw so that mw[0] runs first.
func wrap(h Handler, mw []Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

func safeHandle(ctx context.Context, h Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanicked, h.Name(), r)
		}
	}()
	return h.Handle(ctx, payload)
}
