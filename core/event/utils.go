package event

import (
	"context"
	"fmt"
	"reflect"
)

// NameOf returns the event name of a payload: its EventName() if it
// implements Named, otherwise the bare type name with pointers unwrapped.
//
// Bare type names are not package-qualified, so two packages publishing a
// type with the same name reach the same handlers.
func NameOf(v any) string {
	if n, ok := v.(Named); ok {
		return n.EventName()
	}

	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func nameOfType[T any]() string {
	var zero T
	if n, ok := any(zero).(Named); ok {
		return n.EventName()
	}
	if n, ok := any(new(T)).(Named); ok {
		return n.EventName()
	}
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func safeHandle(ctx context.Context, handler Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanicked, handler.EventName(), r)
		}
	}()
	return handler.Handle(ctx, payload)
}
