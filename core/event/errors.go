package event

import "errors"

var (
	// ErrInvalidPayload is returned by typed handlers that receive a payload of another type.
	ErrInvalidPayload = errors.New("invalid event payload")

	// ErrHandlerPanicked wraps a recovered handler panic.
	ErrHandlerPanicked = errors.New("event handler panicked")
)
