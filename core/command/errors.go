package command

import "errors"

var (
	// ErrHandlerNotFound is returned when a command has no registered handler.
	ErrHandlerNotFound = errors.New("no handler registered for command")

	// ErrDuplicateHandler is raised (as a panic) when a second handler is registered for a command.
	ErrDuplicateHandler = errors.New("handler already registered for command")

	// ErrInvalidPayload is returned when a handler receives a payload of the wrong type.
	ErrInvalidPayload = errors.New("invalid command payload")

	// ErrHandlerPanicked wraps a recovered handler panic.
	ErrHandlerPanicked = errors.New("command handler panicked")
)
