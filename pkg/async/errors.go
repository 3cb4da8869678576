package async

import "errors"

var (
	// ErrTimeout is returned when AwaitWithTimeout exceeds its duration.
	ErrTimeout = errors.New("async: timeout waiting for result")

	// ErrAlreadyResolved is returned when a promise is settled a second time.
	ErrAlreadyResolved = errors.New("async: promise already resolved")
)
