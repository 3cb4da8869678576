package server

import "errors"

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrMissingAddress       = errors.New("server address is required")
	ErrInvalidRedirectURL   = errors.New("redirect URL must be an http URL with a host")
)
