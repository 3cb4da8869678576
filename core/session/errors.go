package session

import "errors"

var (
	// ErrInvalidCredential is returned when an access code matches no profile.
	ErrInvalidCredential = errors.New("invalid access code")
	// ErrServiceNotReady is returned when external login is requested before
	// the identity provider finished its readiness handshake.
	ErrServiceNotReady = errors.New("identity service not ready")
	// ErrCorruptState marks stored session data that failed to parse or validate.
	// The data is removed; callers only ever see it in logs.
	ErrCorruptState = errors.New("corrupt session state")
	// ErrExpired marks a session read after its expiry.
	ErrExpired = errors.New("session has expired")
	// ErrProviderDesync marks an external session whose provider reports another user.
	ErrProviderDesync = errors.New("identity provider reports a different user")
	// ErrSaveSession is returned when writing a session to its store fails.
	ErrSaveSession = errors.New("failed to save session")
	// ErrNoSession is returned by operations that need an active session.
	ErrNoSession = errors.New("no active session")
)
