package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrAlreadySubscribed is returned when an Adapter is run a second time.
	ErrAlreadySubscribed = errors.New("identity: provider events already subscribed")

	// ErrNotReady is returned when the provider has not finished its readiness handshake.
	ErrNotReady = errors.New("identity: provider not ready")

	// ErrClosed is returned by a provider that has been shut down.
	ErrClosed = errors.New("identity: provider closed")
)

// Identity is a user as reported by an external identity provider.
type Identity struct {
	ID        string         `json:"id"`
	Email     string         `json:"email,omitempty"`
	Name      string         `json:"name,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Provider  string         `json:"provider,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Domain returns the lower-cased part of the email after the last '@',
// or an empty string when the email has none.
func (i Identity) Domain() string {
	at := strings.LastIndexByte(i.Email, '@')
	if at < 0 || at == len(i.Email)-1 {
		return ""
	}
	return strings.ToLower(i.Email[at+1:])
}

// LocalPart returns the part of the email before the last '@'.
func (i Identity) LocalPart() string {
	at := strings.LastIndexByte(i.Email, '@')
	if at < 0 {
		return i.Email
	}
	return i.Email[:at]
}

// EventKind names a provider callback.
type EventKind string

const (
	EventInit   EventKind = "init"
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
	EventError  EventKind = "error"
	EventClose  EventKind = "close"
)

// Event is one callback emitted by a provider.
// Identity is set for EventLogin and, when the provider already has a user,
// for EventInit. Err is set for EventError.
type Event struct {
	Kind     EventKind
	Identity *Identity
	Err      error
}

// Provider is a federated login service.
//
// Ready is closed once the provider finished its asynchronous handshake.
// Open asks the provider to present its login UI; the outcome arrives later
// as an EventLogin or EventClose on Events. Events delivers callbacks in the
// order the provider emitted them and is closed when the provider shuts down.
type Provider interface {
	Name() string
	Ready() <-chan struct{}
	Open(ctx context.Context) error
	Logout(ctx context.Context) error
	CurrentUser() (Identity, bool)
	Events() <-chan Event
}

// Restorer is implemented by providers that keep no sign-in state of their
// own across processes. Restore marks id as the signed-in user without
// emitting an event.
type Restorer interface {
	Restore(id Identity)
}

// IsReady reports whether p finished its readiness handshake without blocking.
func IsReady(p Provider) bool {
	if p == nil {
		return false
	}
	select {
	case <-p.Ready():
		return true
	default:
		return false
	}
}

// Commands produced by the Adapter from provider events.
type (
	// ExternalLogin is dispatched for a login event carrying an identity.
	ExternalLogin struct {
		Identity Identity
	}

	// ExternalLogout is dispatched for a logout event.
	ExternalLogout struct{}

	// ExternalError is dispatched for an error event.
	ExternalError struct {
		Provider string
		Err      error
	}

	// ExternalClosed is dispatched when the provider UI is dismissed.
	ExternalClosed struct{}
)
