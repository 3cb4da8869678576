package event

import (
	"time"

	"github.com/google/uuid"
)

// Named is implemented by payloads that choose their own event name.
// Payloads without it are named after their Go type.
type Named interface {
	EventName() string
}

// Event is a published payload together with its metadata.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent wraps payload with a generated ID and the current time.
//
//	type LoginEvent struct{ ... }
//	func (LoginEvent) EventName() string { return "login" }
//
//	evt := event.NewEvent(LoginEvent{})
//	// evt.Name == "login"
func NewEvent(payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      NameOf(payload),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}
