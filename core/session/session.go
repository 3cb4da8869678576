package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/profile"
)

// Origin tells how a session was created.
type Origin string

const (
	OriginCode     Origin = "code-based"
	OriginExternal Origin = "external-identity"
)

// ExternalSnapshot is the provider identity an external session was created for.
type ExternalSnapshot struct {
	ID       string         `json:"id"`
	Email    string         `json:"email,omitempty"`
	Provider string         `json:"provider,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Session is the stored record of a signed-in educator. It owns a copy of
// the profile it was created with.
type Session struct {
	AccessID  string            `json:"access_id"`
	Profile   profile.Profile   `json:"profile"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Persist   bool              `json:"persist"`
	Token     string            `json:"token"`
	Origin    Origin            `json:"origin"`
	External  *ExternalSnapshot `json:"external,omitempty"`
}

// IsExpired reports whether the session expired at now.
func (s Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// TimeLeft returns the time until expiry, never negative.
func (s Session) TimeLeft(now time.Time) time.Duration {
	return max(s.ExpiresAt.Sub(now), 0)
}

// Scope returns the store the session belongs in.
func (s Session) Scope() kvstore.Scope {
	if s.Persist {
		return kvstore.Persistent
	}
	return kvstore.Volatile
}

// Validate reports stored data that cannot describe a session.
func (s Session) Validate() error {
	switch {
	case s.Token == "":
		return fmt.Errorf("%w: missing token", ErrCorruptState)
	case s.AccessID == "":
		return fmt.Errorf("%w: missing access id", ErrCorruptState)
	case s.CreatedAt.IsZero() || s.ExpiresAt.IsZero():
		return fmt.Errorf("%w: missing timestamps", ErrCorruptState)
	case s.Origin != OriginCode && s.Origin != OriginExternal:
		return fmt.Errorf("%w: unknown origin %q", ErrCorruptState, s.Origin)
	case (s.Origin == OriginExternal) != (s.External != nil):
		return fmt.Errorf("%w: external snapshot does not match origin", ErrCorruptState)
	case s.Origin == OriginExternal && s.External.ID == "":
		return fmt.Errorf("%w: external snapshot without id", ErrCorruptState)
	}
	if err := s.Profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	return nil
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	s.Profile = s.Profile.Clone()
	if s.External != nil {
		ext := *s.External
		s.External = &ext
	}
	return s
}

func (s Session) encode() ([]byte, error) {
	return json.Marshal(s)
}

func decode(raw []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// newToken returns an opaque, time-ordered session token. It correlates
// analytics entries and is not a credential.
func newToken() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "sess_" + id.String()
}
