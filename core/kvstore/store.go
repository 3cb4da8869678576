package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kvstore: key not found")

// Well-known keys shared by the session manager and its collaborators.
const (
	SessionKey        = "session-state"
	AnalyticsKey      = "analytics-log"
	PreferencesPrefix = "preferences-"
)

// Store is a durable key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Scope selects one of the two stores a session can live in.
type Scope int

const (
	Volatile Scope = iota
	Persistent
)

func (s Scope) String() string {
	switch s {
	case Volatile:
		return "volatile"
	case Persistent:
		return "persistent"
	default:
		return "unknown"
	}
}

// DeletePrefix removes every key that starts with prefix and returns how many
// keys were removed. Failures on individual keys are joined.
func DeletePrefix(ctx context.Context, s Store, prefix string) (int, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	var errs []error
	n := 0
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}
