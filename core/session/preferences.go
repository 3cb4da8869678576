package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/logger"
	"github.com/aprenmaker/hubauth/core/profile"
)

// preferredToolCount is how many tools are remembered per external user.
const preferredToolCount = 3

// Preferences are remembered per external identity across sessions.
type Preferences struct {
	LastLogin      time.Time     `json:"last_login"`
	Provider       string        `json:"provider"`
	Level          profile.Level `json:"level"`
	PreferredTools []string      `json:"preferred_tools"`
}

// PreferencesKey returns the persistent key for an external identity.
func PreferencesKey(externalID string) string {
	return kvstore.PreferencesPrefix + externalID
}

// Preferences returns the stored preferences of an external identity.
func (m *Manager) Preferences(ctx context.Context, externalID string) (Preferences, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.persistent.Get(ctx, PreferencesKey(externalID))
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			m.logger.WarnContext(ctx, "read preferences", logger.Error(err))
		}
		return Preferences{}, false
	}
	var prefs Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		m.logger.WarnContext(ctx, "unreadable preferences", logger.StoreKey(PreferencesKey(externalID)), logger.Error(err))
		return Preferences{}, false
	}
	return prefs, true
}

func (m *Manager) savePreferencesLocked(ctx context.Context, externalID string, p profile.Profile) {
	tools := p.Tools[:min(len(p.Tools), preferredToolCount)]
	prefs := Preferences{
		LastLogin:      m.now(),
		Provider:       p.IdentityProvider,
		Level:          p.Level,
		PreferredTools: append([]string(nil), tools...),
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		m.logger.WarnContext(ctx, "encode preferences", logger.Error(err))
		return
	}
	if err := m.persistent.Set(ctx, PreferencesKey(externalID), raw); err != nil {
		m.logger.WarnContext(ctx, "save preferences", logger.StoreKey(PreferencesKey(externalID)), logger.Error(err))
	}
}
