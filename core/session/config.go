package session

import "time"

// Config holds session manager configuration.
type Config struct {
	TTL              time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	LoginDelay       time.Duration `env:"SESSION_LOGIN_DELAY" envDefault:"800ms"`
	CheckInterval    time.Duration `env:"SESSION_CHECK_INTERVAL" envDefault:"1m"`
	WarnBefore       time.Duration `env:"SESSION_WARN_BEFORE" envDefault:"15m"`
	ActivityDebounce time.Duration `env:"SESSION_ACTIVITY_DEBOUNCE" envDefault:"5s"`

	// EvictOtherScope removes the session held in the other scope on login.
	// Off by default: a volatile session then shadows a persistent one until
	// it ends.
	EvictOtherScope bool `env:"SESSION_EVICT_OTHER_SCOPE" envDefault:"false"`

	// ProfileTTL makes Profile.SessionDurationMinutes govern expiry when set.
	// Off by default: every session lives TTL.
	ProfileTTL bool `env:"SESSION_PROFILE_TTL" envDefault:"false"`

	// ClearPrefixes lists persistent key prefixes holding per-user data that
	// logout removes.
	ClearPrefixes []string `env:"SESSION_CLEAR_PREFIXES" envDefault:"curriculum-,user-" envSeparator:","`
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		TTL:              8 * time.Hour,
		LoginDelay:       800 * time.Millisecond,
		CheckInterval:    time.Minute,
		WarnBefore:       15 * time.Minute,
		ActivityDebounce: 5 * time.Second,
		ClearPrefixes:    []string{"curriculum-", "user-"},
	}
}

// withDefaults fills zero durations from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.LoginDelay < 0 {
		c.LoginDelay = 0
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.WarnBefore <= 0 {
		c.WarnBefore = d.WarnBefore
	}
	if c.ActivityDebounce <= 0 {
		c.ActivityDebounce = d.ActivityDebounce
	}
	return c
}
