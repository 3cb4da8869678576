package oauth

import "time"

// Config selects the provider and holds the OAuth client registration.
type Config struct {
	Provider     string        `env:"OAUTH_PROVIDER" envDefault:"github"`
	ClientID     string        `env:"OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"OAUTH_CLIENT_SECRET"`
	RedirectURL  string        `env:"OAUTH_REDIRECT_URL" envDefault:"http://127.0.0.1:8085/callback"`
	Scopes       []string      `env:"OAUTH_SCOPES" envSeparator:","`
	StateTTL     time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	Timeout      time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
}
