package commands

import (
	"errors"
	"io"

	"github.com/aprenmaker/hubauth/core/analytics"
	"github.com/aprenmaker/hubauth/core/session"
)

var (
	ErrNotPermitted   = errors.New("not permitted")
	ErrUnknownStore   = errors.New("unknown store")
	ErrNotConfigured  = errors.New("external login is not configured, set OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET")
	ErrLoginAbandoned = errors.New("external login did not complete")
)

// AppConfig selects where state lives and how the CLI logs.
type AppConfig struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"warn"`
	Store        string `env:"HUBAUTH_STORE" envDefault:"file"`
	DataDir      string `env:"HUBAUTH_DATA_DIR"`
	ProfilesFile string `env:"HUBAUTH_PROFILES_FILE"`
	VolatileFile string `env:"HUBAUTH_VOLATILE_FILE"`
}

type Globals struct {
	Debug     bool
	Version   string
	Config    AppConfig
	Session   session.Config
	Analytics analytics.Config
	Out       io.Writer
	In        io.Reader
}
