package profile

import "fmt"

// Level is the educator category a profile belongs to.
type Level string

const (
	LevelSecondary       Level = "secondary"
	LevelVocational      Level = "vocational"
	LevelAdministrator   Level = "administrator"
	LevelDemo            Level = "demo"
	LevelCommunity       Level = "community"
	LevelGenericEducator Level = "generic-educator"
)

var levels = map[Level]struct{}{
	LevelSecondary:       {},
	LevelVocational:      {},
	LevelAdministrator:   {},
	LevelDemo:            {},
	LevelCommunity:       {},
	LevelGenericEducator: {},
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	_, ok := levels[l]
	return ok
}

func (l Level) String() string { return string(l) }

// ParseLevel converts s into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return l, nil
}

// UnmarshalText rejects unknown levels while decoding YAML or JSON.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l), nil
}
