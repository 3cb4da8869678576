package logger

import (
	"log/slog"
	"time"
)

// Helpers return the empty Attr for zero inputs, which slog drops, so call
// sites never branch on nil errors or blank ids.

// Error attaches err under "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed is the time since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

func SessionToken(token string) slog.Attr {
	if token == "" {
		return slog.Attr{}
	}
	return slog.String("session_token", token)
}

func AccessID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("access_id", id)
}

// Scope is the kvstore scope a session lives in.
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Level is the educator level. The key avoids clashing with slog's own level.
func Level(level string) slog.Attr {
	return slog.String("educator_level", level)
}

func Provider(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("provider", name)
}

func StoreKey(key string) slog.Attr {
	return slog.String("key", key)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Action(action string) slog.Attr {
	return slog.String("action", action)
}

// Result is an outcome label such as "invalid_code".
func Result(result string) slog.Attr {
	return slog.String("result", result)
}

func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Key attaches an arbitrary value; nil values are dropped.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}
