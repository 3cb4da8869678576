package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNotPointer is returned when Load receives a non-pointer value.
var ErrNotPointer = errors.New("config: target must be a non-nil pointer to a struct")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> reflect.Value (struct copy)
)

// Load fills cfg from the environment. The first call for a given type parses
// the environment; later calls for the same type return the cached value.
// A .env file in the working directory is loaded once, without overriding
// variables that are already set.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNotPointer
	}
	t := reflect.TypeOf(*cfg)
	if t.Kind() != reflect.Struct {
		return ErrNotPointer
	}

	if cached, ok := cache.Load(t); ok {
		*cfg = cached.(T)
		return nil
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal case outside development.
		_ = godotenv.Load()
	})

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return fmt.Errorf("config: parse %s: %w", t.Name(), err)
	}

	actual, _ := cache.LoadOrStore(t, loaded)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for program start.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Parse fills cfg from the environment without caching or .env loading.
// Useful for tests and for sub-configs built more than once.
func Parse[T any](cfg *T) error {
	if cfg == nil {
		return ErrNotPointer
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	return nil
}

// Reset drops all cached values. Tests only.
func Reset() {
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}
