package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aprenmaker/hubauth/core/logger"
)

// ErrNotReady is returned when at least one check failed.
var ErrNotReady = errors.New("health: not ready")

// Check is one named dependency probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Result is the outcome of one check.
type Result struct {
	Name    string
	Err     error
	Elapsed time.Duration
}

// OK reports whether the check passed.
func (r Result) OK() bool { return r.Err == nil }

// Readiness runs checks in order. All checks run even after a failure.
func Readiness(ctx context.Context, log *slog.Logger, checks ...Check) ([]Result, error) {
	if log == nil {
		log = logger.Discard()
	}

	results := make([]Result, 0, len(checks))
	var errs []error
	for _, c := range checks {
		start := time.Now()
		err := c.Fn(ctx)
		results = append(results, Result{Name: c.Name, Err: err, Elapsed: time.Since(start)})
		if err != nil {
			log.ErrorContext(ctx, "readiness check failed", logger.Component(c.Name), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
	}
	if len(errs) > 0 {
		return results, errors.Join(append([]error{ErrNotReady}, errs...)...)
	}
	return results, nil
}

// Handler answers "ALIVE" when no checks are given, otherwise "READY" or
// 503 Service Unavailable.
func Handler(log *slog.Logger, checks ...Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(checks) == 0 {
			_, _ = w.Write([]byte("ALIVE"))
			return
		}
		if _, err := Readiness(r.Context(), log, checks...); err != nil {
			http.Error(w, "NOT READY", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("READY"))
	})
}
