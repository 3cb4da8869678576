package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/aprenmaker/hubauth/core/logger"
)

// Middleware wraps a Handler to add cross-cutting functionality.
type Middleware func(next Handler) Handler

type middlewareHandler struct {
	name string
	fn   func(ctx context.Context, payload any) error
}

func (h *middlewareHandler) Name() string {
	return h.name
}

func (h *middlewareHandler) Handle(ctx context.Context, payload any) error {
	return h.fn(ctx, payload)
}

// LoggingMiddleware returns a middleware that logs command execution.
// Successful commands are logged at debug level, failures at error level.
func LoggingMiddleware(log *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return &middlewareHandler{
			name: next.Name(),
			fn: func(ctx context.Context, payload any) error {
				start := time.Now()
				err := next.Handle(ctx, payload)
				if err != nil {
					log.ErrorContext(ctx, "command failed",
						logger.Action(next.Name()),
						logger.Elapsed(start),
						logger.Error(err))
					return err
				}
				log.DebugContext(ctx, "command completed",
					logger.Action(next.Name()),
					logger.Elapsed(start))
				return nil
			},
		}
	}
}

// ObserverMiddleware calls fn after every handled command with its outcome.
// fn runs on the dispatching goroutine and must not dispatch.
func ObserverMiddleware(fn func(ctx context.Context, payload any, err error)) Middleware {
	return func(next Handler) Handler {
		return &middlewareHandler{
			name: next.Name(),
			fn: func(ctx context.Context, payload any) error {
				err := next.Handle(ctx, payload)
				fn(ctx, payload, err)
				return err
			},
		}
	}
}
