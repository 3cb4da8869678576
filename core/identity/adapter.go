package identity

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/aprenmaker/hubauth/core/command"
	"github.com/aprenmaker/hubauth/core/logger"
	"github.com/aprenmaker/hubauth/pkg/async"
)

// Dispatcher is the command sink the Adapter feeds.
// *command.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd any) error
}

var _ Dispatcher = (*command.Dispatcher)(nil)

// Adapter turns provider callbacks into typed commands.
//
// Run consumes the provider event stream from a single goroutine and
// dispatches synchronously, so commands reach their handlers in provider
// order. Every login event is dispatched, even a repeat: the handler decides
// whether it is a duplicate, so a login whose handling failed can be retried.
type Adapter struct {
	provider   Provider
	dispatcher Dispatcher
	logger     *slog.Logger
	ready      *async.Promise[struct{}]
	running    atomic.Bool
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithAdapterLogger sets the adapter logger.
func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdapter creates an adapter between p and d.
func NewAdapter(p Provider, d Dispatcher, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		provider:   p,
		dispatcher: d,
		logger:     logger.Discard(),
		ready:      async.NewPromise[struct{}](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ready resolves once the provider reported init.
// Callers await it instead of polling the provider.
func (a *Adapter) Ready() *async.Promise[struct{}] {
	return a.ready
}

// Run subscribes to provider events and blocks until ctx is done or the
// event stream closes. A second call returns ErrAlreadySubscribed.
func (a *Adapter) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadySubscribed
	}

	events := a.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				a.logger.DebugContext(ctx, "provider event stream closed",
					logger.Provider(a.provider.Name()))
				return nil
			}
			a.handle(ctx, evt)
		}
	}
}

func (a *Adapter) handle(ctx context.Context, evt Event) {
	log := a.logger.With(logger.Provider(a.provider.Name()), logger.Event(string(evt.Kind)))

	var cmd any
	switch evt.Kind {
	case EventInit:
		if err := a.ready.Resolve(struct{}{}); err != nil && !errors.Is(err, async.ErrAlreadyResolved) {
			log.WarnContext(ctx, "resolve readiness", logger.Error(err))
		}
		log.DebugContext(ctx, "provider ready")
		return
	case EventLogin:
		if evt.Identity == nil || evt.Identity.ID == "" {
			log.WarnContext(ctx, "login event without identity dropped")
			return
		}
		id := *evt.Identity
		if id.Provider == "" {
			id.Provider = a.provider.Name()
		}
		cmd = ExternalLogin{Identity: id}
	case EventLogout:
		cmd = ExternalLogout{}
	case EventError:
		cmd = ExternalError{Provider: a.provider.Name(), Err: evt.Err}
	case EventClose:
		cmd = ExternalClosed{}
	default:
		log.WarnContext(ctx, "unknown provider event")
		return
	}

	if err := a.dispatcher.Dispatch(ctx, cmd); err != nil {
		log.ErrorContext(ctx, "dispatch provider event", logger.Error(err))
	}
}
