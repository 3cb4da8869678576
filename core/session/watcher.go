package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/aprenmaker/hubauth/core/logger"
	"github.com/aprenmaker/hubauth/pkg/async"
)

// Prompt asks the user whether to extend a session that expires in left.
type Prompt func(ctx context.Context, left time.Duration) bool

// Watcher warns before a session expires and extends it on user activity.
//
// Every CheckInterval it looks at the time left; inside the warning window
// (WarnBefore-CheckInterval, WarnBefore] it calls the prompt once and
// extends the session when the prompt agrees. Activity restarts a trailing
// ActivityDebounce timer that extends the session when it fires.
type Watcher struct {
	m      *Manager
	prompt Prompt
	logger *slog.Logger

	ticker   *async.Ticker
	debounce *async.Debouncer
}

// NewWatcher creates a watcher for m. A nil prompt declines every warning.
func NewWatcher(m *Manager, prompt Prompt) *Watcher {
	if prompt == nil {
		prompt = func(context.Context, time.Duration) bool { return false }
	}
	w := &Watcher{
		m:      m,
		prompt: prompt,
		logger: m.logger.With(logger.Component("session_watcher")),
	}
	w.ticker = async.NewTicker(func(ctx context.Context) { w.Check(ctx) })
	w.debounce = async.NewDebouncer(m.cfg.ActivityDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if w.m.ExtendSession(ctx) {
			w.logger.DebugContext(ctx, "session extended after activity")
		}
	})
	return w
}

// Start begins the periodic expiry check. It replaces a running schedule.
func (w *Watcher) Start(ctx context.Context) {
	w.ticker.Start(ctx, w.m.cfg.CheckInterval)
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.Start(ctx)
	<-ctx.Done()
	w.Stop()
	return nil
}

// Stop cancels the periodic check and any pending activity extension.
// The watcher cannot be restarted for activity after Stop.
func (w *Watcher) Stop() {
	w.ticker.Stop()
	w.debounce.Stop()
}

// Check runs one expiry check and reports whether the session was extended.
func (w *Watcher) Check(ctx context.Context) bool {
	left, ok := w.m.TimeLeft(ctx)
	if !ok || !w.inWarningWindow(left) {
		return false
	}

	w.logger.InfoContext(ctx, "session expiring soon", logger.Duration(left))
	if !w.prompt(ctx, left) {
		return false
	}
	return w.m.ExtendSession(ctx)
}

// Activity reports user interaction. Ignored when nobody is signed in.
func (w *Watcher) Activity(ctx context.Context) {
	if !w.m.IsAuthenticated(ctx) {
		return
	}
	w.debounce.Trigger()
}

func (w *Watcher) inWarningWindow(left time.Duration) bool {
	cfg := w.m.cfg
	return left <= cfg.WarnBefore && left > cfg.WarnBefore-cfg.CheckInterval
}
