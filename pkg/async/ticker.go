package async

import (
	"context"
	"sync"
	"time"
)

// Ticker calls fn every interval until its context is done or Stop is called.
// Reset replaces the running schedule.
type Ticker struct {
	fn func(context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTicker creates a ticker. It does nothing until Start.
func NewTicker(fn func(context.Context)) *Ticker {
	return &Ticker{fn: fn}
}

// Start begins calling fn every interval, replacing any previous schedule.
func (t *Ticker) Start(ctx context.Context, interval time.Duration) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()

		tick := time.NewTicker(interval)
		defer tick.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				t.fn(ctx)
			}
		}
	}()
}

// Stop cancels the schedule and waits for an in-flight call to return.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()

	t.wg.Wait()
}
