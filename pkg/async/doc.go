// Package async provides small concurrency primitives used by the session
// core: a one-shot Promise, a trailing Debouncer and a replaceable Ticker.
//
// # Promise
//
// A Promise is settled exactly once and can be awaited by many goroutines.
// It replaces "poll until ready" loops:
//
//	ready := async.NewPromise[struct{}]()
//
//	// provider callback
//	_ = ready.Resolve(struct{}{})
//
//	// caller
//	if _, err := ready.Await(ctx); err != nil {
//		return err
//	}
//
// A second Resolve or Reject returns ErrAlreadyResolved and leaves the first
// result in place.
//
// # Debouncer
//
// Debouncer coalesces bursts of Trigger calls into a single run fired after
// the quiet period (trailing edge):
//
//	d := async.NewDebouncer(5*time.Second, func() { manager.ExtendSession(ctx) })
//	d.Trigger() // on each user interaction
//	defer d.Stop()
//
// # Ticker
//
// Ticker runs a function on a fixed interval until its context is cancelled
// or Stop is called. Start on a running ticker replaces the schedule.
//
//	t := async.NewTicker(checkExpiry)
//	t.Start(ctx, time.Minute)
//	defer t.Stop()
package async
