package async

import (
	"context"
	"sync"
	"time"
)

// Promise is a one-shot result that is settled exactly once, either with a
// value or with an error. Any number of goroutines may await it.
type Promise[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewPromise returns an unsettled promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolve settles the promise with v.
// Returns ErrAlreadyResolved if the promise was settled before.
func (p *Promise[T]) Resolve(v T) error {
	return p.settle(v, nil)
}

// Reject settles the promise with err.
// Returns ErrAlreadyResolved if the promise was settled before.
func (p *Promise[T]) Reject(err error) error {
	var zero T
	return p.settle(zero, err)
}

func (p *Promise[T]) settle(v T, err error) error {
	settled := false
	p.once.Do(func() {
		p.value = v
		p.err = err
		settled = true
		close(p.done)
	})
	if !settled {
		return ErrAlreadyResolved
	}
	return nil
}

// Done returns a channel closed once the promise is settled.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// IsComplete reports whether the promise is settled without blocking.
func (p *Promise[T]) IsComplete() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Await blocks until the promise is settled or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits for the promise with a timeout.
// Returns ErrTimeout if the promise is not settled in time.
func (p *Promise[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.value, p.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}
