package simulator

import (
	"context"
	"sync"
	"sync/atomic"
)

// StartBarrier is the two-stage synchronization primitive that forces all
// workers of a run to begin their timed work at the same instant. Workers
// announce readiness and then block until the controller releases them in one
// atomic broadcast; a worker that calls AwaitRelease after the release has
// happened is unblocked immediately, so there are no missed wakeups.
type StartBarrier struct {
	total       int64
	ready       atomic.Int64
	allReady    chan struct{}
	release     chan struct{}
	readyOnce   sync.Once
	releaseOnce sync.Once
}

// NewStartBarrier creates a barrier sized to the number of workers.
// With samples == 0 the controller side is unblocked from the start.
func NewStartBarrier(samples int) *StartBarrier {
	b := &StartBarrier{
		total:    int64(samples),
		allReady: make(chan struct{}),
		release:  make(chan struct{}),
	}

	if samples == 0 {
		b.readyOnce.Do(func() { close(b.allReady) })
	}

	return b
}

// AnnounceReady is called exactly once per worker. The call that brings the
// ready count to the barrier size unblocks the controller's AwaitAllReady.
func (b *StartBarrier) AnnounceReady() {
	if b.ready.Add(1) == b.total {
		b.readyOnce.Do(func() { close(b.allReady) })
	}
}

// AwaitAllReady blocks the controller until every worker has announced
// readiness, or until ctx is cancelled.
func (b *StartBarrier) AwaitAllReady(ctx context.Context) error {
	select {
	case <-b.allReady:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release unblocks all workers waiting in AwaitRelease in one atomic
// transition. Safe to call more than once.
func (b *StartBarrier) Release() {
	b.releaseOnce.Do(func() { close(b.release) })
}

// AwaitRelease blocks a worker until the controller releases the barrier, or
// until ctx is cancelled. A cancelled wait is the worker's abandonment path.
func (b *StartBarrier) AwaitRelease(ctx context.Context) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
