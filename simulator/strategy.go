package simulator

import (
	"context"
)

// Connection represents one usable backend connection for the duration of a
// single attempt. How it was obtained is up to the ConnectionStrategy.
type Connection interface {
	Exec(ctx context.Context, query string) error
}

// ConnectionStrategy is the polymorphic connection-acquisition capability the
// workers run against. Implementations must be safe for concurrent use by all
// workers of a run.
//
// Acquire must wrap acquisition failures with ErrAcquireFailed so the worker's
// retry loop stays strategy-agnostic. Release must be safe to call on every
// exit path of an attempt. Close tears down shared state (a pool, if any) and
// is called once after all workers of a run have completed.
type ConnectionStrategy interface {
	Name() string
	Acquire(ctx context.Context) (Connection, error)
	Release(ctx context.Context, conn Connection)
	Close(ctx context.Context) error
}
