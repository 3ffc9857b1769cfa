package postgresengine

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poolsim/pool-simulator-go/simulator"
	"github.com/poolsim/pool-simulator-go/simulator/postgresengine/internal/adapters"
)

// StrategyNamePooled is the run-log category for the pgxpool strategy.
const StrategyNamePooled = "pooled"

// PooledStrategy borrows connections from a shared pgxpool.Pool built once
// before the workers start and returns them on release.
type PooledStrategy struct {
	pool *pgxpool.Pool
}

// NewPooledStrategy creates a pooled strategy around a caller-owned pool.
func NewPooledStrategy(pool *pgxpool.Pool) (*PooledStrategy, error) {
	if pool == nil {
		return nil, simulator.ErrNilConnectionPool
	}

	return &PooledStrategy{pool: pool}, nil
}

// Name returns the run-log category of this strategy.
func (s *PooledStrategy) Name() string {
	return StrategyNamePooled
}

// Acquire borrows a connection from the shared pool, waiting at most the
// pool's configured acquisition timeout.
func (s *PooledStrategy) Acquire(ctx context.Context) (simulator.Connection, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", simulator.ErrAcquireFailed, err)
	}

	return adapters.NewPGXPoolConn(conn), nil
}

// Release returns the connection to the shared pool.
func (s *PooledStrategy) Release(ctx context.Context, conn simulator.Connection) {
	if adapter, ok := conn.(adapters.Conn); ok {
		_ = adapter.Close(ctx)
	}
}

// Close tears the shared pool down. Called once after all workers completed.
func (s *PooledStrategy) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// Ensure PooledStrategy implements simulator.ConnectionStrategy.
var _ simulator.ConnectionStrategy = (*PooledStrategy)(nil)
