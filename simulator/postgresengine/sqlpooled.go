package postgresengine

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/poolsim/pool-simulator-go/simulator"
	"github.com/poolsim/pool-simulator-go/simulator/postgresengine/internal/adapters"
)

// StrategyNameSQLPooled is the run-log category for the database/sql strategy.
const StrategyNameSQLPooled = "sqlpooled"

// SQLPooledStrategy borrows connections from the pool built into
// database/sql, accessed through a caller-owned sqlx.DB. Acquire pins one
// connection so the attempt's operation does not float across pool members.
type SQLPooledStrategy struct {
	db *sqlx.DB
}

// NewSQLPooledStrategy creates a strategy around a caller-owned sqlx.DB.
func NewSQLPooledStrategy(db *sqlx.DB) (*SQLPooledStrategy, error) {
	if db == nil {
		return nil, simulator.ErrNilConnectionPool
	}

	return &SQLPooledStrategy{db: db}, nil
}

// Name returns the run-log category of this strategy.
func (s *SQLPooledStrategy) Name() string {
	return StrategyNameSQLPooled
}

// Acquire pins a single connection from the database/sql pool.
func (s *SQLPooledStrategy) Acquire(ctx context.Context) (simulator.Connection, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", simulator.ErrAcquireFailed, err)
	}

	return adapters.NewSQLConn(conn), nil
}

// Release returns the pinned connection to the database/sql pool.
func (s *SQLPooledStrategy) Release(ctx context.Context, conn simulator.Connection) {
	if adapter, ok := conn.(adapters.Conn); ok {
		_ = adapter.Close(ctx)
	}
}

// Close tears the underlying database handle and its pool down.
func (s *SQLPooledStrategy) Close(_ context.Context) error {
	return s.db.Close()
}

// Ensure SQLPooledStrategy implements simulator.ConnectionStrategy.
var _ simulator.ConnectionStrategy = (*SQLPooledStrategy)(nil)
