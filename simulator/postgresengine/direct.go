package postgresengine

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/poolsim/pool-simulator-go/simulator"
	"github.com/poolsim/pool-simulator-go/simulator/postgresengine/internal/adapters"
)

// StrategyNameDirect is the run-log category for the direct strategy.
const StrategyNameDirect = "raw"

// DirectStrategy opens a brand-new dedicated connection on every acquire and
// closes it on release. Nothing is shared across workers.
type DirectStrategy struct {
	connConfig *pgx.ConnConfig
}

// NewDirectStrategy creates a direct strategy from a Postgres connection
// string. The string is parsed once so malformed input fails construction,
// not the first attempt.
func NewDirectStrategy(connString string) (*DirectStrategy, error) {
	if connString == "" {
		return nil, simulator.ErrEmptyConnString
	}

	connConfig, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	return &DirectStrategy{connConfig: connConfig}, nil
}

// Name returns the run-log category of this strategy.
func (s *DirectStrategy) Name() string {
	return StrategyNameDirect
}

// Acquire opens a new dedicated connection to the backend.
func (s *DirectStrategy) Acquire(ctx context.Context) (simulator.Connection, error) {
	conn, err := pgx.ConnectConfig(ctx, s.connConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", simulator.ErrAcquireFailed, err)
	}

	return adapters.NewPGXConn(conn), nil
}

// Release closes the dedicated connection.
func (s *DirectStrategy) Release(ctx context.Context, conn simulator.Connection) {
	if adapter, ok := conn.(adapters.Conn); ok {
		_ = adapter.Close(ctx)
	}
}

// Close is a no-op, the direct strategy holds no shared state.
func (s *DirectStrategy) Close(_ context.Context) error {
	return nil
}

// Ensure DirectStrategy implements simulator.ConnectionStrategy.
var _ simulator.ConnectionStrategy = (*DirectStrategy)(nil)
