package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// BuildPGXPoolConfig maps the RunConfig pool sizing onto a pgxpool
// configuration. The pool's acquisition timeout is carried by the
// connect timeout of its member connections.
func BuildPGXPoolConfig(cfg RunConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.PoolMaxSize)
	poolConfig.MinConns = int32(cfg.PoolMinIdle)
	poolConfig.ConnConfig.ConnectTimeout = cfg.PoolTimeout

	return poolConfig, nil
}

// NewPGXPool constructs the shared pgx pool for a pooled run. The pool is
// built once before workers start and torn down once after they complete.
func NewPGXPool(ctx context.Context, cfg RunConfig) (*pgxpool.Pool, error) {
	poolConfig, err := BuildPGXPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	return pool, nil
}

// NewSQLXDB constructs the shared database/sql handle for a sql-pooled run,
// with its built-in pool sized from the RunConfig.
func NewSQLXDB(cfg RunConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}

	db.SetMaxOpenConns(cfg.PoolMaxSize)
	db.SetMaxIdleConns(cfg.PoolMinIdle)

	return db, nil
}
