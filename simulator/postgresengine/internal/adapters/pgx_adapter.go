package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXConn wraps a dedicated pgx connection opened for a single worker attempt.
type PGXConn struct {
	conn *pgx.Conn
}

// NewPGXConn creates a new adapter around a dedicated pgx connection.
func NewPGXConn(conn *pgx.Conn) *PGXConn {
	return &PGXConn{conn: conn}
}

// Exec executes the query on the dedicated connection.
func (c *PGXConn) Exec(ctx context.Context, query string) error {
	_, err := c.conn.Exec(ctx, query)
	return err
}

// Close closes the underlying socket.
func (c *PGXConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// PGXPoolConn wraps a connection borrowed from a pgxpool.Pool.
type PGXPoolConn struct {
	conn *pgxpool.Conn
}

// NewPGXPoolConn creates a new adapter around a borrowed pool connection.
func NewPGXPoolConn(conn *pgxpool.Conn) *PGXPoolConn {
	return &PGXPoolConn{conn: conn}
}

// Exec executes the query on the borrowed connection.
func (c *PGXPoolConn) Exec(ctx context.Context, query string) error {
	_, err := c.conn.Exec(ctx, query)
	return err
}

// Close returns the connection to its pool.
func (c *PGXPoolConn) Close(_ context.Context) error {
	c.conn.Release()
	return nil
}
