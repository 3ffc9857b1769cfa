package adapters

import (
	"context"
	"database/sql"
)

// SQLConn wraps a single connection pinned from a database/sql pool.
type SQLConn struct {
	conn *sql.Conn
}

// NewSQLConn creates a new adapter around a pinned database/sql connection.
func NewSQLConn(conn *sql.Conn) *SQLConn {
	return &SQLConn{conn: conn}
}

// Exec executes the query on the pinned connection.
func (c *SQLConn) Exec(ctx context.Context, query string) error {
	_, err := c.conn.ExecContext(ctx, query)
	return err
}

// Close returns the connection to the database/sql pool.
func (c *SQLConn) Close(_ context.Context) error {
	return c.conn.Close()
}
