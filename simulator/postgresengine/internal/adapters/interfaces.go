package adapters

import "context"

// Conn defines the uniform surface of one usable backend connection.
// Close returns the connection to wherever it came from: for a direct
// connection it closes the socket, for a pooled connection it returns the
// connection to its pool.
type Conn interface {
	Exec(ctx context.Context, query string) error
	Close(ctx context.Context) error
}
