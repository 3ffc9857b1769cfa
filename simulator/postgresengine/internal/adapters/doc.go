// Package adapters wraps the native connection types of the supported
// drivers (pgx single connections, pgxpool pooled connections, database/sql
// pinned connections) behind one uniform Conn interface so the strategies
// and the worker retry loop stay driver-agnostic.
package adapters
