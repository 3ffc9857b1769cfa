// Package postgresengine provides the Postgres-backed connection strategies
// for the simulator: a direct strategy that opens a dedicated connection per
// attempt, a pooled strategy borrowing from a shared pgxpool.Pool, and a
// pooled strategy backed by the database/sql pool via sqlx.
//
// The pools behind the pooled strategies are constructed once by the caller
// (see shell/config) and shared across all workers of a run.
package postgresengine
