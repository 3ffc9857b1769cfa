// Package simulator implements a concurrent load-simulation harness that
// compares connection-acquisition strategies against a Postgres backend.
//
// A run dispatches a fixed batch of workers which all start their timed work
// at the same instant, gated by a two-stage start barrier. Each worker executes
// the configured operation through a ConnectionStrategy with a bounded retry
// loop and reports exactly one result to the shared metrics aggregator and the
// shared run log. The orchestrator drives the barrier, waits for completion
// within a bounded timeout and produces a summary.
package simulator
