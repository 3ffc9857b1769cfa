package simulator

import (
	"time"
)

// Logger interface for operational logging, warnings, and error reporting.
// Arguments follow the slog convention of alternating keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting run-level performance metrics.
// Implementations map these calls onto their backend of choice; the
// oteladapters package provides an OpenTelemetry implementation.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Option defines a functional option for configuring an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets the ambient logger for the Orchestrator.
//
// Info level: run lifecycle (preflight, release, completion)
// Warn level: non-critical issues like run-log write failures
// Error level: preflight failures and completion timeouts.
func WithLogger(logger Logger) Option {
	return func(o *Orchestrator) error {
		o.logger = logger
		return nil
	}
}

// WithMetricsCollector sets the metrics collector for the Orchestrator.
// The collector receives the batch duration and per-outcome sample counters
// once per run.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *Orchestrator) error {
		o.metricsCollector = collector
		return nil
	}
}

// WithCompletionTimeout bounds the wait for worker completion after the
// barrier release. On expiry the run is summarized from whatever has been
// recorded by then. Default is 2 minutes.
func WithCompletionTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) error {
		o.completionTimeout = timeout
		return nil
	}
}
