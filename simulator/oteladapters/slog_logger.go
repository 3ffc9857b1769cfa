package oteladapters

import (
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/poolsim/pool-simulator-go/simulator"
)

// SlogLogger implements simulator.Logger on top of a slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger adapter around an existing slog.Logger.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

// NewSlogBridgeLogger creates a logger adapter backed by the OpenTelemetry
// slog bridge, emitting records through the global LoggerProvider with
// automatic trace correlation.
func NewSlogBridgeLogger(name string) *SlogLogger {
	return &SlogLogger{logger: otelslog.NewLogger(name)}
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an info message.
func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error message.
func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Ensure SlogLogger implements simulator.Logger.
var _ simulator.Logger = (*SlogLogger)(nil)
