// Package oteladapters provides ready-made implementations of the simulator
// observability interfaces for users who want plug-and-play integration with
// log/slog and OpenTelemetry instead of implementing the interfaces themselves.
package oteladapters
