// Package logger provides structured logging for portal.
//
// This package wraps log/slog and adds an asynchronous output pipeline:
//
//   - logger.go: Logger interface, level handling and the global default
//   - pipeline.go: Queued output drained by a single backend goroutine
//   - file.go: The rotating log file sink
//   - context.go: Context-aware logging with request IDs
//
// The pipeline holds a wait-group permit for its whole lifetime. Once the
// root context is cancelled it refuses new entries, writes everything
// already queued, and only then releases the permit, so buffered output
// is never lost on shutdown.
package logger
