// Package logging defines the structured-logging interface used across
// docarchive. The cache layer reports recovered failures (store write
// rejections, implausible image payloads, corrupt cache entries) through it.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Warn(ctx, "image not persisted", "key", key, "err", err)
type Logger interface {
	// Debug logs diagnostic detail (cache hits, fetch decisions).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a recovered failure that did not fail the caller.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
