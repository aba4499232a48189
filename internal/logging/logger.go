// Package logging is the logging seam for the server. Services and the
// HTTP layer depend on the Logger interface only; the slog adapter in this
// package is what production wires in, and tests substitute a no-op.
package logging

import "context"

// Logger logs structured key/value pairs with a context:
//
//	log.Warn(ctx, "welcome mail failed", "user_id", user.ID, "error", err)
type Logger interface {
	// Info records normal operation (startup, requests served).
	Info(ctx context.Context, msg string, args ...any)

	// Warn records degraded but survivable conditions, such as a failed
	// best-effort side action.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that attaches the given pairs to every record.
	With(args ...any) Logger
}
