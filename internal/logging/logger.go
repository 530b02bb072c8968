// Package logging defines the structured-logging interface used across the
// server and the provisioning tool, plus an slog-backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger. Variadic args are key–value
// pairs:
//
//	log.Info(ctx, "provisioned tenant", "tenant", id, "tables", n)
type Logger interface {
	// Debug logs detail useful only when diagnosing.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value
	// pairs, typically a "module" tag.
	With(args ...any) Logger
}
