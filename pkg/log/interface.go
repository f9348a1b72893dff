// Package log provides a structured logging interface for gpwrapper
// training and prediction operations.
//
// The package defines a minimal, slog-compatible Logger interface with
// GP-specific structured attribute keys, a default slog-backed provider,
// and a zerolog implementation. Training loops log epoch progress, best
// loss and convergence events through this interface; the concrete backend
// can be swapped without touching estimator code.
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with Go's log/slog.
// Fields are alternating key/value pairs, as in slog.
type Logger interface {
	// Debug logs detailed diagnostic information, such as per-epoch
	// gradient norms.
	Debug(msg string, fields ...any)

	// Info logs general operational information, such as training start
	// and completion events.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic conditions that do not stop the
	// operation, such as a ConvergenceWarning.
	Warn(msg string, fields ...any)

	// Error logs error conditions. If a field value is an error carrying a
	// stack trace, the backend may extract and attach it.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
