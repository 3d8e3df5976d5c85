package binvec

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with index-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithIndex tags the logger with the static attributes of an index.
func (l *Logger) WithIndex(backend string, d int) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", backend, "d", d),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, op string, n int, ntotal int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"n", n,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"n", n,
			"ntotal", ntotal,
		)
	}
}

// LogSearch logs a k-NN search.
func (l *Logger) LogSearch(ctx context.Context, op string, n, k int, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"n", n,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"n", n,
			"k", k,
		)
	}
}

// LogRangeSearch logs a range search.
func (l *Logger) LogRangeSearch(ctx context.Context, n, radius, hits int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range_search failed",
			"n", n,
			"radius", radius,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "range_search completed",
			"n", n,
			"radius", radius,
			"hits", hits,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"removed", removed,
		)
	}
}

// LogMerge logs a merge operation.
func (l *Logger) LogMerge(ctx context.Context, moved int64, addID int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "merge rejected",
			"add_id", addID,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "merge completed",
			"moved", moved,
			"add_id", addID,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op string, entries int64, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+op+" completed",
			"entries", entries,
			"bytes", bytes,
		)
	}
}
