// Package logger provides a context-aware structured logger backed by slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level controls the minimum severity that gets emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string to a Level. Unknown strings default to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerInterface is the logging contract passed to all components.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, kv ...any)
	With(kv ...any) LoggerInterface
}

// Logger implements LoggerInterface.
type Logger struct {
	sl *slog.Logger
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing JSON lines to w. The service name is attached to
// every record; extra static attributes may be passed via attrs.
func New(w io.Writer, level Level, service string, attrs []slog.Attr) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	sl := slog.New(h).With("service", service)
	for _, a := range attrs {
		sl = sl.With(a)
	}
	return &Logger{sl: sl}
}

func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.sl.DebugContext(ctx, msg, kv...)
}

func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.sl.InfoContext(ctx, msg, kv...)
}

func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.sl.WarnContext(ctx, msg, kv...)
}

func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.sl.ErrorContext(ctx, msg, kv...)
}

// With returns a child logger with extra key/value pairs attached.
func (l *Logger) With(kv ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(kv...)}
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return New(io.Discard, LevelError, "test", nil)
}
