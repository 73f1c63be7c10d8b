// Package editorlog is the single log collaborator every other core
// package reports errors through (spec §7: "all errors are reported
// through a log collaborator and a boolean return; the command journal
// never throws").
package editorlog

import "go.uber.org/zap"

// Logger wraps a zap logger with the leveled helpers the rest of the
// core needs. It never panics and never returns an error: logging a
// failure must not itself be a new source of failure.
type Logger struct {
	z *zap.Logger
}

// New builds a production-profile logger (JSON encoding, info level).
func New() *Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Nop returns a logger that discards everything, for tests that don't
// want log noise.
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() { _ = l.z.Sync() }

// Error logs a recoverable or fatal error kind (§7's table) with
// structured fields.
func (l *Logger) Error(kind, msg string, fields ...zap.Field) {
	l.z.Error(msg, append([]zap.Field{zap.String("kind", kind)}, fields...)...)
}

// Warn logs a non-fatal condition, e.g. a skipped prefab record on a
// version mismatch.
func (l *Logger) Warn(kind, msg string, fields ...zap.Field) {
	l.z.Warn(msg, append([]zap.Field{zap.String("kind", kind)}, fields...)...)
}

// Info logs a routine lifecycle event (project load/save, play-mode
// toggles).
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.z.Info(msg, fields...)
}
