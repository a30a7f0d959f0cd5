// Package telemetry provides the optional structured-logging and metrics
// collaborators the ecs package accepts but never requires: an Engine
// built without any telemetry option behaves identically to one built with
// a nil *Logger and nil *Metrics, since every method of both is nil-safe.
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger for this module's structured diagnostics. A
// nil *Logger is valid and silently drops every call, the same nil-safe
// pattern the teacher's domain code uses for its own optional logger
// field.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger builds a Logger writing level-filtered lines to w ("os.Stderr"
// if w is nil).
func NewLogger(w io.Writer, level zerolog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// With returns a child Logger that attaches key=value to every subsequent
// line — NewEngine uses this to label an Engine's own log lines with its
// name.
func (l *Logger) With(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Debug logs msg at debug level with the given fields attached.
func (l *Logger) Debug(msg string, fields map[string]any) { l.log(zerolog.DebugLevel, msg, fields) }

// Info logs msg at info level.
func (l *Logger) Info(msg string, fields map[string]any) { l.log(zerolog.InfoLevel, msg, fields) }

// Warn logs msg at warn level.
func (l *Logger) Warn(msg string, fields map[string]any) { l.log(zerolog.WarnLevel, msg, fields) }

// Error logs msg at error level with err attached, if non-nil.
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	if l == nil {
		return
	}
	ev := l.zl.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *Logger) log(level zerolog.Level, msg string, fields map[string]any) {
	if l == nil {
		return
	}
	ev := l.zl.WithLevel(level)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
