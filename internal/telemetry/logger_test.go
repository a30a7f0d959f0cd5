package telemetry

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesLevelFilteredJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, zerolog.InfoLevel)

	l.Debug("should not appear", nil)
	l.Info("hello", map[string]any{"count": 3})

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, `"count":3`)
}

func TestLoggerErrorAttachesErrField(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, zerolog.InfoLevel)

	l.Error("failed", errors.New("boom"), nil)
	assert.Contains(t, buf.String(), "boom")
}

func TestLoggerWithAttachesKeyToSubsequentLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, zerolog.InfoLevel)
	child := l.With("engine", "main")

	child.Info("started", nil)
	assert.Contains(t, buf.String(), `"engine":"main"`)
}

func TestNilLoggerIsSafeNoOp(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Debug("x", nil)
		l.Info("x", nil)
		l.Warn("x", nil)
		l.Error("x", errors.New("e"), nil)
		require.Nil(t, l.With("k", "v"))
	})
}

func TestNewLoggerDefaultsToStderrWhenWriterNil(t *testing.T) {
	l := NewLogger(nil, zerolog.InfoLevel)
	require.NotNil(t, l)
}
