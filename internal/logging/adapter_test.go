package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	require.NotNil(t, adapter)
	assert.NotNil(t, adapter.logger, "adapter.logger should not be nil when created with nil")
}

func TestNewSlogAdapter_WithLogger(t *testing.T) {
	logger := slog.Default()
	adapter := NewSlogAdapter(logger)
	require.NotNil(t, adapter)
	assert.Same(t, logger, adapter.Logger())
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Debug("debug message", "key", "value")
	adapter.Info("info message", "key", "value")
	adapter.Warn("warn message", "key", "value")
	adapter.Error("error message", "key", "value")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR", "key=value"} {
		assert.Contains(t, out, want)
	}
}

func TestSlogAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil))).With(KeyComponent, "discord")

	adapter.Info("connected")

	assert.Contains(t, buf.String(), "component=discord")
}

func TestDefaultLogger(t *testing.T) {
	adapter := DefaultLogger()
	require.NotNil(t, adapter)
	assert.NotNil(t, adapter.logger)
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
