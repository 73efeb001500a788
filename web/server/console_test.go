package server

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(size int) (*ConsoleHandler, *bytes.Buffer) {
	var out bytes.Buffer
	return NewConsoleHandler(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}), size), &out
}

func TestConsoleHandler_BasicLogging(t *testing.T) {
	console, out := newTestConsole(10)
	logger := slog.New(console)

	logger.Info("Test log message", "tiles", 4)

	messages := console.Recent()
	require.Len(t, messages, 1)
	assert.Equal(t, "Test log message tiles=4", messages[0].Message)
	assert.Equal(t, "info", messages[0].Level)
	assert.WithinDuration(t, time.Now(), messages[0].Timestamp, time.Second)

	// Records still reach the wrapped handler
	assert.Contains(t, out.String(), "Test log message")
}

func TestConsoleHandler_KeepsMostRecent(t *testing.T) {
	console, _ := newTestConsole(2)
	logger := slog.New(console)

	logger.Info("Message 1")
	logger.Warn("Message 2")
	logger.Error("Message 3")

	messages := console.Recent()
	require.Len(t, messages, 2)
	assert.Equal(t, "Message 2", messages[0].Message)
	assert.Equal(t, "warn", messages[0].Level)
	assert.Equal(t, "Message 3", messages[1].Message)
	assert.Equal(t, "error", messages[1].Level)
}

func TestConsoleHandler_WithAttrsSharesBuffer(t *testing.T) {
	console, _ := newTestConsole(10)
	logger := slog.New(console).With("request", "abc").WithGroup("render")

	logger.Debug("Loading scene", "primitives", 12345)

	messages := console.Recent()
	require.Len(t, messages, 1)
	assert.Equal(t, "Loading scene request=abc primitives=12345", messages[0].Message)
	assert.Equal(t, "debug", messages[0].Level)
}

func TestConsoleHandler_RespectsLevel(t *testing.T) {
	var out bytes.Buffer
	console := NewConsoleHandler(slog.NewTextHandler(&out, nil), 4)
	logger := slog.New(console)

	logger.Debug("hidden")
	assert.Empty(t, console.Recent())
	assert.Empty(t, out.String())
}
