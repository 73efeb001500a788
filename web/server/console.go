package server

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warn", "error"
}

// consoleBuffer keeps the most recent messages
type consoleBuffer struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	next     int
	full     bool
}

func (b *consoleBuffer) add(msg ConsoleMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[b.next] = msg
	b.next = (b.next + 1) % len(b.messages)
	if b.next == 0 {
		b.full = true
	}
}

func (b *consoleBuffer) recent() []ConsoleMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		return append([]ConsoleMessage(nil), b.messages[:b.next]...)
	}
	result := make([]ConsoleMessage, 0, len(b.messages))
	result = append(result, b.messages[b.next:]...)
	return append(result, b.messages[:b.next]...)
}

// ConsoleHandler is a slog.Handler that forwards records to another handler
// and keeps the latest ones for the /api/console endpoint
type ConsoleHandler struct {
	next   slog.Handler
	buffer *consoleBuffer
	prefix string // Rendered attributes added with WithAttrs
}

// NewConsoleHandler creates a handler keeping up to size messages
func NewConsoleHandler(next slog.Handler, size int) *ConsoleHandler {
	if size <= 0 {
		size = 1
	}
	return &ConsoleHandler{
		next:   next,
		buffer: &consoleBuffer{messages: make([]ConsoleMessage, size)},
	}
}

// Enabled implements slog.Handler
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ConsoleHandler) Handle(ctx context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.prefix)
	record.Attrs(func(attr slog.Attr) bool {
		sb.WriteString(" " + attr.String())
		return true
	})

	h.buffer.add(ConsoleMessage{
		Message:   sb.String(),
		Timestamp: record.Time,
		Level:     strings.ToLower(record.Level.String()),
	})
	return h.next.Handle(ctx, record)
}

// WithAttrs implements slog.Handler
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := h.prefix
	for _, attr := range attrs {
		prefix += " " + attr.String()
	}
	return &ConsoleHandler{next: h.next.WithAttrs(attrs), buffer: h.buffer, prefix: prefix}
}

// WithGroup implements slog.Handler. Grouped attributes appear ungrouped in the console.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	return &ConsoleHandler{next: h.next.WithGroup(name), buffer: h.buffer, prefix: h.prefix}
}

// Recent returns the kept messages, oldest first
func (h *ConsoleHandler) Recent() []ConsoleMessage {
	return h.buffer.recent()
}
