// Package logging builds the structured loggers used by the command line
// tools and the web server. Render code never logs.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown log format")

// Log output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel converts a level name such as "debug" or "WARN" to a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// LevelFromFlags returns the level selected by the --verbose and --quiet
// flags, falling back to base when neither is set. Verbose wins over quiet.
func LevelFromFlags(verbose, quiet bool, base slog.Level) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	default:
		return base
	}
}

// New creates a logger writing records at or above level to w
func New(level slog.Level, format string, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
