// Package logger builds the slog loggers used across gwstream: text, JSON or
// charmbracelet/log output, with credential attributes redacted.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Redacted replaces the value of every sensitive attribute.
const Redacted = "[REDACTED]"

// defaultRedact are the attribute keys that can carry gateway credentials.
var defaultRedact = []string{"api_key", "authorization", "token"}

type config struct {
	level  slog.Level
	pretty bool
	json   bool
	source bool
	w      io.Writer
	redact map[string]struct{}
}

// New builds a logger. Without options it writes text records at Info level
// to os.Stderr.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:  slog.LevelInfo,
		w:      os.Stderr,
		redact: map[string]struct{}{},
	}
	for _, k := range defaultRedact {
		c.redact[k] = struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}

	return slog.New(&redactHandler{next: c.handler(), keys: c.redact})
}

func (c *config) handler() slog.Handler {
	switch {
	case c.pretty:
		return charmlog.NewWithOptions(c.w, charmlog.Options{
			Level:           charmLevel(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
		})
	case c.json:
		return slog.NewJSONHandler(c.w, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	default:
		return slog.NewTextHandler(c.w, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func charmLevel(l slog.Level) charmlog.Level {
	if l <= slog.LevelDebug {
		return charmlog.DebugLevel
	}
	return charmlog.InfoLevel
}
