package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Option configures a logger built by New.
type Option func(*config)

// WithDebug lowers the level to Debug, where stream frames, dropped tool calls
// and publish failures are reported.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty selects the charmbracelet/log handler for terminals.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler. Ignored when pretty is set.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter sets the destination. Defaults to os.Stderr so logs never mix
// with streamed completion text on stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.w = w }
}

// WithSource adds the caller's file:line to every record.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}

// WithRedact adds attribute keys whose values are replaced by "[REDACTED]".
// Matching is case-insensitive and applies inside groups.
func WithRedact(keys ...string) Option {
	return func(c *config) {
		for _, k := range keys {
			c.redact[strings.ToLower(k)] = struct{}{}
		}
	}
}
