package logger

import (
	"io"
	"log/slog"
)

// Option tunes the handler New builds.
type Option func(*config)

// WithLevel sets the minimum level. Commands that print their own results
// run at slog.LevelWarn.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithDebug is WithLevel(slog.LevelDebug) when debug is set and
// WithLevel(slog.LevelInfo) otherwise.
func WithDebug(debug bool) Option {
	if debug {
		return WithLevel(slog.LevelDebug)
	}
	return WithLevel(slog.LevelInfo)
}

// WithPretty switches to the charmbracelet/log terminal handler.
// WithJSON wins when both are set.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON switches to slog's JSON handler, used for the serve audit log.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter replaces the destination. The default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters replaces the destination with every w at once.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) { c.writers = w }
}

// WithSource adds the caller's file:line to each record.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}
