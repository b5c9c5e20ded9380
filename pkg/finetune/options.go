package finetune

import (
	"log/slog"
	"time"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
)

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPublisher publishes every validation outcome.
func WithPublisher(p eventstream.Publisher) Option {
	return func(c *Checker) {
		c.publisher = p
	}
}

// WithMinimumCompatibleVersion overrides the configured version threshold.
func WithMinimumCompatibleVersion(v string) Option {
	return func(c *Checker) {
		c.minVersionRaw = v
	}
}

// WithClock sets the time source for snapshot and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}
