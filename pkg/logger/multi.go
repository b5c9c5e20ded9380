package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanoutHandler hands every record to each handler that accepts its level.
// "tunegate serve" uses it to log to the console and to the JSON audit file.
type fanoutHandler []slog.Handler

// Multi returns a logger that writes every record to all given loggers.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	h := make(fanoutHandler, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			h = append(h, l.Handler())
		}
	}
	return slog.New(h)
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle keeps going when one handler fails so a broken audit file never
// silences the console.
func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanoutHandler) each(fn func(slog.Handler) slog.Handler) fanoutHandler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
