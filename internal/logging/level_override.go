package logging

import (
	"context"
	"log/slog"
)

// levelOverrideHandler forwards records to the wrapped handler while applying
// an independent minimum level. It lets one stage run at debug verbosity while
// the rest of the daemon stays at info.
type levelOverrideHandler struct {
	inner slog.Handler
	level slog.Level
}

func (h levelOverrideHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h levelOverrideHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.inner.Handle(ctx, record)
}

func (h levelOverrideHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelOverrideHandler{inner: h.inner.WithAttrs(attrs), level: h.level}
}

func (h levelOverrideHandler) WithGroup(name string) slog.Handler {
	return levelOverrideHandler{inner: h.inner.WithGroup(name), level: h.level}
}

// WithLevelOverride returns a logger that logs at the supplied level regardless
// of the base handler's configured minimum, as long as the override is more
// verbose. A more restrictive override also applies, muting chatter.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return slog.New(levelOverrideHandler{inner: logger.Handler(), level: level})
}

// CloneWithLevel builds a stage logger from a configured level name. An empty
// name returns the logger unchanged.
func CloneWithLevel(logger *slog.Logger, levelName string) *slog.Logger {
	if levelName == "" {
		return logger
	}
	return WithLevelOverride(logger, ParseLevel(levelName))
}
