package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr mirrors slog.Attr so call sites can stay on the logging package.
type Attr = slog.Attr

// Value mirrors slog.Value.
type Value = slog.Value

// Any builds an attribute holding an arbitrary value.
func Any(key string, value any) Attr { return slog.Any(key, value) }

// Bool builds a boolean attribute.
func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

// Duration builds a duration attribute.
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Float64 builds a float attribute.
func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

// Int builds an int attribute.
func Int(key string, value int) Attr { return slog.Int(key, value) }

// Int64 builds an int64 attribute.
func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

// Uint64 builds a uint64 attribute.
func Uint64(key string, value uint64) Attr { return slog.Uint64(key, value) }

// String builds a string attribute.
func String(key, value string) Attr { return slog.String(key, value) }

// Alert marks a record as operator-facing with the given category.
func Alert(category string) Attr { return slog.String(FieldAlert, category) }

// Group nests the supplied attributes under a single key.
func Group(key string, args ...any) Attr { return slog.Group(key, args...) }

// Error wraps an error into the conventional "error" attribute. A nil error
// produces an empty attribute that handlers skip.
func Error(err error) Attr {
	if err == nil {
		return Attr{}
	}
	return slog.Any("error", err)
}

// Args converts a list of attributes into the variadic ...any form expected by
// slog logging methods.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Equal(Attr{}) {
			continue
		}
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags a logger with a component name used as the message
// prefix by the console handler.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if component == "" {
		return logger
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey reports whether any attribute in args carries the given key.
// Groups are searched recursively.
func HasAttrKey(key string, args []any) bool {
	for _, arg := range args {
		attr, ok := arg.(Attr)
		if !ok {
			continue
		}
		if attrHasKey(attr, key) {
			return true
		}
	}
	return false
}

func attrHasKey(attr Attr, key string) bool {
	if attr.Key == key {
		return true
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, nested := range attr.Value.Group() {
			if attrHasKey(nested, key) {
				return true
			}
		}
	}
	return false
}

// WarnWithContext logs a warning carrying context fields plus the required
// event metadata. Missing event_type or error_hint attributes are filled with
// generic values so downstream tooling always sees the pair.
func WarnWithContext(ctx context.Context, logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	args := Args(withEventMetadata(attrs)...)
	args = append(args, Args(ContextFields(ctx)...)...)
	logger.Warn(msg, args...)
}

// ErrorWithContext logs an error carrying context fields plus required event
// metadata.
func ErrorWithContext(ctx context.Context, logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	args := Args(withEventMetadata(attrs)...)
	args = append(args, Args(ContextFields(ctx)...)...)
	logger.Error(msg, args...)
}

func withEventMetadata(attrs []Attr) []Attr {
	hasEventType := false
	hasHint := false
	for _, attr := range attrs {
		switch attr.Key {
		case FieldEventType:
			hasEventType = true
		case FieldErrorHint:
			hasHint = true
		}
	}
	out := make([]Attr, 0, len(attrs)+2)
	out = append(out, attrs...)
	if !hasEventType {
		out = append(out, String(FieldEventType, "unspecified"))
	}
	if !hasHint {
		out = append(out, String(FieldErrorHint, "check logs for details"))
	}
	return out
}

// NoopHandler ignores all records.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler        { return NoopHandler{} }
func (NoopHandler) WithGroup(string) slog.Handler             { return NoopHandler{} }
