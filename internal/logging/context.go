package logging

import (
	"context"
	"log/slog"

	"podsweep/internal/services"
)

// Shared attribute keys. Keeping these centralized lets log consumers rely on
// stable field names across components.
const (
	FieldComponent      = "component"
	FieldItemID         = "item_id"
	FieldStage          = "stage"
	FieldLane           = "lane"
	FieldCorrelationID  = "correlation_id"
	FieldAlert          = "alert"
	FieldEventType      = "event_type"
	FieldErrorHint      = "error_hint"
	FieldImpact         = "impact"
	FieldErrorKind      = "error_kind"
	FieldErrorOperation = "error_operation"
	FieldErrorCode      = "error_code"
)

// ContextFields extracts workflow identifiers stored via the services context
// helpers and returns them as log attributes.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]Attr, 0, 4)
	if itemID, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, Int64(FieldItemID, itemID))
	}
	if stage, ok := services.StageFromContext(ctx); ok && stage != "" {
		fields = append(fields, String(FieldStage, stage))
	}
	if lane, ok := services.LaneFromContext(ctx); ok && lane != "" {
		fields = append(fields, String(FieldLane, lane))
	}
	if requestID, ok := services.RequestIDFromContext(ctx); ok && requestID != "" {
		fields = append(fields, String(FieldCorrelationID, requestID))
	}
	return fields
}

// WithContext returns a logger pre-populated with whatever workflow fields the
// context carries.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
