package services

import (
	"errors"
	"fmt"
	"strings"

	"podsweep/internal/queue"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// ErrorKind labels a failure category for logs and notifications.
type ErrorKind string

const (
	ErrorKindExternalTool  ErrorKind = "external_tool"
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindNotFound      ErrorKind = "not_found"
	ErrorKindTimeout       ErrorKind = "timeout"
	ErrorKindTransient     ErrorKind = "transient"
)

// ServiceError attaches stage context and classification to a failure. Stage
// handlers build these through Wrap; richer integrations can fill Code and
// Hint before returning.
type ServiceError struct {
	Kind      ErrorKind
	Stage     string
	Operation string
	Message   string
	Code      string
	Hint      string
	Cause     error
}

func (e *ServiceError) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	base := fmt.Sprintf("%s: %s", e.Kind.marker().Error(), detail)
	if e.Cause != nil {
		return base + ": " + e.Cause.Error()
	}
	return base
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match a ServiceError against the sentinel for its kind.
func (e *ServiceError) Is(target error) bool {
	return target == e.Kind.marker()
}

func (k ErrorKind) marker() error {
	switch k {
	case ErrorKindExternalTool:
		return ErrExternalTool
	case ErrorKindValidation:
		return ErrValidation
	case ErrorKindConfiguration:
		return ErrConfiguration
	case ErrorKindNotFound:
		return ErrNotFound
	case ErrorKindTimeout:
		return ErrTimeout
	default:
		return ErrTransient
	}
}

func markerKind(marker error) ErrorKind {
	switch {
	case errors.Is(marker, ErrExternalTool):
		return ErrorKindExternalTool
	case errors.Is(marker, ErrValidation):
		return ErrorKindValidation
	case errors.Is(marker, ErrConfiguration):
		return ErrorKindConfiguration
	case errors.Is(marker, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(marker, ErrTimeout):
		return ErrorKindTimeout
	default:
		return ErrorKindTransient
	}
}

// Wrap builds an error that carries stage context while tagging it with the
// provided marker for later status classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &ServiceError{
		Kind:      markerKind(marker),
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// ErrorDetails is the flattened view of a failure used when logging and
// notifying about stage errors.
type ErrorDetails struct {
	Kind      ErrorKind
	Stage     string
	Operation string
	Message   string
	Code      string
	Hint      string
	Cause     error
}

// Details extracts structured failure metadata from err. Errors built via Wrap
// surface their full context; anything else is classified by sentinel with the
// raw error text as the message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{Kind: ErrorKindTransient}
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return ErrorDetails{
			Kind:      svcErr.Kind,
			Stage:     svcErr.Stage,
			Operation: svcErr.Operation,
			Message:   svcErr.Message,
			Code:      svcErr.Code,
			Hint:      svcErr.Hint,
			Cause:     svcErr.Cause,
		}
	}
	return ErrorDetails{
		Kind:    classifyKind(err),
		Message: strings.TrimSpace(err.Error()),
		Cause:   err,
	}
}

func classifyKind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrConfiguration):
		return ErrorKindConfiguration
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrExternalTool):
		return ErrorKindExternalTool
	case errors.Is(err, ErrTimeout):
		return ErrorKindTimeout
	default:
		return ErrorKindTransient
	}
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails. Validation and configuration problems
// need operator attention; everything else is retryable.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
