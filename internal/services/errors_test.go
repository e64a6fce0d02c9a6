package services_test

import (
	"errors"
	"strings"
	"testing"

	"podsweep/internal/queue"
	"podsweep/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "transcribing", "upload", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribing", "upload", "request failed", "connection refused"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "detecting", "fuse", "no signals", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestDetailsFromWrappedError(t *testing.T) {
	cause := errors.New("404 page not found")
	err := services.Wrap(services.ErrNotFound, "downloading", "fetch", "source gone", cause)

	details := services.Details(err)
	if details.Kind != services.ErrorKindNotFound {
		t.Fatalf("unexpected kind %s", details.Kind)
	}
	if details.Stage != "downloading" || details.Operation != "fetch" {
		t.Fatalf("unexpected context %q/%q", details.Stage, details.Operation)
	}
	if details.Message != "source gone" {
		t.Fatalf("unexpected message %q", details.Message)
	}
	if details.Cause != cause {
		t.Fatalf("expected cause preserved, got %v", details.Cause)
	}
}

func TestDetailsFromPlainError(t *testing.T) {
	err := errors.New("disk full")
	details := services.Details(err)
	if details.Kind != services.ErrorKindTransient {
		t.Fatalf("unexpected kind %s", details.Kind)
	}
	if details.Message != "disk full" {
		t.Fatalf("unexpected message %q", details.Message)
	}
}

func TestDetailsNil(t *testing.T) {
	details := services.Details(nil)
	if details.Kind != services.ErrorKindTransient || details.Message != "" {
		t.Fatalf("unexpected details for nil error: %+v", details)
	}
}

func TestDetailsKeepsHintAndCode(t *testing.T) {
	err := &services.ServiceError{
		Kind:      services.ErrorKindExternalTool,
		Stage:     "cutting",
		Operation: "ffmpeg",
		Message:   "filter graph rejected",
		Code:      "exit_1",
		Hint:      "check that ffmpeg supports the concat filter",
	}
	details := services.Details(err)
	if details.Code != "exit_1" || details.Hint == "" {
		t.Fatalf("expected code and hint preserved, got %+v", details)
	}
}

func TestFailureStatusMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "detecting", "prepare", "invalid transcript", nil)
	if status := services.FailureStatus(validationErr); status != queue.StatusReview {
		t.Fatalf("expected review for validation error, got %s", status)
	}

	configErr := services.Wrap(services.ErrConfiguration, "transcribing", "prepare", "no endpoint", nil)
	if status := services.FailureStatus(configErr); status != queue.StatusReview {
		t.Fatalf("expected review for configuration error, got %s", status)
	}

	transientErr := services.Wrap(services.ErrTransient, "downloading", "copy", "copy failed", errors.New("io"))
	if status := services.FailureStatus(transientErr); status != queue.StatusFailed {
		t.Fatalf("expected failed for transient error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != queue.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}
