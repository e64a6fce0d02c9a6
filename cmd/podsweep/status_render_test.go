package main

import (
	"io"
	"strings"
	"testing"

	"podsweep/internal/api"
	"podsweep/internal/ipc"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	line := renderStatusLine("Daemon", statusOK, "Running (PID 123)", false)
	if !strings.HasPrefix(line, statusIndent) {
		t.Fatalf("expected indented line, got %q", line)
	}
	if !strings.Contains(line, "Daemon:") {
		t.Fatalf("expected label in line, got %q", line)
	}
	if !strings.Contains(line, "[OK] Running (PID 123)") {
		t.Fatalf("expected status text, got %q", line)
	}
	if strings.Contains(line, ansiGreen) {
		t.Fatalf("expected no color codes, got %q", line)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	line := renderStatusLine("Queue", statusError, "database unreachable", true)
	if !strings.HasPrefix(line, ansiRed) {
		t.Fatalf("expected red prefix, got %q", line)
	}
	if !strings.HasSuffix(line, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", line)
	}
}

func TestStatusKindFromSeverity(t *testing.T) {
	cases := map[string]statusKind{
		"ok":      statusOK,
		"OK":      statusOK,
		"warn":    statusWarn,
		"warning": statusWarn,
		"error":   statusError,
		"info":    statusInfo,
		"":        statusInfo,
		"bogus":   statusInfo,
	}
	for severity, want := range cases {
		if got := statusKindFromSeverity(severity); got != want {
			t.Errorf("severity %q: got %v, want %v", severity, got, want)
		}
	}
}

func TestDependencyLines(t *testing.T) {
	deps := []ipc.DependencyStatus{
		{Name: "ffmpeg", Available: true, Command: "ffmpeg"},
		{Name: "transcriber", Available: false, Severity: "error", Detail: "no response from http://localhost:9000"},
	}
	summary := api.DependencySummary{Severity: "error", Detail: "1 of 2 dependencies missing"}

	lines := dependencyLines(deps, summary, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "Summary:") || !strings.Contains(lines[0], "1 of 2 dependencies missing") {
		t.Fatalf("unexpected summary line %q", lines[0])
	}
	if !strings.Contains(lines[1], "Ready (command: ffmpeg)") {
		t.Fatalf("unexpected ffmpeg line %q", lines[1])
	}
	if !strings.Contains(lines[2], "[ERROR] no response from http://localhost:9000") {
		t.Fatalf("unexpected transcriber line %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing dependencies") || !strings.Contains(lines[3], "transcriber") {
		t.Fatalf("unexpected missing line %q", lines[3])
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Queue Status", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %v", lines)
	}
	if lines[0] != "== Queue Status ==" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("rule length %d does not match header length %d", len(lines[1]), len(lines[0]))
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}
