package main

import (
	"testing"

	"podsweep/internal/api"
)

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"pending":       "Pending",
		"reset_stuck":   "Reset Stuck",
		"DOWNLOADING":   "Downloading",
		"":              "",
		"  completed  ": "Completed",
	}
	for input, want := range cases {
		if got := formatStatusLabel(input); got != want {
			t.Errorf("formatStatusLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatDisplayTime(t *testing.T) {
	if got := formatDisplayTime("2026-03-15T08:30:00Z"); got != "2026-03-15 08:30" {
		t.Fatalf("unexpected display time %q", got)
	}
	if got := formatDisplayTime("not-a-time"); got != "not-a-time" {
		t.Fatalf("expected passthrough for unparseable value, got %q", got)
	}
	if got := formatDisplayTime(""); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestFormatFingerprint(t *testing.T) {
	if got := formatFingerprint(""); got != "-" {
		t.Fatalf("expected dash for empty fingerprint, got %q", got)
	}
	if got := formatFingerprint("abcdef0123456789"); got != "abcdef012345" {
		t.Fatalf("expected truncated fingerprint, got %q", got)
	}
	if got := formatFingerprint("short"); got != "short" {
		t.Fatalf("expected short fingerprint unchanged, got %q", got)
	}
}

func TestBuildQueueListRows(t *testing.T) {
	items := []api.QueueItem{
		{ID: 1, EpisodeTitle: "Older", Status: "pending", CreatedAt: "2026-03-14T10:00:00Z"},
		{ID: 2, Source: "/audio/untitled-episode.mp3", Status: "failed", CreatedAt: "2026-03-15T10:00:00Z"},
	}

	rows := buildQueueListRows(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "2" {
		t.Fatalf("expected newest item first, got ID %s", rows[0][0])
	}
	if rows[0][1] != "untitled-episode.mp3" {
		t.Fatalf("expected source basename as title, got %q", rows[0][1])
	}
	if rows[0][2] != "Failed" {
		t.Fatalf("unexpected status label %q", rows[0][2])
	}
	if rows[1][1] != "Older" {
		t.Fatalf("unexpected title %q", rows[1][1])
	}
	if rows[1][4] != "-" {
		t.Fatalf("expected dash fingerprint, got %q", rows[1][4])
	}
}

func TestBuildQueueStatusRows(t *testing.T) {
	rows := buildQueueStatusRows(map[string]int{"pending": 3, "failed": 1})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Failed" || rows[0][1] != "1" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1][0] != "Pending" || rows[1][1] != "3" {
		t.Fatalf("unexpected second row %v", rows[1])
	}
}
