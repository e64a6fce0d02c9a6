package main

import (
	"context"
	"fmt"
	"testing"

	"podsweep/internal/detections"
	"podsweep/internal/testsupport"
)

func TestShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item := testsupport.NewEpisode(t, env.store, "Alpha Episode", "https://feeds.example.com/alpha.mp3")
	item.ShowTitle = "Morning Show"
	item.AudioFile = "/tmp/staging/alpha/episode.mp3"

	report := detections.Report{
		Mode:           "balanced",
		EpisodeSeconds: 1800,
		Segments: []detections.Segment{
			{Start: 30, End: 90, Confidence: 0.92, Method: "llm"},
			{Start: 900, End: 960, Confidence: 0.81, Method: "audio+text"},
		},
	}
	encoded, err := report.Encode()
	if err != nil {
		t.Fatalf("encode report: %v", err)
	}
	item.DetectionsJSON = encoded
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("update item: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", fmt.Sprintf("%d", item.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item #%d", item.ID))
	requireContains(t, out, "Alpha Episode")
	requireContains(t, out, "Morning Show")
	requireContains(t, out, "2 segments, 120s of ads")
	requireContains(t, out, "0:30 - 1:30")
	requireContains(t, out, "15:00 - 16:00")
}

func TestShowCommandNotFound(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"show", "42"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing item")
	}
	requireContains(t, err.Error(), "not found")
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:      "0:00",
		59.9:   "0:59",
		90:     "1:30",
		3600:   "1:00:00",
		3725:   "1:02:05",
		-5:     "0:00",
		7322.4: "2:02:02",
	}
	for input, want := range cases {
		if got := formatTimestamp(input); got != want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", input, got, want)
		}
	}
}
