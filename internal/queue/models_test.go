package queue_test

import (
	"strings"
	"testing"

	"podsweep/internal/queue"
)

func TestParseStatus(t *testing.T) {
	status, ok := queue.ParseStatus("detecting")
	if !ok || status != queue.StatusDetecting {
		t.Fatalf("expected detecting status, got %q ok=%v", status, ok)
	}
	if _, ok := queue.ParseStatus("ripping"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestLaneForItem(t *testing.T) {
	cases := []struct {
		name     string
		item     queue.Item
		expected queue.ProcessingLane
	}{
		{"pending", queue.Item{Status: queue.StatusPending}, queue.LaneFetch},
		{"downloading", queue.Item{Status: queue.StatusDownloading}, queue.LaneFetch},
		{"downloaded", queue.Item{Status: queue.StatusDownloaded}, queue.LaneProcess},
		{"detecting", queue.Item{Status: queue.StatusDetecting}, queue.LaneProcess},
		{"failed before fetch", queue.Item{Status: queue.StatusFailed}, queue.LaneFetch},
		{"failed after fetch", queue.Item{Status: queue.StatusFailed, AudioFile: "/staging/e.mp3"}, queue.LaneProcess},
		{"review with audio", queue.Item{Status: queue.StatusReview, AudioFile: "/staging/e.mp3"}, queue.LaneProcess},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := tc.item
			if lane := queue.LaneForItem(&item); lane != tc.expected {
				t.Fatalf("expected lane %s, got %s", tc.expected, lane)
			}
		})
	}
}

func TestStageKey(t *testing.T) {
	if key := queue.StatusPending.StageKey(); key != "planned" {
		t.Fatalf("expected planned, got %q", key)
	}
	if key := queue.StatusCompleted.StageKey(); key != "final" {
		t.Fatalf("expected final, got %q", key)
	}
	if key := queue.StatusDetecting.StageKey(); key != "detecting" {
		t.Fatalf("expected detecting, got %q", key)
	}
}

func TestSetFailedAndSetReview(t *testing.T) {
	item := queue.Item{Status: queue.StatusDetecting}
	item.SetFailed("ffmpeg exited with status 1")
	if item.Status != queue.StatusFailed {
		t.Fatalf("expected failed status, got %s", item.Status)
	}
	if item.ErrorMessage != "ffmpeg exited with status 1" {
		t.Fatalf("unexpected error message: %q", item.ErrorMessage)
	}
	if item.ProgressStage != "Failed" {
		t.Fatalf("expected Failed progress stage, got %q", item.ProgressStage)
	}

	item = queue.Item{Status: queue.StatusDetecting}
	item.SetReview("long transcript but no ad segments found")
	if item.Status != queue.StatusReview {
		t.Fatalf("expected review status, got %s", item.Status)
	}
	if !item.NeedsReview {
		t.Fatal("expected needs review flag")
	}
	if !strings.Contains(item.ReviewReason, "no ad segments") {
		t.Fatalf("unexpected review reason: %q", item.ReviewReason)
	}
}

func TestIsProcessingStatus(t *testing.T) {
	for _, status := range []queue.Status{
		queue.StatusDownloading,
		queue.StatusTranscribing,
		queue.StatusDetecting,
		queue.StatusCutting,
		queue.StatusOrganizing,
	} {
		if !queue.IsProcessingStatus(status) {
			t.Fatalf("expected %s to count as processing", status)
		}
	}
	for _, status := range []queue.Status{queue.StatusPending, queue.StatusDownloaded, queue.StatusCompleted, queue.StatusFailed} {
		if queue.IsProcessingStatus(status) {
			t.Fatalf("expected %s to not count as processing", status)
		}
	}
}

func TestIsInWorkflow(t *testing.T) {
	for _, status := range []queue.Status{
		queue.StatusPending,
		queue.StatusDownloading,
		queue.StatusDownloaded,
		queue.StatusTranscribed,
		queue.StatusDetected,
		queue.StatusCut,
		queue.StatusOrganizing,
		queue.StatusCompleted,
	} {
		item := queue.Item{Status: status}
		if !item.IsInWorkflow() {
			t.Fatalf("expected %s to count as in workflow", status)
		}
	}
	for _, status := range []queue.Status{queue.StatusFailed, queue.StatusReview} {
		item := queue.Item{Status: status}
		if item.IsInWorkflow() {
			t.Fatalf("expected %s to not count as in workflow", status)
		}
	}
}

func TestEpisodeFingerprintDeterministic(t *testing.T) {
	a := queue.EpisodeFingerprint("Episode 42", "https://example.com/feed/42.mp3")
	b := queue.EpisodeFingerprint("Episode 42", "https://example.com/feed/42.mp3")
	if a != b {
		t.Fatalf("expected deterministic fingerprint, got %q and %q", a, b)
	}
	if len(a) != 12 {
		t.Fatalf("expected 12 character fingerprint, got %d (%q)", len(a), a)
	}
	if c := queue.EpisodeFingerprint("Episode 42", "https://example.com/feed/42-remaster.mp3"); c == a {
		t.Fatal("expected different sources to produce different fingerprints")
	}
	if d := queue.EpisodeFingerprint("  Episode 42  ", "https://example.com/feed/42.mp3"); d != a {
		t.Fatalf("expected whitespace trimmed before hashing, got %q want %q", d, a)
	}
}
