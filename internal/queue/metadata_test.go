package queue_test

import (
	"path/filepath"
	"strings"
	"testing"

	"podsweep/internal/queue"
)

func TestMetadataFromJSONFallsBackOnBadPayload(t *testing.T) {
	meta := queue.MetadataFromJSON("{not json", "Fallback Episode")
	if meta.Title() != "Fallback Episode" {
		t.Fatalf("expected fallback title, got %q", meta.Title())
	}

	meta = queue.MetadataFromJSON(`{"title":"Real Episode","show":"The Deep Dive"}`, "Fallback Episode")
	if meta.Title() != "Real Episode" {
		t.Fatalf("expected parsed title, got %q", meta.Title())
	}
	if meta.Show() != "The Deep Dive" {
		t.Fatalf("expected parsed show, got %q", meta.Show())
	}
}

func TestGetLibraryPath(t *testing.T) {
	meta := queue.NewBasicMetadata("Episode 1", "The Deep Dive")
	got := meta.GetLibraryPath("/library", "podcasts")
	want := filepath.Join("/library", "podcasts", "The Deep Dive")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	noShow := queue.NewBasicMetadata("Episode 1", "")
	got = noShow.GetLibraryPath("/library", "podcasts")
	want = filepath.Join("/library", "podcasts")
	if got != want {
		t.Fatalf("expected %q without show subdir, got %q", want, got)
	}

	override := queue.Metadata{TitleValue: "Episode 1", LibraryPath: "/mnt/audio/archive"}
	if got := override.GetLibraryPath("/library", "podcasts"); got != "/mnt/audio/archive" {
		t.Fatalf("expected library path override, got %q", got)
	}
}

func TestGetFilenameSanitizes(t *testing.T) {
	meta := queue.NewBasicMetadata(`Episode 12: "Ads" <everywhere>?`, "Show")
	got := meta.GetFilename()
	if got == "" {
		t.Fatal("expected non-empty filename")
	}
	if strings.ContainsAny(got, `:"<>?`) {
		t.Fatalf("expected reserved characters removed, got %q", got)
	}
}

func TestNewBasicMetadataDefaultsTitle(t *testing.T) {
	meta := queue.NewBasicMetadata("", "")
	if meta.Title() != "Manual Import" {
		t.Fatalf("expected Manual Import default, got %q", meta.Title())
	}
}
