package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podsweep/internal/config"
	"podsweep/internal/detections"
	"podsweep/internal/logging"
	"podsweep/internal/notifications"
	"podsweep/internal/organizer"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/testsupport"
)

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) Test(context.Context) error { return nil }

func newOrganizer(t *testing.T) (*organizer.Organizer, *config.Config, *queue.Store, *recordingNotifier) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Organizer.SaveReport = true
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	handler := organizer.NewOrganizerWithDependencies(cfg, store, logging.NewNop(), notifier)
	return handler, cfg, store, notifier
}

func cleanedItem(t *testing.T, cfg *config.Config, store *queue.Store, title, show string) *queue.Item {
	t.Helper()
	item := testsupport.NewEpisode(t, store, title, "https://example.com/e.mp3")
	item.ShowTitle = show
	staging := item.StagingRoot(cfg.Paths.StagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		t.Fatal(err)
	}
	cleaned := filepath.Join(staging, "clean.mp3")
	testsupport.WriteFile(t, cleaned, 2048)
	item.CleanedFile = cleaned
	return item
}

func TestExecutePlacesEpisodeUnderShowDirectory(t *testing.T) {
	handler, cfg, store, notifier := newOrganizer(t)
	item := cleanedItem(t, cfg, store, "Episode 12: Bridges", "Structural Stories")
	report := detections.Report{
		EpisodeSeconds: 3600,
		Segments:       []detections.Segment{{Start: 10, End: 70, Confidence: 0.9}},
	}
	raw, err := report.Encode()
	if err != nil {
		t.Fatal(err)
	}
	item.DetectionsJSON = raw
	ctx := context.Background()

	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := filepath.Join(cfg.Paths.LibraryDir, cfg.Organizer.PodcastsDir, "Structural Stories", "Episode 12- Bridges.mp3")
	if item.FinalFile != want {
		t.Errorf("FinalFile = %q, want %q", item.FinalFile, want)
	}
	if _, err := os.Stat(item.FinalFile); err != nil {
		t.Errorf("final file missing: %v", err)
	}
	sidecar := strings.TrimSuffix(want, ".mp3") + organizer.ReportSuffix
	data, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	parsed, err := detections.Parse(string(data))
	if err != nil || len(parsed.Segments) != 1 {
		t.Errorf("sidecar report corrupt: %v %+v", err, parsed)
	}
	if staging := item.StagingRoot(cfg.Paths.StagingDir); staging != "" {
		if _, err := os.Stat(staging); err == nil {
			t.Error("staging directory should be removed after organization")
		}
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventEpisodeCompleted {
		t.Errorf("events = %v, want one episode completed", notifier.events)
	}
}

func TestExecuteCollisionGetsUniqueName(t *testing.T) {
	handler, cfg, store, _ := newOrganizer(t)
	item := cleanedItem(t, cfg, store, "Same Name", "Show")

	existingDir := filepath.Join(cfg.Paths.LibraryDir, cfg.Organizer.PodcastsDir, "Show")
	if err := os.MkdirAll(existingDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(existingDir, "Same Name.mp3"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasSuffix(item.FinalFile, "Same Name (1).mp3") {
		t.Errorf("FinalFile = %q, want uniquified name", item.FinalFile)
	}
}

func TestExecuteOverwriteExisting(t *testing.T) {
	handler, cfg, store, _ := newOrganizer(t)
	cfg.Organizer.OverwriteExisting = true
	item := cleanedItem(t, cfg, store, "Same Name", "Show")

	existingDir := filepath.Join(cfg.Paths.LibraryDir, cfg.Organizer.PodcastsDir, "Show")
	if err := os.MkdirAll(existingDir, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := filepath.Join(existingDir, "Same Name.mp3")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.FinalFile != existing {
		t.Errorf("FinalFile = %q, want overwrite of %q", item.FinalFile, existing)
	}
	info, err := os.Stat(existing)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 2048 {
		t.Errorf("file size = %d, want replaced content", info.Size())
	}
}

func TestExecuteRoutesReviewItems(t *testing.T) {
	handler, cfg, store, notifier := newOrganizer(t)
	item := cleanedItem(t, cfg, store, "Suspicious Episode", "Show")
	item.NeedsReview = true
	item.ReviewReason = "no ad segments detected in 30000-character transcript"

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(item.FinalFile, cfg.Paths.ReviewDir) {
		t.Errorf("FinalFile = %q, want it under the review dir", item.FinalFile)
	}
	if item.ProgressStage != "Manual review" {
		t.Errorf("ProgressStage = %q", item.ProgressStage)
	}
	if item.ErrorMessage != item.ReviewReason {
		t.Errorf("ErrorMessage = %q, want the review reason", item.ErrorMessage)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventDetectionReview {
		t.Errorf("events = %v, want one detection review", notifier.events)
	}
}

func TestExecuteRequiresCleanedFile(t *testing.T) {
	handler, _, store, _ := newOrganizer(t)
	item := testsupport.NewEpisode(t, store, "Nothing Cut", "https://example.com/e.mp3")

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want validation marker", err)
	}
}
