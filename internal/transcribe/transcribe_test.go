package transcribe_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podsweep/internal/logging"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/testsupport"
	"podsweep/internal/transcribe"
	"podsweep/internal/transcript"
)

type fakeTranscriber struct {
	result *transcript.Transcript
	err    error
	calls  int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*transcript.Transcript, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeTranscriber) Health(context.Context) error { return f.err }

func stagedItem(t *testing.T, store *queue.Store, dir string) *queue.Item {
	t.Helper()
	audio := filepath.Join(dir, "episode.mp3")
	testsupport.WriteFile(t, audio, 2048)
	item := testsupport.NewEpisode(t, store, "Staged Episode", "https://example.com/e.mp3")
	item.AudioFile = audio
	return item
}

func TestExecuteSavesTranscriptBesideAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	fake := &fakeTranscriber{result: &transcript.Transcript{
		Language: "english",
		Segments: []transcript.Segment{
			{Start: 0, End: 12, Text: "welcome to the show"},
			{Start: 12, End: 30, Text: "today we talk about bridges"},
		},
	}}
	handler := transcribe.NewStageWithClient(cfg, store, logging.NewNop(), fake, nil)
	item := stagedItem(t, store, t.TempDir())
	ctx := context.Background()

	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := filepath.Join(filepath.Dir(item.AudioFile), transcribe.TranscriptFileName)
	if item.TranscriptFile != want {
		t.Errorf("TranscriptFile = %q, want %q", item.TranscriptFile, want)
	}
	saved, err := transcript.Load(item.TranscriptFile)
	if err != nil {
		t.Fatalf("load saved transcript: %v", err)
	}
	if len(saved.Segments) != 2 {
		t.Errorf("saved %d segments, want 2", len(saved.Segments))
	}
	if saved.Language != "en" {
		t.Errorf("language = %q, want normalized en", saved.Language)
	}
	if !strings.Contains(item.ProgressMessage, "2 segments") {
		t.Errorf("progress message = %q", item.ProgressMessage)
	}
}

func TestExecuteRequiresAudioFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := transcribe.NewStageWithClient(cfg, store, logging.NewNop(), &fakeTranscriber{}, nil)
	item := testsupport.NewEpisode(t, store, "No Audio", "https://example.com/e.mp3")

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want validation marker", err)
	}
}

func TestExecuteMissingAudioOnDisk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := transcribe.NewStageWithClient(cfg, store, logging.NewNop(), &fakeTranscriber{}, nil)
	item := testsupport.NewEpisode(t, store, "Vanished", "https://example.com/e.mp3")
	item.AudioFile = filepath.Join(t.TempDir(), "not-there.mp3")

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want validation marker", err)
	}
}

func TestExecuteServiceFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	fake := &fakeTranscriber{err: errors.New("model crashed")}
	handler := transcribe.NewStageWithClient(cfg, store, logging.NewNop(), fake, nil)
	item := stagedItem(t, store, t.TempDir())

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("err = %v, want external tool marker", err)
	}
	if item.TranscriptFile != "" {
		t.Errorf("TranscriptFile should stay empty on failure, got %q", item.TranscriptFile)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(item.AudioFile), transcribe.TranscriptFileName)); statErr == nil {
		t.Error("transcript file should not exist after failure")
	}
}
