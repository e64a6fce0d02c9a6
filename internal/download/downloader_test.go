package download_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"podsweep/internal/download"
	"podsweep/internal/logging"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/testsupport"
)

func newDownloader(t *testing.T) (*download.Downloader, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := download.NewDownloaderWithClient(cfg, store, logging.NewNop(), nil, nil)
	return handler, store
}

func TestExecuteDownloadsEpisodeAudio(t *testing.T) {
	payload := bytes.Repeat([]byte("audio"), 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "podsweep/") {
			t.Errorf("User-Agent = %q, want podsweep prefix", got)
		}
		w.Write(payload)
	}))
	defer server.Close()

	handler, store := newDownloader(t)
	item := testsupport.NewEpisode(t, store, "Test Episode", server.URL+"/feeds/episode-42.mp3")
	ctx := context.Background()

	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.AudioFile == "" {
		t.Fatal("AudioFile not recorded")
	}
	if !strings.HasSuffix(item.AudioFile, "episode-42.mp3") {
		t.Errorf("AudioFile = %q, want URL-derived name", item.AudioFile)
	}
	data, err := os.ReadFile(item.AudioFile)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("staged file has %d bytes, want %d", len(data), len(payload))
	}
	if item.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %f, want 100", item.ProgressPercent)
	}
}

func TestExecuteRejectsMissingSource(t *testing.T) {
	handler, _ := newDownloader(t)
	item := &queue.Item{ID: 1, EpisodeTitle: "No Source"}

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want validation marker", err)
	}
}

func TestExecuteRejectsNonHTTPSource(t *testing.T) {
	handler, _ := newDownloader(t)
	item := &queue.Item{ID: 2, Source: "ftp://example.com/file.mp3"}

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want validation marker", err)
	}
}

func TestExecuteServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	handler, store := newDownloader(t)
	item := testsupport.NewEpisode(t, store, "Flaky Host", server.URL+"/episode.mp3")

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrTransient) {
		t.Errorf("err = %v, want transient marker for HTTP 503", err)
	}
}

func TestExecuteNotFoundIsExternalTool(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	handler, store := newDownloader(t)
	item := testsupport.NewEpisode(t, store, "Gone", server.URL+"/missing.mp3")

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("err = %v, want external tool marker for HTTP 404", err)
	}
}

func TestExecuteSkipsWhenAudioAlreadyStaged(t *testing.T) {
	handler, store := newDownloader(t)
	item := testsupport.NewEpisode(t, store, "Already Here", "https://example.com/episode.mp3")

	staged := t.TempDir() + "/episode.mp3"
	if err := os.WriteFile(staged, []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}
	item.AudioFile = staged

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.AudioFile != staged {
		t.Errorf("AudioFile = %q, want untouched %q", item.AudioFile, staged)
	}
}
