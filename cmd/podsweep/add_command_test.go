package main

import (
	"context"
	"path/filepath"
	"testing"

	"podsweep/internal/queue"
	"podsweep/internal/testsupport"
)

func TestAddEpisodeURL(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	out, _, err := runCLI(t, []string{"add", "https://feeds.example.com/show/episode-1.mp3", "--title", "Episode One"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add url: %v", err)
	}
	requireContains(t, out, "Queued episode as item #1 (Episode One)")

	item, err := env.store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("lookup item: %v", err)
	}
	if item == nil {
		t.Fatal("expected queued item")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", item.Status)
	}
	if item.EpisodeTitle != "Episode One" {
		t.Fatalf("unexpected title %q", item.EpisodeTitle)
	}

	out, _, err = runCLI(t, []string{"add", "https://feeds.example.com/show/episode-1.mp3", "--title", "Episode One"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	requireContains(t, out, "Episode already queued as item #1")
}

func TestAddEpisodeURLTitleFallback(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	out, _, err := runCLI(t, []string{"add", "https://feeds.example.com/show/morning-news.mp3"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add url: %v", err)
	}
	requireContains(t, out, "morning-news.mp3")

	item, err := env.store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("lookup item: %v", err)
	}
	if item.EpisodeTitle != "morning-news.mp3" {
		t.Fatalf("unexpected title %q", item.EpisodeTitle)
	}
}

func TestAddLocalFile(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	audio := filepath.Join(t.TempDir(), "episode.mp3")
	testsupport.WriteFile(t, audio, 1024)

	out, _, err := runCLI(t, []string{"add", audio}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add file: %v", err)
	}
	requireContains(t, out, "Queued local file as item #1 (episode.mp3)")

	item, err := env.store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("lookup item: %v", err)
	}
	if item.Source != audio {
		t.Fatalf("unexpected source %q", item.Source)
	}
}

func TestAddRejectsUnsupportedFile(t *testing.T) {
	env := setupCLITestEnv(t)

	doc := filepath.Join(t.TempDir(), "notes.txt")
	testsupport.WriteFile(t, doc, 64)

	_, _, err := runCLI(t, []string{"add", doc}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	requireContains(t, err.Error(), "unsupported file extension")
}

func TestAddRejectsMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(t.TempDir(), "ghost.mp3")
	_, _, err := runCLI(t, []string{"add", missing}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	requireContains(t, err.Error(), "file does not exist")
}
