package testsupport

import (
	"context"
	"testing"

	"podsweep/internal/config"
	"podsweep/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewEpisode creates a pending episode item for tests using the provided store.
func NewEpisode(t testing.TB, store *queue.Store, title, source string) *queue.Item {
	t.Helper()

	item, err := store.NewEpisode(context.Background(), title, source, queue.EpisodeFingerprint(title, source))
	if err != nil {
		t.Fatalf("store.NewEpisode: %v", err)
	}
	return item
}
