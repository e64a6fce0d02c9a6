package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"podsweep/internal/queue"
	"podsweep/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewEpisode(ctx, "Sample Episode", "https://example.com/feed/ep1.mp3", "fingerprint-1")
	if err != nil {
		t.Fatalf("NewEpisode failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.EpisodeTitle != "Sample Episode" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
	if fetched.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", fetched.Status)
	}

	found, err := store.FindByFingerprint(ctx, "fingerprint-1")
	if err != nil {
		t.Fatalf("FindByFingerprint failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}
}

func TestNewEpisodeRequiresFingerprint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewEpisode(ctx, "No Fingerprint", "https://example.com/e.mp3", ""); err == nil {
		t.Fatal("expected error when fingerprint missing")
	}
}

func TestNewLocalFileSkipsDownload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewLocalFile(ctx, "/podcasts/inbox/deep_dive_042.mp3")
	if err != nil {
		t.Fatalf("NewLocalFile failed: %v", err)
	}
	if item.Status != queue.StatusDownloaded {
		t.Fatalf("expected downloaded status, got %s", item.Status)
	}
	if item.AudioFile != "/podcasts/inbox/deep_dive_042.mp3" {
		t.Fatalf("expected audio file recorded, got %q", item.AudioFile)
	}
	if item.EpisodeTitle != "deep dive 042" {
		t.Fatalf("expected title inferred from filename, got %q", item.EpisodeTitle)
	}
	if item.EpisodeFingerprint == "" {
		t.Fatal("expected fingerprint assigned")
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"downloading", queue.StatusDownloading, queue.StatusPending},
		{"transcribing", queue.StatusTranscribing, queue.StatusDownloaded},
		{"detecting", queue.StatusDetecting, queue.StatusTranscribed},
		{"cutting", queue.StatusCutting, queue.StatusDetected},
		{"organizing", queue.StatusOrganizing, queue.StatusCut},
	}
	var ids []int64
	for i, tc := range cases {
		item, err := store.NewEpisode(ctx, fmt.Sprintf("Episode-%s", tc.name), "https://example.com/e.mp3", fmt.Sprintf("fingerprint-reset-%d", i))
		if err != nil {
			t.Fatalf("NewEpisode failed: %v", err)
		}
		item.Status = tc.initialStatus
		item.ProgressStage = tc.name
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := store.GetByID(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
		if updated.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestItemsByStatusOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewEpisode(ctx, "Episode A", "https://example.com/a.mp3", "fp-a"); err != nil {
		t.Fatalf("NewEpisode failed: %v", err)
	}
	b, err := store.NewEpisode(ctx, "Episode B", "https://example.com/b.mp3", "fp-b")
	if err != nil {
		t.Fatalf("NewEpisode failed: %v", err)
	}
	b.Status = queue.StatusDownloaded
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.ItemsByStatus(ctx, queue.StatusDownloaded)
	if err != nil {
		t.Fatalf("ItemsByStatus failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one downloaded item, got %d", len(items))
	}
	if items[0].EpisodeTitle != "Episode B" {
		t.Fatalf("expected Episode B, got %s", items[0].EpisodeTitle)
	}
}

func TestListSupportsStatusFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a, err := store.NewEpisode(ctx, "Episode A", "https://example.com/a.mp3", "fp-a")
	if err != nil {
		t.Fatalf("NewEpisode failed: %v", err)
	}
	b, err := store.NewEpisode(ctx, "Episode B", "https://example.com/b.mp3", "fp-b")
	if err != nil {
		t.Fatalf("NewEpisode failed: %v", err)
	}
	b.Status = queue.StatusTranscribed
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c, err := store.NewEpisode(ctx, "Episode C", "https://example.com/c.mp3", "fp-c")
	if err != nil {
		t.Fatalf("NewEpisode failed: %v", err)
	}
	c.Status = queue.StatusFailed
	c.ErrorMessage = "boom"
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID || items[2].ID != c.ID {
		t.Fatalf("expected order A,B,C, got IDs %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}

	filtered, err := store.List(ctx, queue.StatusTranscribed, queue.StatusFailed)
	if err != nil {
		t.Fatalf("Filtered list failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 items, got %d", len(filtered))
	}
	if filtered[0].ID != b.ID || filtered[1].ID != c.ID {
		t.Fatalf("unexpected filtered order: got %d,%d", filtered[0].ID, filtered[1].ID)
	}
}

func TestRetryFailedResumesFromAudioWhenPresent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	fresh, err := store.NewEpisode(ctx, "Never Downloaded", "https://example.com/a.mp3", "fp-a")
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}
	fresh.Status = queue.StatusFailed
	fresh.ErrorMessage = "download timeout"
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.NewEpisode(ctx, "Already Fetched", "https://example.com/b.mp3", "fp-b")
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}
	fetched.Status = queue.StatusFailed
	fetched.ErrorMessage = "transcriber unreachable"
	fetched.AudioFile = "/staging/b/episode.mp3"
	if err := store.Update(ctx, fetched); err != nil {
		t.Fatalf("Update: %v", err)
	}

	flagged, err := store.NewEpisode(ctx, "Needs Review", "https://example.com/c.mp3", "fp-c")
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}
	flagged.SetReview("no segments above threshold")
	flagged.AudioFile = "/staging/c/episode.mp3"
	if err := store.Update(ctx, flagged); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed all: %v", err)
	}
	if updated != 3 {
		t.Fatalf("expected 3 items retried, got %d", updated)
	}

	item, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected item without audio to restart pending, got %s", item.Status)
	}
	if item.ErrorMessage != "" {
		t.Fatalf("expected error cleared, got %q", item.ErrorMessage)
	}

	item, err = store.GetByID(ctx, fetched.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusDownloaded {
		t.Fatalf("expected item with audio to resume downloaded, got %s", item.Status)
	}

	item, err = store.GetByID(ctx, flagged.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusDownloaded {
		t.Fatalf("expected review item to resume downloaded, got %s", item.Status)
	}
	if item.NeedsReview || item.ReviewReason != "" {
		t.Fatalf("expected review flags cleared, got %v %q", item.NeedsReview, item.ReviewReason)
	}

	// Mark one failed again and retry targeted selection.
	item.Status = queue.StatusFailed
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err = store.RetryFailed(ctx, item.ID)
	if err != nil {
		t.Fatalf("RetryFailed targeted: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 item retried, got %d", updated)
	}
}

func TestUpdateHeartbeat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewEpisode(ctx, "Heartbeat", "https://example.com/hb.mp3", "hb")
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}
	item.Status = queue.StatusDownloading
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.LastHeartbeat == nil {
		t.Fatal("expected last heartbeat to be set")
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	t.Run("all statuses", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		store := testsupport.MustOpenStore(t, cfg)

		ctx := context.Background()
		past := time.Now().Add(-2 * time.Hour).UTC()
		cases := []struct {
			name       string
			processing queue.Status
			expected   queue.Status
		}{
			{"downloading", queue.StatusDownloading, queue.StatusPending},
			{"transcribing", queue.StatusTranscribing, queue.StatusDownloaded},
			{"detecting", queue.StatusDetecting, queue.StatusTranscribed},
			{"cutting", queue.StatusCutting, queue.StatusDetected},
			{"organizing", queue.StatusOrganizing, queue.StatusCut},
		}
		var ids []int64
		for i, tc := range cases {
			item, err := store.NewEpisode(ctx, fmt.Sprintf("Stale-%s", tc.name), "https://example.com/e.mp3", fmt.Sprintf("stale-%d", i))
			if err != nil {
				t.Fatalf("NewEpisode: %v", err)
			}
			item.Status = tc.processing
			item.LastHeartbeat = &past
			if err := store.Update(ctx, item); err != nil {
				t.Fatalf("Update: %v", err)
			}
			ids = append(ids, item.ID)
		}

		count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-1*time.Hour))
		if err != nil {
			t.Fatalf("ReclaimStaleProcessing: %v", err)
		}
		if int(count) != len(cases) {
			t.Fatalf("expected %d items reclaimed, got %d", len(cases), count)
		}

		for idx, tc := range cases {
			updated, err := store.GetByID(ctx, ids[idx])
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if updated.Status != tc.expected {
				t.Fatalf("%s: expected status %s after reclaim, got %s", tc.name, tc.expected, updated.Status)
			}
			if updated.LastHeartbeat != nil {
				t.Fatalf("%s: expected heartbeat cleared, got %v", tc.name, updated.LastHeartbeat)
			}
		}
	})

	t.Run("filtered statuses", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		store := testsupport.MustOpenStore(t, cfg)

		ctx := context.Background()
		past := time.Now().Add(-2 * time.Hour).UTC()

		transcribing, err := store.NewEpisode(ctx, "Stale-Transcribing", "https://example.com/t.mp3", "stale-transcribing")
		if err != nil {
			t.Fatalf("NewEpisode transcribing: %v", err)
		}
		transcribing.Status = queue.StatusTranscribing
		transcribing.LastHeartbeat = &past
		if err := store.Update(ctx, transcribing); err != nil {
			t.Fatalf("Update transcribing: %v", err)
		}

		detecting, err := store.NewEpisode(ctx, "Stale-Detecting", "https://example.com/d.mp3", "stale-detecting")
		if err != nil {
			t.Fatalf("NewEpisode detecting: %v", err)
		}
		detecting.Status = queue.StatusDetecting
		detecting.LastHeartbeat = &past
		if err := store.Update(ctx, detecting); err != nil {
			t.Fatalf("Update detecting: %v", err)
		}

		count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-1*time.Hour), queue.StatusDetecting)
		if err != nil {
			t.Fatalf("ReclaimStaleProcessing filtered: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 item reclaimed, got %d", count)
		}

		reclaimed, err := store.GetByID(ctx, detecting.ID)
		if err != nil {
			t.Fatalf("GetByID detecting: %v", err)
		}
		if reclaimed.Status != queue.StatusTranscribed {
			t.Fatalf("expected detecting item rolled back to transcribed, got %s", reclaimed.Status)
		}
		if reclaimed.LastHeartbeat != nil {
			t.Fatalf("expected detecting heartbeat cleared, got %v", reclaimed.LastHeartbeat)
		}

		unchanged, err := store.GetByID(ctx, transcribing.ID)
		if err != nil {
			t.Fatalf("GetByID transcribing: %v", err)
		}
		if unchanged.Status != queue.StatusTranscribing {
			t.Fatalf("expected transcribing item untouched, got %s", unchanged.Status)
		}
		if unchanged.LastHeartbeat == nil || !unchanged.LastHeartbeat.Equal(past) {
			t.Fatalf("expected transcribing heartbeat unchanged, got %v", unchanged.LastHeartbeat)
		}
	})
}

func TestUpdateProgressPreservesHeartbeat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewEpisode(ctx, "Heartbeat Progress", "https://example.com/hp.mp3", "hb-progress")
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}
	item.Status = queue.StatusDetecting
	past := time.Now().Add(-5 * time.Minute).UTC()
	item.LastHeartbeat = &past
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}

	before, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID before progress: %v", err)
	}
	if before.LastHeartbeat == nil {
		t.Fatal("expected heartbeat set before progress update")
	}
	origHeartbeat := *before.LastHeartbeat

	before.ProgressStage = "Detect"
	before.ProgressPercent = 42.5
	before.ProgressMessage = "Scoring segments"
	if err := store.UpdateProgress(ctx, before); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	after, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID after progress: %v", err)
	}
	if after.LastHeartbeat == nil {
		t.Fatal("expected heartbeat preserved after progress update")
	}
	if !after.LastHeartbeat.Equal(origHeartbeat) {
		t.Fatalf("expected heartbeat unchanged, before %v after %v", origHeartbeat, after.LastHeartbeat)
	}
	if after.ProgressStage != "Detect" || after.ProgressMessage != "Scoring segments" {
		t.Fatalf("expected progress fields persisted, got stage=%q message=%q", after.ProgressStage, after.ProgressMessage)
	}
	if after.ProgressPercent != 42.5 {
		t.Fatalf("expected progress percent 42.5, got %f", after.ProgressPercent)
	}
}

func TestClearCompletedAndFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	done, err := store.NewEpisode(ctx, "Done", "https://example.com/done.mp3", "fp-done")
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	broken, err := store.NewEpisode(ctx, "Broken", "https://example.com/broken.mp3", "fp-broken")
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}
	broken.Status = queue.StatusFailed
	if err := store.Update(ctx, broken); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := store.NewEpisode(ctx, "Waiting", "https://example.com/wait.mp3", "fp-wait"); err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 completed item removed, got %d", removed)
	}

	removed, err = store.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 failed item removed, got %d", removed)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].EpisodeTitle != "Waiting" {
		t.Fatalf("expected only pending item to remain, got %#v", remaining)
	}
}
