package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"podsweep/internal/queue"
	"podsweep/internal/testsupport"
)

func TestQueueStatusAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	testsupport.NewEpisode(t, env.store, "Alpha Episode", "https://feeds.example.com/alpha.mp3")

	beta := testsupport.NewEpisode(t, env.store, "Beta Episode", "https://feeds.example.com/beta.mp3")
	beta.Status = queue.StatusFailed
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("beta failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Alpha Episode")
	requireContains(t, out, "Beta Episode")

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list filtered: %v", err)
	}
	requireContains(t, out, "Beta Episode")
	if strings.Contains(out, "Alpha Episode") {
		t.Fatalf("expected filtered list to omit pending item, got:\n%s", out)
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha := testsupport.NewEpisode(t, env.store, "Alpha Episode", "https://feeds.example.com/alpha.mp3")
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed items")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}

	updated.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared")
}

func TestQueueRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha := testsupport.NewEpisode(t, env.store, "Alpha Episode", "https://feeds.example.com/alpha.mp3")
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry specific: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d reset for retry", alpha.ID))

	out, _, err = runCLI(t, []string{"queue", "retry", "9999"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry missing: %v", err)
	}
	requireContains(t, out, "Item 9999 not found")
}

func TestQueueStopAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha := testsupport.NewEpisode(t, env.store, "Alpha Episode", "https://feeds.example.com/alpha.mp3")

	out, _, err := runCLI(t, []string{"queue", "stop", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue stop: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d stop requested", alpha.ID))

	stopped, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if stopped.Status != queue.StatusReview {
		t.Fatalf("expected review status, got %s", stopped.Status)
	}
	if stopped.ReviewReason != queue.UserStopReason {
		t.Fatalf("unexpected review reason %q", stopped.ReviewReason)
	}

	out, _, err = runCLI(t, []string{"queue", "remove", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d removed", alpha.ID))

	out, _, err = runCLI(t, []string{"queue", "remove", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue remove missing: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d not found", alpha.ID))
}

func TestQueueHealthSummary(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.NewEpisode(t, env.store, "Alpha Episode", "https://feeds.example.com/alpha.mp3")

	out, _, err := runCLI(t, []string{"queue", "health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Total: 1")
	requireContains(t, out, "Pending: 1")
}

func TestHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "Database path:")
	requireContains(t, out, "queue_items table present: yes")
	requireContains(t, out, "Integrity check: yes")
}
