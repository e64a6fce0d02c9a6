package main

import (
	"testing"

	"podsweep/internal/testsupport"
)

func TestStatusCommandRendersSections(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.NewEpisode(t, env.store, "Alpha Episode", "https://feeds.example.com/alpha.mp3")

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== System Status ==")
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "== Library Paths ==")
	requireContains(t, out, "== Queue Status ==")
	requireContains(t, out, "Pending")
}

func TestStatusCommandEmptyQueue(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}
