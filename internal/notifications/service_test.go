package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"podsweep/internal/config"
	"podsweep/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventEpisodeCompleted, notifications.Payload{"episode": "Example"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "queue started",
			event: notifications.EventQueueStarted,
			payload: notifications.Payload{
				"count": 3,
			},
			expectTitle:   "Podsweep - Queue Started",
			expectMessage: "Started processing queue with 3 items",
			expectTags:    "podsweep,queue,started",
		},
		{
			name:  "queue completed with failures",
			event: notifications.EventQueueCompleted,
			payload: notifications.Payload{
				"processed": 4,
				"failed":    1,
			},
			expectTitle:   "Podsweep - Queue Complete (with errors)",
			expectMessage: "Queue processing complete: 4 succeeded, 1 failed",
			expectTags:    "podsweep,queue,completed",
		},
		{
			name:  "episode completed",
			event: notifications.EventEpisodeCompleted,
			payload: notifications.Payload{
				"episode": "Episode 42",
				"removed": "2 segments (95s)",
				"file":    "Episode 42.mp3",
			},
			expectTitle:    "Podsweep - Episode Ready",
			expectMessage:  "Episode cleaned: Episode 42\nAds removed: 2 segments (95s)\nFile: Episode 42.mp3",
			expectTags:     "podsweep,episode,completed",
			expectPriority: "high",
		},
		{
			name:  "detection review",
			event: notifications.EventDetectionReview,
			payload: notifications.Payload{
				"episode": "Episode 7",
				"reason":  "no ad segments found in a 90 minute episode",
			},
			expectTitle:   "Podsweep - Review Needed",
			expectMessage: "Detection needs review: Episode 7\nno ad segments found in a 90 minute episode",
			expectTags:    "podsweep,detection,review",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "detect (item #3)",
				"error":   "transcriber unreachable",
			},
			expectTitle:    "Podsweep - Error",
			expectMessage:  "Error with detect (item #3): transcriber unreachable",
			expectTags:     "podsweep,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Queue = false
	cfg.Notifications.Review = false

	svc := notifications.NewService(&cfg)
	suppressed := []notifications.Event{
		notifications.EventQueueStarted,
		notifications.EventQueueCompleted,
		notifications.EventDetectionReview,
	}

	for _, event := range suppressed {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}
