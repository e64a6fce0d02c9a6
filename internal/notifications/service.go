package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"podsweep/internal/config"
)

const userAgent = "podsweep/1.0"

// Event identifies a workflow milestone worth telling the operator about.
type Event string

const (
	EventQueueStarted      Event = "queue_started"
	EventQueueCompleted    Event = "queue_completed"
	EventDownloadCompleted Event = "download_completed"
	EventEpisodeCompleted  Event = "episode_completed"
	EventDetectionReview   Event = "detection_review"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries the event's message fields. Renderers pull what they
// need and ignore the rest.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
	Test(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		enabled:  cfg.Notifications,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	enabled  config.Notifications
	client   *http.Client
}

// Publish renders the event and posts it. Events whose category is disabled
// in configuration are silently skipped.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.eventEnabled(event) {
		return nil
	}
	return n.send(ctx, render(event, payload))
}

func (n *ntfyService) Test(ctx context.Context) error {
	return n.send(ctx, message{
		title:    "Podsweep - Test",
		body:     "Notification system test",
		tags:     []string{"podsweep", "test"},
		priority: "low",
	})
}

func (n *ntfyService) eventEnabled(event Event) bool {
	switch event {
	case EventQueueStarted, EventQueueCompleted:
		return n.enabled.Queue
	case EventDownloadCompleted:
		return n.enabled.Download
	case EventEpisodeCompleted:
		return n.enabled.Organization
	case EventDetectionReview:
		return n.enabled.Review
	case EventError:
		return n.enabled.Errors
	default:
		return true
	}
}

func render(event Event, payload Payload) message {
	switch event {
	case EventQueueStarted:
		return message{
			title: "Podsweep - Queue Started",
			body:  fmt.Sprintf("Started processing queue with %d items", payloadInt(payload, "count")),
			tags:  []string{"podsweep", "queue", "started"},
		}
	case EventQueueCompleted:
		processed := payloadInt(payload, "processed")
		failed := payloadInt(payload, "failed")
		if failed > 0 {
			return message{
				title: "Podsweep - Queue Complete (with errors)",
				body:  fmt.Sprintf("Queue processing complete: %d succeeded, %d failed", processed, failed),
				tags:  []string{"podsweep", "queue", "completed"},
			}
		}
		return message{
			title: "Podsweep - Queue Complete",
			body:  fmt.Sprintf("Queue processing complete: %d items processed", processed),
			tags:  []string{"podsweep", "queue", "completed"},
		}
	case EventDownloadCompleted:
		return message{
			title: "Podsweep - Downloaded",
			body:  fmt.Sprintf("Episode downloaded: %s", payloadString(payload, "episode")),
			tags:  []string{"podsweep", "download", "completed"},
		}
	case EventEpisodeCompleted:
		body := fmt.Sprintf("Episode cleaned: %s", payloadString(payload, "episode"))
		if removed := payloadString(payload, "removed"); removed != "" {
			body = fmt.Sprintf("%s\nAds removed: %s", body, removed)
		}
		if file := payloadString(payload, "file"); file != "" {
			body = fmt.Sprintf("%s\nFile: %s", body, file)
		}
		return message{
			title:    "Podsweep - Episode Ready",
			body:     body,
			tags:     []string{"podsweep", "episode", "completed"},
			priority: "high",
		}
	case EventDetectionReview:
		return message{
			title: "Podsweep - Review Needed",
			body: fmt.Sprintf("Detection needs review: %s\n%s",
				payloadString(payload, "episode"), payloadString(payload, "reason")),
			tags: []string{"podsweep", "detection", "review"},
		}
	case EventError:
		body := "Error"
		if contextLabel := payloadString(payload, "context"); contextLabel != "" {
			body += " with " + contextLabel
		}
		body += ": "
		switch err := payload["error"].(type) {
		case error:
			body += strings.TrimSpace(err.Error())
		case string:
			body += strings.TrimSpace(err)
		default:
			body += "unknown"
		}
		return message{
			title:    "Podsweep - Error",
			body:     body,
			tags:     []string{"podsweep", "error", "alert"},
			priority: "high",
		}
	default:
		return message{
			title: "Podsweep",
			body:  string(event),
			tags:  []string{"podsweep"},
		}
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	if value, ok := payload[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch value := payload[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
func (noopService) Test(context.Context) error                    { return nil }
