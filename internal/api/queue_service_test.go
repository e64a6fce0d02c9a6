package api_test

import (
	"context"
	"testing"

	"podsweep/internal/api"
	"podsweep/internal/queue"
)

type fakeReader struct {
	items []*queue.Item
	stats map[queue.Status]int
}

func (f *fakeReader) List(_ context.Context, statuses ...queue.Status) ([]*queue.Item, error) {
	if len(statuses) == 0 {
		return f.items, nil
	}
	allowed := make(map[queue.Status]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}
	var out []*queue.Item
	for _, item := range f.items {
		if _, ok := allowed[item.Status]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeReader) Stats(context.Context) (map[queue.Status]int, error) {
	return f.stats, nil
}

func (f *fakeReader) GetByID(_ context.Context, id int64) (*queue.Item, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, nil
}

func TestQueueServiceList(t *testing.T) {
	reader := &fakeReader{items: []*queue.Item{
		{ID: 1, Status: queue.StatusPending, EpisodeTitle: "A"},
		{ID: 2, Status: queue.StatusFailed, EpisodeTitle: "B"},
	}}
	svc := api.NewQueueService(reader)

	all, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two items, got %d", len(all))
	}

	failed, err := svc.List(context.Background(), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != 2 {
		t.Fatalf("unexpected filtered items: %+v", failed)
	}
}

func TestQueueServiceDescribe(t *testing.T) {
	reader := &fakeReader{items: []*queue.Item{{ID: 5, Status: queue.StatusCompleted, EpisodeTitle: "Done"}}}
	svc := api.NewQueueService(reader)

	item, err := svc.Describe(context.Background(), 5)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if item == nil || item.EpisodeTitle != "Done" {
		t.Fatalf("unexpected item: %+v", item)
	}

	missing, err := svc.Describe(context.Background(), 99)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing item, got %+v", missing)
	}
}

func TestQueueServiceStats(t *testing.T) {
	reader := &fakeReader{stats: map[queue.Status]int{queue.StatusPending: 3}}
	svc := api.NewQueueService(reader)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["pending"] != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestNewQueueServiceNilReader(t *testing.T) {
	if api.NewQueueService(nil) != nil {
		t.Fatal("expected nil service for nil reader")
	}
}
