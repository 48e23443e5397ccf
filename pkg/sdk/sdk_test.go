package sdk

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/seolens/seolens/pkg/models"
)

func TestClient_TrackAndFlush_Callback(t *testing.T) {
	var mu sync.Mutex
	var got []models.Batch

	c := New(Config{
		Capacity:      10,
		FlushInterval: time.Hour,
		OnData: func(ctx context.Context, batch models.Batch) error {
			mu.Lock()
			got = append(got, batch)
			mu.Unlock()
			return nil
		},
	})
	defer c.Close(context.Background())

	c.Track(map[string]any{"type": "meta", "title": "Home"})
	c.Track(map[string]any{"type": "links", "internal": 12})

	if c.Size() != 2 {
		t.Fatalf("Expected 2 buffered events, got %d", c.Size())
	}

	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("Expected one batch, got %d", len(got))
	}
	if got[0].BatchSize != 2 {
		t.Errorf("Expected batchSize 2, got %d", got[0].BatchSize)
	}
	if got[0].Events[0].ID == "" || got[0].Events[0].EnqueuedAt.IsZero() {
		t.Error("Events must carry an ID and enqueue timestamp")
	}
}

func TestClient_CapacityTrigger(t *testing.T) {
	done := make(chan models.Batch, 1)

	c := New(Config{
		Capacity:      3,
		FlushInterval: time.Hour,
		OnData: func(ctx context.Context, batch models.Batch) error {
			done <- batch
			return nil
		},
	})
	defer c.Close(context.Background())

	c.Track(map[string]any{"a": 1})
	c.Track(map[string]any{"a": 2})
	c.Track(map[string]any{"a": 3})

	select {
	case batch := <-done:
		if batch.BatchSize != 3 {
			t.Errorf("Expected batch of 3, got %d", batch.BatchSize)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Capacity trigger never flushed")
	}
}

func TestClient_Close_DrainsQueue(t *testing.T) {
	var mu sync.Mutex
	delivered := 0

	c := New(Config{
		FlushInterval: time.Hour,
		OnData: func(ctx context.Context, batch models.Batch) error {
			mu.Lock()
			delivered += batch.BatchSize
			mu.Unlock()
			return nil
		},
	})

	c.Track(map[string]any{"a": 1})
	c.Track(map[string]any{"a": 2})

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if delivered != 2 {
		t.Errorf("Expected final flush to deliver 2 events, got %d", delivered)
	}
	if c.Size() != 0 {
		t.Errorf("Expected empty queue after Close, got %d", c.Size())
	}
}

func TestClient_ZeroConfig_Discards(t *testing.T) {
	c := New(Config{FlushInterval: time.Hour})
	defer c.Close(context.Background())

	c.Track(map[string]any{"a": 1})
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Discard-mode flush must succeed, got %v", err)
	}
	if c.Size() != 0 {
		t.Errorf("Expected drained queue in discard mode, got %d", c.Size())
	}
}
