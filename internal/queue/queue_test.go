package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/seolens/seolens/internal/transport"
	"github.com/seolens/seolens/pkg/models"
)

// stubTransport records delivered batches and can fail or block on demand
type stubTransport struct {
	mu      sync.Mutex
	batches []models.Batch
	err     error

	entered chan struct{} // receives one value when Send starts, if set
	release chan struct{} // Send blocks until this receives a value, if set
}

func (s *stubTransport) Send(ctx context.Context, batch models.Batch) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	s.batches = append(s.batches, batch)
	s.mu.Unlock()
	return s.err
}

func (s *stubTransport) Name() string { return "StubTransport" }

func (s *stubTransport) sends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *stubTransport) lastBatch() models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return models.Batch{}
	}
	return s.batches[len(s.batches)-1]
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never held: %s", msg)
}

func payload(n int) map[string]any {
	return map[string]any{"seq": n}
}

func TestQueue_AddBelowCapacity_NoAutoFlush(t *testing.T) {
	tr := &stubTransport{}
	q := New(tr, 5)

	q.Add(payload(1))
	q.Add(payload(2))
	q.Add(payload(3))

	if got := q.Size(); got != 3 {
		t.Errorf("Expected size 3, got %d", got)
	}

	time.Sleep(50 * time.Millisecond)
	if tr.sends() != 0 {
		t.Errorf("Expected no flush below capacity, got %d sends", tr.sends())
	}
}

func TestQueue_Add_EmptyPayloadIgnored(t *testing.T) {
	q := New(&stubTransport{}, 5)

	q.Add(nil)
	q.Add(map[string]any{})

	if got := q.Size(); got != 0 {
		t.Errorf("Expected empty payloads to be ignored, size is %d", got)
	}
}

func TestQueue_Add_CopiesPayload(t *testing.T) {
	tr := &stubTransport{}
	q := New(tr, 5)

	p := map[string]any{"k": "original"}
	q.Add(p)
	p["k"] = "mutated"

	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got := tr.lastBatch().Events[0].Payload["k"]
	if got != "original" {
		t.Errorf("Payload was not copied at enqueue time, got %v", got)
	}
}

func TestQueue_CapacityTriggersFlush(t *testing.T) {
	tr := &stubTransport{}
	q := New(tr, 3)

	q.Add(payload(1))
	q.Add(payload(2))
	if got := q.Size(); got != 2 {
		t.Fatalf("Expected size 2 before capacity, got %d", got)
	}

	q.Add(payload(3))

	waitFor(t, func() bool { return tr.sends() == 1 }, "capacity flush delivered")
	waitFor(t, func() bool { return q.Size() == 0 }, "queue drained after capacity flush")

	batch := tr.lastBatch()
	if batch.BatchSize != 3 || len(batch.Events) != 3 {
		t.Errorf("Expected batch of 3, got batchSize=%d events=%d", batch.BatchSize, len(batch.Events))
	}
	if batch.Timestamp == 0 {
		t.Error("Expected a flush timestamp on the batch")
	}
}

func TestQueue_FlushEmpty_NoOp(t *testing.T) {
	tr := &stubTransport{}
	q := New(tr, 5)

	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush of empty queue returned error: %v", err)
	}
	if tr.sends() != 0 {
		t.Errorf("Transport invoked for empty queue: %d sends", tr.sends())
	}
	if q.Size() != 0 {
		t.Errorf("Size changed on empty flush: %d", q.Size())
	}
}

func TestQueue_OverlappingFlush_SingleDelivery(t *testing.T) {
	tr := &stubTransport{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	q := New(tr, 50)

	q.Add(payload(1))
	q.Add(payload(2))

	flushDone := make(chan error, 1)
	go func() { flushDone <- q.Flush(context.Background()) }()
	<-tr.entered // first flush is now suspended inside the transport

	// Events arriving during the in-flight send go to the next generation
	q.Add(payload(3))
	q.Add(payload(4))

	// A second flush during suspension must observe the in-progress flag
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Overlapping flush returned error: %v", err)
	}

	tr.release <- struct{}{}
	if err := <-flushDone; err != nil {
		t.Fatalf("First flush failed: %v", err)
	}

	if tr.sends() != 1 {
		t.Fatalf("Expected exactly one delivery, got %d", tr.sends())
	}
	if got := tr.lastBatch().BatchSize; got != 2 {
		t.Errorf("Expected first snapshot of 2 events, got %d", got)
	}
	if got := q.Size(); got != 2 {
		t.Errorf("Expected 2 events left for the next flush, got %d", got)
	}
}

func TestQueue_FailureRequeuesTail(t *testing.T) {
	tr := &stubTransport{
		err:     errors.New("backend down"),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	q := New(tr, 100)

	for i := 1; i <= 50; i++ {
		q.Add(payload(i))
	}

	flushDone := make(chan error, 1)
	go func() { flushDone <- q.Flush(context.Background()) }()
	<-tr.entered

	// Arrivals during the failed attempt must stay behind the retried tail
	q.Add(payload(51))
	q.Add(payload(52))

	tr.release <- struct{}{}
	if err := <-flushDone; err == nil {
		t.Fatal("Expected flush to report the delivery failure")
	}

	if got := q.Size(); got != 27 {
		t.Fatalf("Expected 25 retried + 2 live events, got %d", got)
	}

	// Snapshot the surviving order through a second, successful flush
	tr.mu.Lock()
	tr.err = nil
	tr.entered = nil
	tr.release = nil
	tr.mu.Unlock()

	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Second flush failed: %v", err)
	}

	events := tr.lastBatch().Events
	if len(events) != 27 {
		t.Fatalf("Expected 27 events in recovery batch, got %d", len(events))
	}
	for i := 0; i < 25; i++ {
		want := 26 + i // last 25 of the failed batch, original relative order
		if got := events[i].Payload["seq"]; got != want {
			t.Fatalf("Retried event %d out of order: got %v, want %d", i, got, want)
		}
	}
	if events[25].Payload["seq"] != 51 || events[26].Payload["seq"] != 52 {
		t.Errorf("Live events not preserved after retried tail: %v, %v",
			events[25].Payload["seq"], events[26].Payload["seq"])
	}
}

func TestQueue_FailureSmallBatch_AllRetained(t *testing.T) {
	var calls int
	var mu sync.Mutex
	rejecting := transport.Func(func(ctx context.Context, batch models.Batch) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return fmt.Errorf("rejected batch of %d", batch.BatchSize)
	})
	q := New(rejecting, 3)

	q.Add(payload(1))
	q.Add(payload(2))
	q.Add(payload(3))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, "capacity flush attempted")
	waitFor(t, func() bool { return q.Size() == 3 }, "all 3 events retained after failure")
}

func TestQueue_PeriodicFlush(t *testing.T) {
	tr := &stubTransport{}
	q := New(tr, 50)

	q.StartPeriodicFlush(20 * time.Millisecond)
	defer q.StopPeriodicFlush()

	// Empty queue: ticks must not touch the transport
	time.Sleep(60 * time.Millisecond)
	if tr.sends() != 0 {
		t.Fatalf("Periodic flush fired on empty queue: %d sends", tr.sends())
	}

	q.Add(payload(1))
	waitFor(t, func() bool { return tr.sends() >= 1 }, "periodic flush delivered")

	q.StopPeriodicFlush()
	q.StopPeriodicFlush() // idempotent

	sent := tr.sends()
	q.Add(payload(2))
	time.Sleep(80 * time.Millisecond)
	if tr.sends() != sent {
		t.Errorf("Flush occurred after StopPeriodicFlush: %d -> %d", sent, tr.sends())
	}
	if q.Size() != 1 {
		t.Errorf("Expected event to remain queued after stop, size %d", q.Size())
	}
}

func TestQueue_Close_StopsTickerAndFlushes(t *testing.T) {
	tr := &stubTransport{}
	q := New(tr, 50)
	q.StartPeriodicFlush(10 * time.Millisecond)

	q.Add(payload(1))
	q.Add(payload(2))

	if err := q.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if q.Size() != 0 {
		t.Errorf("Expected drained queue after Close, size %d", q.Size())
	}
	if tr.sends() == 0 {
		t.Error("Expected a final flush attempt on Close")
	}

	sent := tr.sends()
	q.Add(payload(3))
	time.Sleep(50 * time.Millisecond)
	if tr.sends() != sent {
		t.Errorf("Ticker still running after Close: %d -> %d", sent, tr.sends())
	}
}

func TestQueue_Clear(t *testing.T) {
	tr := &stubTransport{}
	q := New(tr, 5)

	q.Add(payload(1))
	q.Add(payload(2))
	q.Clear()

	if q.Size() != 0 {
		t.Errorf("Expected size 0 after Clear, got %d", q.Size())
	}
	if tr.sends() != 0 {
		t.Errorf("Clear must not attempt delivery, got %d sends", tr.sends())
	}
}

func TestQueue_DiscardMode_EndToEnd(t *testing.T) {
	// No endpoint and no callback: delivery degrades to a successful no-op
	q := New(transport.Discard{}, 3)
	q.StartPeriodicFlush(100000 * time.Second)
	defer q.StopPeriodicFlush()

	q.Add(map[string]any{"a": 1})
	q.Add(map[string]any{"a": 2})
	if got := q.Size(); got != 2 {
		t.Fatalf("Expected size 2, got %d", got)
	}

	q.Add(map[string]any{"a": 3})
	waitFor(t, func() bool { return q.Size() == 0 }, "discard mode drains the queue")
}
