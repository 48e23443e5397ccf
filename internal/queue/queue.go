// Package queue implements the bounded event buffer that accumulates
// collector payloads and decides when and how to deliver them.
//
// Delivery happens on three triggers: the capacity threshold, the periodic
// ticker, and Close. Failed deliveries re-insert a bounded tail of the
// failed batch at the head of the queue so the most recent signals survive
// a flaky backend without unbounded growth.
package queue

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/internal/transport"
	"github.com/seolens/seolens/pkg/models"
)

const (
	// DefaultCapacity is the buffered event limit before a forced flush
	DefaultCapacity = 50

	// DefaultFlushInterval drives the periodic flush ticker
	DefaultFlushInterval = 30 * time.Second

	// retryTailLimit caps how many events of a failed batch are re-queued.
	// The limit is fixed at half the default capacity regardless of the
	// configured capacity, so sustained delivery failure cannot grow the
	// queue faster than it drains.
	retryTailLimit = DefaultCapacity / 2
)

// Queue is an ordered, bounded buffer of events with owned flush scheduling.
//
// The flushing flag is the single mutual-exclusion mechanism for delivery:
// at most one flush is in flight at any time, and a flush requested while
// another is in flight is a no-op. Events added during an in-flight send
// land in the next-generation buffer and are picked up by a later flush.
type Queue struct {
	mu       sync.Mutex
	events   []models.Event
	capacity int
	flushing bool
	tr       transport.Transport

	stopTicker chan struct{}
}

// New creates an empty queue delivering through tr. A capacity <= 0 falls
// back to DefaultCapacity.
func New(tr transport.Transport, capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if tr == nil {
		tr = transport.Discard{}
	}
	return &Queue{
		capacity: capacity,
		tr:       tr,
	}
}

// Add appends a shallow copy of payload, tagged with an ID and enqueue
// timestamp, to the tail of the queue. An empty or nil payload is silently
// ignored. Reaching the capacity threshold dispatches a fire-and-forget
// flush; Add never blocks on delivery and never returns delivery errors.
func (q *Queue) Add(payload map[string]any) {
	if len(payload) == 0 {
		log.Debug().Msg("Ignoring empty event payload")
		return
	}

	ev := models.Event{
		ID:         uuid.NewString(),
		EnqueuedAt: time.Now(),
		Payload:    maps.Clone(payload),
	}

	q.mu.Lock()
	q.events = append(q.events, ev)
	full := len(q.events) >= q.capacity
	q.mu.Unlock()

	if full {
		go func() {
			if err := q.Flush(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Capacity-triggered flush failed")
			}
		}()
	}
}

// Flush snapshots and clears the queue, then hands the batch to the
// transport. It is a no-op when the queue is empty or another flush is
// already in flight. On delivery failure the last retryTailLimit events of
// the failed batch are re-inserted at the head, ahead of anything added
// while the send was in flight, and the error is returned after the queue
// has already recovered. Flush never leaves the queue in the flushing state.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	if q.flushing || len(q.events) == 0 {
		q.mu.Unlock()
		return nil
	}
	snapshot := q.events
	q.events = nil
	q.flushing = true
	q.mu.Unlock()

	batch := models.Batch{
		Events:    snapshot,
		BatchSize: len(snapshot),
		Timestamp: time.Now().UnixMilli(),
	}

	err := q.tr.Send(ctx, batch)

	q.mu.Lock()
	if err != nil {
		keep := len(snapshot)
		if keep > retryTailLimit {
			keep = retryTailLimit
		}
		tail := snapshot[len(snapshot)-keep:]

		merged := make([]models.Event, 0, len(tail)+len(q.events))
		merged = append(merged, tail...)
		merged = append(merged, q.events...)
		q.events = merged

		log.Warn().
			Err(err).
			Str("transport", q.tr.Name()).
			Int("batch_size", batch.BatchSize).
			Int("requeued", keep).
			Msg("Batch delivery failed, re-queued tail of batch")
	} else {
		log.Debug().
			Str("transport", q.tr.Name()).
			Int("batch_size", batch.BatchSize).
			Msg("Flush completed")
	}
	q.flushing = false
	q.mu.Unlock()

	return err
}

// StartPeriodicFlush schedules a flush every interval; only non-empty
// queues are flushed. A previously started ticker is stopped first, so the
// queue owns at most one. An interval <= 0 falls back to
// DefaultFlushInterval.
func (q *Queue) StartPeriodicFlush(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	q.mu.Lock()
	if q.stopTicker != nil {
		close(q.stopTicker)
	}
	stop := make(chan struct{})
	q.stopTicker = stop
	q.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if q.Size() == 0 {
					continue
				}
				if err := q.Flush(context.Background()); err != nil {
					log.Warn().Err(err).Msg("Periodic flush failed")
				}
			case <-stop:
				return
			}
		}
	}()

	log.Debug().Dur("interval", interval).Msg("Periodic flush started")
}

// StopPeriodicFlush cancels the periodic schedule. It is idempotent and
// does not cancel an in-flight delivery.
func (q *Queue) StopPeriodicFlush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopTicker != nil {
		close(q.stopTicker)
		q.stopTicker = nil
	}
}

// Close stops the periodic schedule and performs one final best-effort
// flush of anything still buffered.
func (q *Queue) Close(ctx context.Context) error {
	q.StopPeriodicFlush()
	return q.Flush(ctx)
}

// Size returns the current queue length
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Clear discards all buffered events without attempting delivery
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = nil
}
