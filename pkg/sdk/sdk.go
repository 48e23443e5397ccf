// Package sdk is the embeddable client surface: configure an endpoint or a
// callback, track events, and let the batching queue handle delivery.
//
// A zero-value Config is usable: events are batched and discarded, which is
// the degraded mode for environments without a backend.
package sdk

import (
	"context"
	"net/http"
	"time"

	"github.com/seolens/seolens/internal/queue"
	"github.com/seolens/seolens/internal/transport"
	"github.com/seolens/seolens/pkg/models"
)

// Config holds the client configuration. OnData, when set, overrides the
// HTTP endpoint: batches are handed to the callback and any returned error
// is treated as a delivery failure.
type Config struct {
	Endpoint      string
	APIKey        string
	FlushInterval time.Duration // default 30s
	Capacity      int           // default 50
	OnData        func(ctx context.Context, batch models.Batch) error
	HTTPClient    *http.Client
}

// Client buffers tracked events and delivers them in batches
type Client struct {
	queue *queue.Queue
}

// New creates a client and starts its periodic flush
func New(cfg Config) *Client {
	tr := transport.Pick(transport.Func(cfg.OnData), cfg.Endpoint, cfg.APIKey, cfg.HTTPClient)

	q := queue.New(tr, cfg.Capacity)
	q.StartPeriodicFlush(cfg.FlushInterval)

	return &Client{queue: q}
}

// Track enqueues one event payload. Empty payloads are ignored. Track never
// blocks on delivery and never fails; delivery problems are recovered
// internally by the queue.
func (c *Client) Track(payload map[string]any) {
	c.queue.Add(payload)
}

// Flush forces delivery of everything currently buffered. It is a no-op if
// the queue is empty or a flush is already in flight.
func (c *Client) Flush(ctx context.Context) error {
	return c.queue.Flush(ctx)
}

// Size returns the number of buffered events
func (c *Client) Size() int {
	return c.queue.Size()
}

// Close stops the periodic flush and makes one final delivery attempt
func (c *Client) Close(ctx context.Context) error {
	return c.queue.Close(ctx)
}
