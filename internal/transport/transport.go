// Package transport provides delivery mechanisms for event batches.
package transport

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/pkg/models"
)

// Transport delivers a batch and reports success or failure.
//
// Implementations must treat a nil error as "the batch is owned by the
// receiver"; the queue discards delivered events and never re-sends them.
type Transport interface {
	// Send delivers the batch. A returned error is a delivery failure and
	// the caller may re-queue part of the batch.
	Send(ctx context.Context, batch models.Batch) error

	// Name returns the transport identifier for logging
	Name() string
}

// Func adapts a plain function to the Transport interface. This is the
// callback delivery mode: the consumer receives the batch directly and any
// returned error counts as a delivery failure.
type Func func(ctx context.Context, batch models.Batch) error

func (f Func) Send(ctx context.Context, batch models.Batch) error {
	return f(ctx, batch)
}

func (f Func) Name() string {
	return "CallbackTransport"
}

// Pick selects the delivery mode by precedence: a configured callback wins
// over an endpoint, and with neither the discard transport is used.
func Pick(onData Func, endpoint, apiKey string, client *http.Client) Transport {
	switch {
	case onData != nil:
		return onData
	case endpoint != "":
		return NewHTTP(endpoint, apiKey, client)
	default:
		return Discard{}
	}
}

// Discard is the degraded no-op mode for environments without a backend:
// batches are logged and dropped, and delivery always reports success so the
// queue keeps draining.
type Discard struct{}

func (Discard) Send(ctx context.Context, batch models.Batch) error {
	log.Debug().
		Int("batch_size", batch.BatchSize).
		Msg("No endpoint or callback configured, discarding batch")
	return nil
}

func (Discard) Name() string {
	return "DiscardTransport"
}
