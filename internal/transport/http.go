// internal/transport/http.go
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/internal/retry"
	"github.com/seolens/seolens/pkg/models"
)

// SDKVersion is reported on every delivery in the X-SDK-Version header
const SDKVersion = "1.0.0"

// maxErrorBodyBytes caps how much of an error response body is read for
// the failure message
const maxErrorBodyBytes = 512

// HTTP posts batches as JSON to a configured endpoint. A non-2xx response
// is a delivery failure carrying the status code and text.
type HTTP struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTP creates an HTTP transport for the given endpoint. The API key is
// sent as a bearer token; it may be empty for endpoints without auth.
func NewHTTP(endpoint, apiKey string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
	}
}

// Name returns the transport identifier
func (t *HTTP) Name() string {
	return "HTTPTransport"
}

// Send delivers the batch with a single JSON POST. Timeout semantics come
// from ctx and the underlying client; no retry happens here.
func (t *HTTP) Send(ctx context.Context, batch models.Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-SDK-Version", SDKVersion)
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return retry.NewHTTPError(resp.StatusCode, resp.Status, string(bytes.TrimSpace(msg)))
	}

	log.Debug().
		Int("batch_size", batch.BatchSize).
		Str("endpoint", t.endpoint).
		Msg("Batch delivered")

	return nil
}
