package legacyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"timeclock.service/internal/ports/messaging"
)

// Client forwards accepted time clock events to the legacy attendance system.
type Client interface {
	RecordEvent(ctx context.Context, event messaging.EventRecorded) error
}

// HTTPClient API client using HTTP
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient returns a client whose requests carry the trace context.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
	}
}

// RecordEvent posts the event to the legacy API.
func (c *HTTPClient) RecordEvent(ctx context.Context, event messaging.EventRecorded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal legacy api payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create legacy api request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call legacy api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("legacy api returned non-successful status code: %d", resp.StatusCode)
	}

	log.Ctx(ctx).Info().Str("event_id", event.EventID).Str("type", event.Type).Msg("recorded time clock event in legacy system")
	return nil
}
