// Package alertsapi fetches the per-region alert state from the public status
// endpoint.
package alertsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vartalabs/varta-ingest/internal/domain"
)

// ErrRateLimited reports an HTTP 429 from the status endpoint. The poller
// backs off instead of treating it as an ordinary fetch failure.
var ErrRateLimited = errors.New("status endpoint rate limited")

// Client implements the poller's status fetch against the HTTPS endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a status endpoint client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchStates performs one GET against the status endpoint and decodes the
// full per-region map.
func (c *Client) FetchStates(ctx context.Context) (domain.RegionSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status fetch: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status endpoint error: status %d", resp.StatusCode)
	}

	var body statesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	snapshot := make(domain.RegionSnapshot, len(body.States))
	for name, state := range body.States {
		snapshot[name] = state.AlertNow
	}
	return snapshot, nil
}

// Status endpoint response types.

type statesResponse struct {
	States map[string]regionState `json:"states"`
}

type regionState struct {
	AlertNow bool `json:"alertnow"`
}
