package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/irgordon/kari-preview/internal/core/domain"
)

const maxInventoryBytes = 4 << 20

// HTTPInventory fetches the live rule set from the provisioning layer's
// inventory endpoint. Transient failures are retried by the client.
type HTTPInventory struct {
	url  string
	http *retryablehttp.Client
}

// NewHTTPInventory builds the adapter. timeout bounds each attempt.
func NewHTTPInventory(url string, timeout time.Duration, retries int, logger *slog.Logger) *HTTPInventory {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	// *slog.Logger satisfies retryablehttp.LeveledLogger.
	client.Logger = nil
	if logger != nil {
		client.Logger = logger
	}

	return &HTTPInventory{
		url:  url,
		http: client,
	}
}

func (h *HTTPInventory) ListRules(ctx context.Context) ([]domain.ListenerRule, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory transport error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory endpoint returned %s", resp.Status)
	}

	var doc ruleDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxInventoryBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode inventory response: %w", err)
	}
	return doc.Rules, nil
}
