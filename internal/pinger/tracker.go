package pinger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPTracker reports visits with GET <endpoint>?zone=<zone>.
// The response body is discarded.
type HTTPTracker struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPTracker creates a tracker for endpoint. A nil client gets a default
// client with a 10 second timeout.
func NewHTTPTracker(endpoint string, client *http.Client) (*HTTPTracker, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid tracking endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid tracking endpoint: %q is not an absolute URL", endpoint)
	}

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &HTTPTracker{
		endpoint: u,
		client:   client,
	}, nil
}

// Track sends a single visit ping. An empty zone is sent as is.
func (t *HTTPTracker) Track(ctx context.Context, zone string) error {
	u := *t.endpoint
	q := u.Query()
	q.Set("zone", zone)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ping: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// NopTracker drops every ping. Used when tracking is switched off.
type NopTracker struct{}

// Track does nothing
func (NopTracker) Track(ctx context.Context, zone string) error {
	return nil
}

