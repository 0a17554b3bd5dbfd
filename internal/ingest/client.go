package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "CPC-Web-App (+https://cpcnewhaven.org)"

// Client is the shared HTTP client for every feed fetcher. It applies the
// site User-Agent and a request timeout so one slow upstream cannot hold a
// handler open.
type Client struct {
	http *http.Client
}

// NewClient creates a client with the given timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// HTTP exposes the underlying http.Client for libraries that accept one.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// Get fetches the URL and returns the response body. Non-2xx statuses are
// errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	return body, nil
}
