package nico

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public niconico host.
const DefaultBaseURL = "https://www.nicovideo.jp"

// Client fetches series pages. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

// NewClient creates a Client. An empty baseURL selects the public host;
// tests point it at a local fixture server instead.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 12 * time.Second},
		Logger:  logger,
	}
}

// StatusError reports a non-2xx upstream response. There is no retry:
// the caller treats it as fatal for the request.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nico: status %d fetching %s", e.StatusCode, e.URL)
}

// FetchSeries returns the markup of the first page of a series.
func (c *Client) FetchSeries(ctx context.Context, seriesID string) ([]byte, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("nico: empty series id")
	}
	return c.get(ctx, c.BaseURL+"/series/"+seriesID)
}

// FetchPage returns the markup of a specific page of a series, addressed
// through the canonical URL extracted from the first page.
func (c *Client) FetchPage(ctx context.Context, canonicalURL string, page int) ([]byte, error) {
	if canonicalURL == "" {
		return nil, fmt.Errorf("nico: no canonical URL to build page %d request", page)
	}
	return c.get(ctx, canonicalURL+"?page="+strconv.Itoa(page))
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("nico: build request: %w", err)
	}

	c.Logger.Debug("fetching upstream page", zap.String("url", url))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nico: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nico: read body: %w", err)
	}
	return body, nil
}
