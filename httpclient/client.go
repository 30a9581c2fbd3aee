// Package httpclient probes a running server over HTTP.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/en9inerd/geoserve/retry"
)

// Client wraps http.Client with a base URL and default headers.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	headers    map[string]string
}

// Config holds client configuration
type Config struct {
	Timeout time.Duration
	BaseURL string
	Headers map[string]string
	Logger  *slog.Logger
}

// StatusError is returned by Probe for a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// New creates a client; a zero Timeout means 5 seconds per request.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			// a redirect means the probed path is not the one that was asked for
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: cfg.BaseURL,
		headers: headers,
		logger:  cfg.Logger,
	}
}

// buildURL joins baseURL and path with exactly one slash
func (c *Client) buildURL(path string) string {
	if c.baseURL == "" {
		return path
	}
	if path == "" {
		return c.baseURL
	}
	return strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	url := c.buildURL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("making http request", "method", req.Method, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	return resp, nil
}

// Probe GETs path until it answers 2xx, retrying connection errors and 5xx
// responses per strategy. A 4xx or 3xx answer fails at once. It returns the
// last status code seen.
func (c *Client) Probe(ctx context.Context, path string, strategy *retry.Strategy) (int, error) {
	var status int
	err := retry.Do(ctx, strategy, func() error {
		resp, err := c.Get(ctx, path)
		if err != nil {
			c.logger.Debug("probe failed", "error", err)
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		status = resp.StatusCode
		switch {
		case status >= 200 && status < 300:
			return nil
		case status >= 500:
			c.logger.Debug("probe got server error", "status", status)
			return &StatusError{URL: c.buildURL(path), Status: status}
		default:
			return retry.Permanent(&StatusError{URL: c.buildURL(path), Status: status})
		}
	})
	return status, err
}
