package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is the shared HTTP client for all source adapters: one request
// timeout and one polite global rate limit across providers. The limit is
// enforced in the transport so every request goes through it, including
// requests issued by libraries handed the client via HTTP().
type Client struct {
	http *http.Client
}

// limitedTransport blocks each outgoing request on the shared limiter
// before handing it to the base transport.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// NewClient builds a client with the given per-request timeout and a global
// requests-per-second budget. rps <= 0 disables limiting.
func NewClient(timeout time.Duration, rps float64) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: &limitedTransport{base: http.DefaultTransport, limiter: limiter},
		},
	}
}

// Do performs the request through the rate-limited transport.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

// GetJSON performs a GET with optional headers and decodes a JSON body into v.
// Non-2xx statuses are returned as errors with the body discarded.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// HTTP exposes the underlying client for libraries that accept one (gofeed).
// It shares the rate-limited transport, so those requests stay polite too.
func (c *Client) HTTP() *http.Client {
	return c.http
}
