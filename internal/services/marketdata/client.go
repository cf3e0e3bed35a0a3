package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ShortBasket/internal/service/ratelimit"
	xhttp "ShortBasket/pkg/http"
)

// Client talks to the external market data backend over HTTP. It is the
// only place upstream JSON envelopes are decoded and the only source of
// ErrUpstreamUnavailable / ErrUpstreamDataError.
type Client struct {
	baseURL  string
	http     *xhttp.Client
	attempts int
	limiter  *ratelimit.Limiter
	rateCap  float64
	rateFill float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithRetry sets the number of attempts for transient failures.
func WithRetry(attempts int) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithRateLimit throttles outbound calls per endpoint kind.
func WithRateLimit(capacity, refillPerSec float64) ClientOption {
	return func(c *Client) {
		if capacity > 0 && refillPerSec > 0 {
			c.limiter = ratelimit.New()
			c.rateCap = capacity
			c.rateFill = refillPerSec
		}
	}
}

// NewClient builds a provider client with timeout and base URL.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:  baseURL,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		attempts: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the provider's standard JSON response wrapper.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Timestamp string          `json:"timestamp"`
}

// getJSON performs one GET against path, unwraps the envelope, and decodes
// the data field into dest.
func (c *Client) getJSON(ctx context.Context, kind, path string, query map[string][]string, dest interface{}) error {
	if c.limiter != nil && !c.limiter.Allow(kind, c.rateCap, c.rateFill) {
		return fmt.Errorf("%w: %s rate limited locally", ErrUpstreamUnavailable, kind)
	}

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: query,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", ErrUpstreamDataError, err)
	}
	if !env.Success {
		return fmt.Errorf("%w: %s", ErrUpstreamDataError, env.Error)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: empty data field", ErrUpstreamDataError)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrUpstreamDataError, err)
	}
	return nil
}

// getJSONWithRetry retries transient (unavailable) failures with a short
// linear backoff. Data errors are not retried.
func (c *Client) getJSONWithRetry(ctx context.Context, kind, path string, query map[string][]string, dest interface{}) error {
	var err error
	for i := 1; i <= c.attempts; i++ {
		err = c.getJSON(ctx, kind, path, query, dest)
		if err == nil || !isTransient(err) || i == c.attempts {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 100 * time.Millisecond):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
		}
	}
	return err
}

func isTransient(err error) bool {
	return err != nil && !isDataError(err)
}
