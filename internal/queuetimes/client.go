package queuetimes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"parkwait-collector/internal/metrics"
	"parkwait-collector/internal/middleware"
)

const (
	DefaultBaseURL     = "https://queue-times.com/en-US/parks"
	DefaultMaxAttempts = 3
	DefaultTimeout     = 30 * time.Second
	userAgent          = "parkwait-collector"
	maxErrorBody       = 1024
)

var (
	// ErrRetriesExhausted is wrapped by FetchPark when every attempt failed
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrDecode marks a 2xx response whose body was not valid JSON
	ErrDecode = errors.New("failed to decode response")
)

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client is a Queue-Times API client
type Client struct {
	httpClient  *http.Client
	baseURL     string
	logger      *slog.Logger
	maxAttempts int
	timeout     time.Duration
	limiter     *rate.Limiter
	sleep       SleepFunc
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMaxAttempts sets the attempt ceiling per fetch (minimum 1)
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n >= 1 {
			c.maxAttempts = n
		}
	}
}

// WithTimeout sets the per-attempt request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit paces outbound requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithSleep replaces the backoff sleeper
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient creates a new Queue-Times API client
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: middleware.NewInstrumentedTransport(metrics.OpFetchPark, nil),
		},
		baseURL:     baseURL,
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
		timeout:     DefaultTimeout,
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Copy so a caller-supplied client is not mutated
	hc := *c.httpClient
	hc.Timeout = c.timeout
	c.httpClient = &hc

	return c
}

// maxBackoffShift keeps 2^attempt seconds within time.Duration
const maxBackoffShift = 30

// Backoff returns the wait before the retry following attempt (0-based):
// 1s, 2s, 4s, ... The exponent is capped at maxBackoffShift.
func Backoff(attempt int) time.Duration {
	attempt = max(0, min(attempt, maxBackoffShift))
	return time.Duration(1<<uint(attempt)) * time.Second
}

// ParkURL returns the queue times endpoint for a park
func (c *Client) ParkURL(parkID int64) string {
	return fmt.Sprintf("%s/%d/queue_times.json", c.baseURL, parkID)
}

// FetchPark fetches the current queue times of a park, retrying transport
// failures, non-2xx responses and undecodable bodies with exponential backoff.
// No wait follows the final attempt.
func (c *Client) FetchPark(ctx context.Context, parkID int64) (*ParkResponse, error) {
	url := c.ParkURL(parkID)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		c.logger.Info("Fetching park data", "park_id", parkID, "attempt", attempt+1)

		resp, err := c.fetchOnce(ctx, url)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err

		kind := classify(err)
		metrics.FetchAttemptFailuresTotal.WithLabelValues(kind).Inc()
		switch kind {
		case metrics.AttemptTimeout:
			c.logger.Warn("Request timed out", "park_id", parkID, "attempt", attempt+1)
		case metrics.AttemptHTTPError:
			c.logger.Error("HTTP error", "park_id", parkID, "attempt", attempt+1, "error", err)
		default:
			c.logger.Error("Request failed", "park_id", parkID, "attempt", attempt+1, "kind", kind, "error", err)
		}

		if attempt < c.maxAttempts-1 {
			wait := Backoff(attempt)
			c.logger.Info("Retrying request", "park_id", parkID, "delay_ms", wait.Milliseconds())
			metrics.FetchRetriesTotal.Inc()
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Error("Failed to fetch park data", "park_id", parkID, "attempts", c.maxAttempts)
	return nil, fmt.Errorf("%w: park %d after %d attempts: %w", ErrRetriesExhausted, parkID, c.maxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) (*ParkResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("queue_times_api_request", "url", url, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload ParkResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return &payload, nil
}

// classify maps a failed attempt to its metrics label
func classify(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return metrics.AttemptHTTPError
	}
	if errors.Is(err, ErrDecode) {
		return metrics.AttemptDecode
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return metrics.AttemptTimeout
	}
	return metrics.AttemptTransport
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
