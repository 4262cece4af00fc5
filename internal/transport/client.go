// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/extbin/extbin/internal/releaseasset"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "extbin/dev"

	// DefaultTimeout bounds a single request round-trip.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of extra attempts after a retryable failure.
	DefaultRetries = 2

	// DefaultBackoff is the delay before the first retry; it doubles on each
	// further attempt.
	DefaultBackoff = 500 * time.Millisecond

	// maxResponseBytes is the upper bound on a response body (10 MB).
	maxResponseBytes = 10 << 20
)

// ErrResponseTooLarge is wrapped by the TransportError returned when a
// response body exceeds the size limit.
var ErrResponseTooLarge = errors.New("response body too large")

type (
	// ReauthenticateFunc returns fresh request headers after the server
	// rejected failed with 401. It is only consulted for requests that set
	// RequestOptions.RetryAuthFailure.
	ReauthenticateFunc func(ctx context.Context, reqURL string, failed http.Header) (http.Header, error)

	// Client performs GitHub API GET requests.
	Client struct {
		httpClient *http.Client
		userAgent  string
		retries    int
		backoff    time.Duration
		reauth     ReauthenticateFunc
	}

	// Option configures a Client during construction.
	Option func(*Client)
)

var _ releaseasset.HTTPClient = (*Client)(nil)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d <= 0 {
			return
		}
		hc := *cl.httpClient
		hc.Timeout = d
		cl.httpClient = &hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithRetries sets how many times a retryable failure is retried.
// Negative values are treated as zero.
func WithRetries(n int) Option {
	return func(cl *Client) {
		cl.retries = max(n, 0)
	}
}

// WithBackoff sets the delay before the first retry.
func WithBackoff(d time.Duration) Option {
	return func(cl *Client) {
		cl.backoff = max(d, 0)
	}
}

// WithReauthenticator sets the function used to refresh credentials after a 401.
func WithReauthenticator(fn ReauthenticateFunc) Option {
	return func(cl *Client) {
		cl.reauth = fn
	}
}

// NewClient creates a Client.
// Defaults: timeout=30s, retries=2, backoff=500ms, userAgent="extbin/dev".
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		retries:    DefaultRetries,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches reqURL. A 2xx response is returned with its body fully read;
// anything else is a *releaseasset.TransportError.
func (c *Client) Get(ctx context.Context, reqURL string, opts releaseasset.RequestOptions) (*releaseasset.Response, error) {
	resp, err := c.getWithRetries(ctx, reqURL, opts.Header)
	if err == nil || !opts.RetryAuthFailure || c.reauth == nil {
		return resp, err
	}

	var transportErr *releaseasset.TransportError
	if !errors.As(err, &transportErr) || transportErr.StatusCode != http.StatusUnauthorized {
		return nil, err
	}

	fresh, reauthErr := c.reauth(ctx, reqURL, opts.Header)
	if reauthErr != nil {
		slog.Debug("reauthentication failed", "url", releaseasset.RedactURL(reqURL), "error", reauthErr)
		return nil, err
	}
	slog.Debug("retrying request with refreshed credentials", "url", releaseasset.RedactURL(reqURL))
	return c.getWithRetries(ctx, reqURL, fresh)
}

// getWithRetries performs the request, retrying server errors and network
// failures with exponential backoff.
func (c *Client) getWithRetries(ctx context.Context, reqURL string, header http.Header) (*releaseasset.Response, error) {
	var lastErr *releaseasset.TransportError
	for attempt := range c.retries + 1 {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<(attempt-1))
			slog.Debug("retrying request", "url", releaseasset.RedactURL(reqURL), "attempt", attempt, "delay", delay, "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return nil, &releaseasset.TransportError{URL: reqURL, Err: err}
			}
		}

		resp, err := c.do(ctx, reqURL, header)
		if err == nil {
			return resp, nil
		}
		if !retryable(ctx, err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// do creates and executes a single request with the GitHub API headers.
func (c *Client) do(ctx context.Context, reqURL string, header http.Header) (*releaseasset.Response, *releaseasset.TransportError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &releaseasset.TransportError{URL: reqURL, Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &releaseasset.TransportError{URL: reqURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &releaseasset.TransportError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}
	if len(body) > maxResponseBytes {
		return nil, &releaseasset.TransportError{StatusCode: resp.StatusCode, URL: reqURL, Err: ErrResponseTooLarge}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &releaseasset.TransportError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			RateLimit:  checkRateLimit(resp.Header),
		}
	}

	return &releaseasset.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// retryable reports whether a failed attempt may succeed when repeated:
// network failures and 5xx responses, unless the caller gave up.
func retryable(ctx context.Context, err *releaseasset.TransportError) bool {
	if ctx.Err() != nil || err.RateLimit != nil {
		return false
	}
	if errors.Is(err, ErrResponseTooLarge) {
		return false
	}
	return err.StatusCode == 0 || err.StatusCode >= http.StatusInternalServerError
}

// checkRateLimit inspects the X-RateLimit-* headers and returns the quota
// details when the remaining quota is zero.
func checkRateLimit(h http.Header) *releaseasset.RateLimit {
	remaining := h.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}

	rem, err := strconv.Atoi(remaining)
	if err != nil || rem > 0 {
		return nil
	}

	limit, _ := strconv.Atoi(h.Get("X-RateLimit-Limit"))                 //nolint:errcheck // Best-effort header parsing.
	resetUnix, _ := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // Best-effort header parsing.

	return &releaseasset.RateLimit{
		Limit:     limit,
		Remaining: 0,
		ResetAt:   time.Unix(resetUnix, 0),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
