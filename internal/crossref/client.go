// Package crossref is a rate-limited client for the Crossref works API that
// resolves free-text titles to canonical metadata records.
package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/odbtw/oceanpub/internal/citation"
)

const (
	// BaseURL is the Crossref works API endpoint.
	BaseURL = "https://api.crossref.org/works"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is 1 request per second, the polite ceiling for
	// anonymous Crossref use.
	DefaultRateLimit = 1.0

	// DefaultRows is the number of candidates requested per title query.
	DefaultRows = 5
)

// RetryPolicy bounds retries on transient failures (service busy, network).
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy waits a long fixed delay between attempts; Crossref
// asks busy clients to back off well beyond the normal request spacing.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: 30 * time.Second}

// Client is a rate-limited HTTP client for the Crossref works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	rows       int
	retry      RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMailto sets the contact address sent with each request, which moves
// the client into Crossref's polite pool.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryPolicy sets the transient-failure retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = p
	}
}

// WithRows sets how many candidates each title query requests.
func WithRows(rows int) ClientOption {
	return func(c *Client) {
		c.rows = rows
	}
}

// NewClient creates a new Crossref works API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    BaseURL,
		rows:       DefaultRows,
		retry:      DefaultRetryPolicy,
	}

	// Check for a polite-pool contact address in the environment
	if addr := os.Getenv("CROSSREF_MAILTO"); addr != "" {
		c.mailto = addr
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// searchTitle issues one works query ranked by the service's own relevance.
func (c *Client) searchTitle(ctx context.Context, title string) ([]Work, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("query.title", title)
	q.Set("rows", strconv.Itoa(c.rows))
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.mailto != "" {
		req.Header.Set("User-Agent", "oceanpub/1.0 (mailto:"+c.mailto+")")
	} else {
		req.Header.Set("User-Agent", "oceanpub/1.0")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	var works worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&works); err != nil {
		return nil, fmt.Errorf("%w: parsing works: %v", ErrInvalidResponse, err)
	}

	return works.Message.Items, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// ResolveByTitle queries Crossref for the given title and returns the first
// candidate whose normalized title equals the normalized query exactly.
//
// Outcomes are distinguishable by the caller:
//   - ErrNoMatch: the query succeeded but no candidate matched;
//   - ErrRetriesExhausted: transient failures (busy service, network)
//     persisted through every attempt;
//   - *APIError: a permanent non-success status, returned without retry.
func (c *Client) ResolveByTitle(ctx context.Context, title string) (*Work, error) {
	key := citation.NormalizeKey(title)

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		items, err := c.searchTitle(ctx, title)
		if err != nil {
			if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNetworkError) {
				lastErr = err
				if attempt < c.retry.MaxAttempts {
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(c.retry.Backoff):
					}
				}
				continue
			}
			return nil, err
		}

		for i := range items {
			candidate := items[i].PrimaryTitle()
			if candidate != "" && citation.NormalizeKey(candidate) == key {
				return &items[i], nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, title)
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.retry.MaxAttempts, lastErr)
}
