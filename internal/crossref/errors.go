package crossref

import (
	"errors"
	"fmt"
)

// Common errors returned by the Crossref client.
var (
	// ErrNoMatch indicates the query returned candidates but none matched
	// the normalized title exactly. A confident miss, not a failure.
	ErrNoMatch = errors.New("no exact title match in Crossref")

	// ErrRetriesExhausted indicates transient failures persisted through
	// every retry attempt.
	ErrRetriesExhausted = errors.New("Crossref retries exhausted")

	// ErrRateLimited indicates the service answered busy (503 or 429).
	ErrRateLimited = errors.New("Crossref rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Crossref")

	// ErrInvalidResponse indicates an unexpected API response body.
	ErrInvalidResponse = errors.New("invalid response from Crossref")
)

// APIError represents a permanent, non-retryable error from the Crossref API.
type APIError struct {
	StatusCode int
	Message    string
	Title      string // Query context for title-related errors
}

func (e *APIError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("Crossref API error (status %d): %s (title: %q)", e.StatusCode, e.Message, e.Title)
	}
	return fmt.Sprintf("Crossref API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNoMatch returns true if the error indicates no confident match was found,
// including the case where transient failures exhausted all retries.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch) || errors.Is(err, ErrRetriesExhausted)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode == 503
	}
	return false
}
