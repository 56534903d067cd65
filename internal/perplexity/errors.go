package perplexity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distinct gateway failure classes. Callers branch
// with errors.Is; every Complete failure matches exactly one of these (or is
// an *APIError for unclassified statuses).
var (
	// ErrNotConfigured is returned when no API key is set. No network
	// attempt is made; the condition is permanent until reconfigured.
	ErrNotConfigured = errors.New("perplexity: API key not configured")

	// ErrUnauthorized is returned on HTTP 401 (invalid API key).
	ErrUnauthorized = errors.New("perplexity: unauthorized")

	// ErrRateLimited is returned on HTTP 429.
	ErrRateLimited = errors.New("perplexity: rate limited")

	// ErrServer is returned on HTTP 5xx.
	ErrServer = errors.New("perplexity: server error")
)

// APIError is a non-200 response from the API, carrying the status and body.
// For 401/429/5xx it unwraps to the corresponding sentinel.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("perplexity: API error %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 401:
		return ErrUnauthorized
	case e.StatusCode == 429:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrServer
	}
	return nil
}

// TransportError is a network-level failure (dial, reset, timeout) before a
// response could be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("perplexity: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is a structurally unexpected body on an HTTP 200 response.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("perplexity: unexpected response: %s", e.Reason)
}
