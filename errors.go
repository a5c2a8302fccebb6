package parley

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrAuth indicates a missing, placeholder, or rejected API credential.
	ErrAuth = errors.New("missing or invalid API credential")

	// ErrUnsupportedInput indicates the request carries input the selected
	// provider cannot accept (e.g. a file attachment).
	ErrUnsupportedInput = errors.New("input not supported by this provider")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
)

// RateLimitError indicates the backend signalled temporary unavailability.
// RetryAfter is zero when the backend gave no hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
	}
	return "rate limited"
}
