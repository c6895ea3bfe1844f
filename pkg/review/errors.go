package review

import (
	"errors"
	"fmt"
	"time"
)

// ErrQueueFull reports that an escalation was dropped because the queue was
// at capacity.
var ErrQueueFull = errors.New("escalation queue full")

// ErrStopped reports that an escalation was rejected because the escalator
// is shutting down.
var ErrStopped = errors.New("escalator stopped")

// ServiceError represents an error returned by the review service.
type ServiceError struct {
	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("review service error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("review service error: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure (HTTP 401 or 403).
// Authentication failures are terminal: retrying with the same credentials
// cannot succeed.
type AuthError struct {
	// Message is the error message from the service
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("review service authentication failed: %s", e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
// It includes the retry-after duration if provided by the service.
type RateLimitError struct {
	// RetryAfter is the duration to wait before retrying (if provided)
	RetryAfter time.Duration

	// Message is the error message from the service
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("review service rate limit exceeded (retry after %s): %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("review service rate limit exceeded: %s", e.Message)
}

// ParseError represents a response parsing failure.
type ParseError struct {
	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("review service response parse error: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
