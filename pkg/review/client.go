package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateRequest is the payload for creating a human review.
type CreateRequest struct {
	// CaseID identifies the case under review.
	CaseID string `json:"case_id"`

	// ReasoningSummary explains why the case needs review. The review
	// service displays it to the reviewer, so it must never be empty.
	ReasoningSummary string `json:"reasoning_summary"`

	// ConflictDetected reports whether the escalation came from a rule/AI
	// disagreement rather than low confidence.
	ConflictDetected bool `json:"conflict_detected"`
}

// createResponse is the review service's reply.
type createResponse struct {
	ReviewID string `json:"review_id"`
}

// ClientConfig contains configuration for the review service client.
type ClientConfig struct {
	// BaseURL is the review service endpoint. Required.
	BaseURL string

	// APIKey authenticates calls to the review service. Optional.
	APIKey string

	// Timeout is the maximum duration for one HTTP request.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first request
	// fails transiently.
	MaxRetries int

	// RetryBackoff is the initial backoff between retries; it doubles per
	// attempt.
	// Default: 500ms
	RetryBackoff time.Duration
}

// Client calls the external review service over HTTP.
type Client struct {
	config ClientConfig
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a review service client.
func NewClient(config ClientConfig, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("review client: base URL is required")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
		ForceAttemptHTTP2: true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: logger.With("component", "review.client"),
	}, nil
}

// CreateReview posts a create-review request and returns the identifier the
// review service assigned.
//
// Network errors and 5xx responses are retried with exponential backoff up
// to MaxRetries; 4xx responses are terminal. Retries reuse one idempotency
// key so the service can deduplicate them.
func (c *Client) CreateReview(ctx context.Context, req *CreateRequest) (string, error) {
	if req == nil || req.CaseID == "" {
		return "", fmt.Errorf("create-review request requires a case ID")
	}
	if req.ReasoningSummary == "" {
		return "", fmt.Errorf("create-review request requires a reasoning summary")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return "", fmt.Errorf("marshal create-review request: %w", err)
	}
	body := buf.Bytes()

	url := c.config.BaseURL + "/reviews"
	idempotencyKey := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryBackoff * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying review creation",
				"case_id", req.CaseID,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("build create-review request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
		if c.config.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = &ServiceError{Message: "request failed", Cause: err}
			c.logger.Warn("review creation request failed, will retry",
				"case_id", req.CaseID,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = &ServiceError{Message: "reading response failed", Cause: readErr}
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			var out createResponse
			if err := json.Unmarshal(respBody, &out); err != nil {
				return "", &ParseError{RawResponse: string(respBody), Cause: err}
			}
			if out.ReviewID == "" {
				return "", &ParseError{RawResponse: string(respBody), Cause: errors.New("response missing review_id")}
			}
			return out.ReviewID, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return "", &AuthError{Message: string(respBody)}

		case resp.StatusCode == http.StatusTooManyRequests:
			return "", &RateLimitError{
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(respBody),
			}

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return "", &ServiceError{StatusCode: resp.StatusCode, Message: string(respBody)}

		default:
			lastErr = &ServiceError{StatusCode: resp.StatusCode, Message: string(respBody)}
			c.logger.Warn("review service returned error status, will retry",
				"case_id", req.CaseID,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	return "", lastErr
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
