package judgment

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

	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/rulelogic"
	"mercator-hq/minerva/pkg/ruleset"
	"mercator-hq/minerva/pkg/telemetry/tracing"

	"github.com/google/uuid"
)

// assessRequest is the case summary posted to the reasoning service.
type assessRequest struct {
	CaseID  string            `json:"case_id"`
	RuleSet assessRuleSet     `json:"ruleset"`
	Facts   rulelogic.FactSet `json:"facts"`

	// Model optionally pins the reasoning model.
	Model string `json:"model,omitempty"`
}

// assessRuleSet describes the published requirements the judgment should
// reason against. Expressions are deliberately omitted: the service reasons
// over the prose, not the rule logic, so the two verdicts stay independent.
type assessRuleSet struct {
	ID           string              `json:"id"`
	Version      string              `json:"version,omitempty"`
	Jurisdiction string              `json:"jurisdiction,omitempty"`
	Title        string              `json:"title,omitempty"`
	Requirements []assessRequirement `json:"requirements"`
}

type assessRequirement struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Mandatory   bool   `json:"mandatory"`
}

// assessResponse is the reasoning service's reply.
type assessResponse struct {
	Assessment string `json:"assessment"`
	Model      string `json:"model,omitempty"`
}

// Config contains configuration for the reasoning service client.
type Config struct {
	// BaseURL is the reasoning service endpoint. Required.
	BaseURL string

	// APIKey authenticates calls to the reasoning service. Optional.
	APIKey string

	// Model optionally pins the reasoning model to request.
	Model string

	// Timeout is the maximum duration for one HTTP request.
	// Default: 15 seconds
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first request
	// fails transiently.
	MaxRetries int

	// RetryBackoff is the initial backoff between retries; it doubles per
	// attempt.
	// Default: 500ms
	RetryBackoff time.Duration
}

// HTTPAssessor calls the reasoning service over HTTP and normalizes its
// narrative verdicts. It implements Assessor.
type HTTPAssessor struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewHTTPAssessor creates a reasoning service client.
func NewHTTPAssessor(config Config, logger *slog.Logger) (*HTTPAssessor, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("judgment assessor: base URL is required")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
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

	return &HTTPAssessor{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: logger.With("component", "judgment.assessor"),
	}, nil
}

// Assess posts the case summary and normalizes the narrative verdict.
//
// Network errors and 5xx responses are retried with exponential backoff up
// to MaxRetries; 4xx responses are terminal. A well-formed reply whose
// narrative yields no recognizable tier returns (nil, nil): the narrative
// is logged and discarded rather than guessed at.
func (a *HTTPAssessor) Assess(ctx context.Context, caseID string, facts rulelogic.FactSet, rs *ruleset.RuleSet) (*reconcile.AIJudgment, error) {
	if caseID == "" {
		return nil, fmt.Errorf("assessment request requires a case ID")
	}
	if rs == nil {
		return nil, fmt.Errorf("assessment request requires a rule set")
	}

	payload := assessRequest{
		CaseID: caseID,
		RuleSet: assessRuleSet{
			ID:           rs.ID,
			Version:      rs.Version,
			Jurisdiction: rs.Jurisdiction,
			Title:        rs.Title,
			Requirements: make([]assessRequirement, 0, len(rs.Requirements)),
		},
		Facts: facts,
		Model: a.config.Model,
	}
	for _, req := range rs.Requirements {
		payload.RuleSet.Requirements = append(payload.RuleSet.Requirements, assessRequirement{
			Code:        req.Code,
			Description: req.Description,
			Mandatory:   req.Mandatory,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("marshal assessment request: %w", err)
	}
	body := buf.Bytes()

	url := a.config.BaseURL + "/assessments"
	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := a.config.RetryBackoff * time.Duration(1<<(attempt-1))
			a.logger.Debug("retrying assessment",
				"case_id", caseID,
				"attempt", attempt,
				"max_retries", a.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build assessment request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Request-Id", requestID)
		if a.config.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
		}
		tracing.Inject(ctx, httpReq.Header)

		resp, err := a.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &ServiceError{Message: "request failed", Cause: err}
			a.logger.Warn("assessment request failed, will retry",
				"case_id", caseID,
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
			return a.parseJudgment(caseID, respBody)

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, &AuthError{Message: string(respBody)}

		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &RateLimitError{
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(respBody),
			}

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, &ServiceError{StatusCode: resp.StatusCode, Message: string(respBody)}

		default:
			lastErr = &ServiceError{StatusCode: resp.StatusCode, Message: string(respBody)}
			a.logger.Warn("reasoning service returned error status, will retry",
				"case_id", caseID,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	return nil, lastErr
}

// parseJudgment decodes a successful reply and normalizes the verdict.
func (a *HTTPAssessor) parseJudgment(caseID string, respBody []byte) (*reconcile.AIJudgment, error) {
	var out assessResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ParseError{RawResponse: string(respBody), Cause: err}
	}
	if out.Assessment == "" {
		return nil, &ParseError{RawResponse: string(respBody), Cause: errors.New("response missing assessment")}
	}

	model := out.Model
	if model == "" {
		model = a.config.Model
	}

	outcome, ok := Normalize(out.Assessment)
	if !ok {
		a.logger.Warn("assessment verdict unrecognized, discarding judgment",
			"case_id", caseID,
			"model", model,
			"narrative_head", head(out.Assessment, 120),
		)
		return nil, nil
	}

	return &reconcile.AIJudgment{
		Outcome:   outcome,
		Narrative: out.Assessment,
		Model:     model,
	}, nil
}

// head returns at most n bytes of s, cut at a rune boundary.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
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
