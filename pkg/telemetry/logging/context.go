package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// CaseIDKey is the context key for applicant case identifiers.
	CaseIDKey contextKey = "case_id"

	// RuleSetIDKey is the context key for rule set identifiers.
	RuleSetIDKey contextKey = "ruleset_id"

	// RequestIDKey is the context key for HTTP request identifiers.
	RequestIDKey contextKey = "request_id"
)

// WithCaseID adds a case ID to the context.
func WithCaseID(ctx context.Context, caseID string) context.Context {
	return context.WithValue(ctx, CaseIDKey, caseID)
}

// GetCaseID retrieves the case ID from the context.
func GetCaseID(ctx context.Context) string {
	if caseID, ok := ctx.Value(CaseIDKey).(string); ok {
		return caseID
	}
	return ""
}

// WithRuleSetID adds a rule set ID to the context.
func WithRuleSetID(ctx context.Context, ruleSetID string) context.Context {
	return context.WithValue(ctx, RuleSetIDKey, ruleSetID)
}

// GetRuleSetID retrieves the rule set ID from the context.
func GetRuleSetID(ctx context.Context) string {
	if ruleSetID, ok := ctx.Value(RuleSetIDKey).(string); ok {
		return ruleSetID
	}
	return ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContext collects all identifiers present in the context as slog
// attributes, in a stable order.
func FromContext(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if requestID := GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if caseID := GetCaseID(ctx); caseID != "" {
		attrs = append(attrs, slog.String("case_id", caseID))
	}
	if ruleSetID := GetRuleSetID(ctx); ruleSetID != "" {
		attrs = append(attrs, slog.String("ruleset_id", ruleSetID))
	}
	return attrs
}

// contextHandler injects context identifiers into every record handled
// through a context-aware log call (InfoContext and friends).
type contextHandler struct {
	next slog.Handler
}

func newContextHandler(next slog.Handler) *contextHandler {
	return &contextHandler{next: next}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if attrs := FromContext(ctx); len(attrs) > 0 {
		rec.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}
