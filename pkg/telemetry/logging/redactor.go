package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks applicant PII in log output. Eligibility facts carry
// identifiers such as passport numbers and email addresses; those must
// never reach log sinks verbatim.
type Redactor struct {
	patterns map[string]*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in PII pattern names.
const (
	PatternPassport = "passport"
	PatternEmail    = "email"
)

// NewRedactor creates a Redactor with the built-in applicant PII patterns.
func NewRedactor() *Redactor {
	r := &Redactor{patterns: make(map[string]*redactPattern)}

	patterns := map[string]struct {
		regex       string
		replacement string
	}{
		// Passport numbers: one or two letters followed by 6-9 digits.
		PatternPassport: {
			regex:       `\b([A-Z]{1,2})[0-9]{6,9}\b`,
			replacement: "$1*******",
		},

		// Email addresses: keep first character and domain.
		PatternEmail: {
			regex:       `\b([A-Za-z0-9])[A-Za-z0-9._%+-]*@([A-Za-z0-9.-]+\.[A-Za-z]{2,})\b`,
			replacement: "$1***@$2",
		},
	}

	for name, p := range patterns {
		r.patterns[name] = &redactPattern{
			name:        name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		}
	}

	return r
}

// RedactString redacts applicant PII from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// RedactAttr redacts a single slog attribute. Values under sensitive
// key names are masked entirely; other string values are pattern-scanned.
func (r *Redactor) RedactAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()

	if r.isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, "***")
	}

	switch attr.Value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, r.RedactString(attr.Value.String()))
	case slog.KindGroup:
		members := attr.Value.Group()
		redacted := make([]any, 0, len(members))
		for _, member := range members {
			redacted = append(redacted, r.RedactAttr(member))
		}
		return slog.Group(attr.Key, redacted...)
	default:
		return attr
	}
}

// isSensitiveKey checks if a key name indicates applicant PII.
func (r *Redactor) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"passport",
		"email",
		"national_id",
		"date_of_birth",
		"birth_date",
		"phone",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}

	return false
}

// MaskPassport masks a passport number, keeping the letter prefix.
func MaskPassport(passport string) string {
	if passport == "" {
		return passport
	}

	i := 0
	for i < len(passport) && passport[i] >= 'A' && passport[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(passport) {
		return "***"
	}

	return passport[:i] + "*******"
}

// MaskEmail masks an email address, keeping the first character and domain.
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	username := parts[0]
	domain := parts[1]

	if len(username) == 0 {
		return "***@" + domain
	}

	return string(username[0]) + "***@" + domain
}

// redactHandler rewrites records through a Redactor before they reach
// the formatting handler.
type redactHandler struct {
	next     slog.Handler
	redactor *Redactor
}

func newRedactHandler(next slog.Handler, redactor *Redactor) *redactHandler {
	return &redactHandler{next: next, redactor: redactor}
}

func (h *redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.RedactString(rec.Message), rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(h.redactor.RedactAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		redacted = append(redacted, h.redactor.RedactAttr(attr))
	}
	return &redactHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}
