// Package logging provides structured logging with applicant PII redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Automatic redaction of applicant PII (passport numbers, emails)
//   - Context-aware logging with case, rule set, and request identifiers
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//	if err != nil {
//	    // handle error
//	}
//
//	// Components take the plain *slog.Logger; the handler chain carries
//	// redaction and context injection with it.
//	slogger := logger.Slog()
//	slogger.Info("facts fetched",
//	    "case_id", "case-7731",
//	    "passport", "X1234567", // masked
//	)
//
//	// Context identifiers are attached automatically on *Context calls.
//	ctx := logging.WithCaseID(context.Background(), "case-7731")
//	slogger.InfoContext(ctx, "evaluation started") // includes case_id
//
// # PII Redaction
//
// When RedactPII is enabled, string values are pattern-scanned and
// values under sensitive keys are masked entirely:
//
//   - Passport numbers: X1234567 → X*******
//   - Emails: user@example.com → u***@example.com
//   - Keys containing passport, email, national_id, date_of_birth,
//     birth_date, or phone → ***
package logging
