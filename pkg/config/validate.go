package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidConfig indicates a configuration that failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every validation error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a *ValidationError; it returns nil if
// the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRuleSets(&cfg.RuleSets)...)
	errs = append(errs, validateFacts(&cfg.Facts)...)
	errs = append(errs, validateJudgment(&cfg.Judgment)...)
	errs = append(errs, validateReview(&cfg.Review)...)
	errs = append(errs, validateDecisions(&cfg.Decisions)...)
	errs = append(errs, validateEligibility(&cfg.Eligibility)...)
	errs = append(errs, validateReconciliation(&cfg.Reconciliation)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must not be negative",
		})
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must not be negative",
		})
	}
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.cert_file",
				Message: "certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
	}

	return errs
}

func validateRuleSets(cfg *RuleSetsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case "file":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "rulesets.path",
				Message: "path is required in file mode",
			})
		}
	case "git":
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{
				Field:   "rulesets.git.repository",
				Message: "repository URL is required in git mode",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "rulesets.mode",
			Message: fmt.Sprintf("unknown mode %q (want \"file\" or \"git\")", cfg.Mode),
		})
	}

	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{
			Field:   "rulesets.watch_debounce",
			Message: "watch debounce must not be negative",
		})
	}
	if cfg.Git.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "rulesets.git.depth",
			Message: "clone depth must not be negative",
		})
	}

	switch cfg.Git.Auth.Type {
	case "", "none":
	case "token":
		if cfg.Git.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "rulesets.git.auth.token",
				Message: "token is required for token authentication",
			})
		}
	case "ssh":
		if cfg.Git.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "rulesets.git.auth.ssh_key_path",
				Message: "SSH key path is required for ssh authentication",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "rulesets.git.auth.type",
			Message: fmt.Sprintf("unknown auth type %q (want \"token\", \"ssh\" or \"none\")", cfg.Git.Auth.Type),
		})
	}

	return errs
}

func validateFacts(cfg *FactsConfig) []FieldError {
	return validateStoreBackend("facts", cfg.Backend, &cfg.SQLite)
}

func validateDecisions(cfg *DecisionsConfig) []FieldError {
	errs := validateStoreBackend("decisions", cfg.Backend, &cfg.SQLite)

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "decisions.retention.days",
			Message: "retention days must not be negative",
		})
	}
	if cfg.Retention.BatchSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "decisions.retention.batch_size",
			Message: "batch size must be positive",
		})
	}
	if cfg.Retention.Days > 0 && cfg.Retention.PruneSchedule == "" {
		errs = append(errs, FieldError{
			Field:   "decisions.retention.prune_schedule",
			Message: "prune schedule is required when retention days is set",
		})
	}

	return errs
}

func validateStoreBackend(section, backend string, sqlite *SQLiteConfig) []FieldError {
	var errs []FieldError

	switch backend {
	case "memory":
	case "sqlite":
		if sqlite.Path == "" {
			errs = append(errs, FieldError{
				Field:   section + ".sqlite.path",
				Message: "database path is required for the sqlite backend",
			})
		}
		if sqlite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   section + ".sqlite.busy_timeout",
				Message: "busy timeout must not be negative",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   section + ".backend",
			Message: fmt.Sprintf("unknown backend %q (want \"memory\" or \"sqlite\")", backend),
		})
	}

	return errs
}

func validateJudgment(cfg *JudgmentConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled {
		errs = append(errs, validateBaseURL("judgment.base_url", cfg.BaseURL)...)
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "judgment.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "judgment.max_retries",
			Message: "max retries must not be negative",
		})
	}

	return errs
}

func validateReview(cfg *ReviewConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled {
		errs = append(errs, validateBaseURL("review.base_url", cfg.BaseURL)...)
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "review.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.QueueSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "review.queue_size",
			Message: "queue size must be positive",
		})
	}
	if cfg.Workers <= 0 {
		errs = append(errs, FieldError{
			Field:   "review.workers",
			Message: "worker count must be positive",
		})
	}

	return errs
}

func validateBaseURL(field, raw string) []FieldError {
	if raw == "" {
		return []FieldError{{Field: field, Message: "base URL is required when enabled"}}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []FieldError{{Field: field, Message: fmt.Sprintf("invalid base URL %q", raw)}}
	}
	return nil
}

func validateEligibility(cfg *EligibilityConfig) []FieldError {
	var errs []FieldError

	if cfg.UnlikelyFailureFraction <= 0 || cfg.UnlikelyFailureFraction > 1 {
		errs = append(errs, FieldError{
			Field:   "eligibility.unlikely_failure_fraction",
			Message: "unlikely failure fraction must be in (0, 1]",
		})
	}
	if cfg.Parallelism < 1 {
		errs = append(errs, FieldError{
			Field:   "eligibility.parallelism",
			Message: "parallelism must be at least 1",
		})
	}

	return errs
}

func validateReconciliation(cfg *ReconciliationConfig) []FieldError {
	if cfg.LowConfidenceThreshold < 0 || cfg.LowConfidenceThreshold > 1 {
		return []FieldError{{
			Field:   "reconciliation.low_confidence_threshold",
			Message: "low confidence threshold must be in [0, 1]",
		}}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (want json or text)", cfg.Logging.Format),
		})
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("unknown sampler %q (want always, never or ratio)", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be in [0, 1]",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}
