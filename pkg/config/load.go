package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path. It
// applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use LoadWithEnvOverrides
// for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention MINERVA_SECTION_FIELD (e.g., MINERVA_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format MINERVA_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	setString(&cfg.Server.ListenAddress, "MINERVA_SERVER_LISTEN_ADDRESS")
	setDuration(&cfg.Server.ReadTimeout, "MINERVA_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "MINERVA_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "MINERVA_SERVER_IDLE_TIMEOUT")
	setDuration(&cfg.Server.RequestTimeout, "MINERVA_SERVER_REQUEST_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "MINERVA_SERVER_SHUTDOWN_TIMEOUT")

	// Rule-set overrides
	setString(&cfg.RuleSets.Mode, "MINERVA_RULESETS_MODE")
	setString(&cfg.RuleSets.Path, "MINERVA_RULESETS_PATH")
	setBool(&cfg.RuleSets.Watch, "MINERVA_RULESETS_WATCH")
	setString(&cfg.RuleSets.Git.Repository, "MINERVA_RULESETS_GIT_REPOSITORY")
	setString(&cfg.RuleSets.Git.Branch, "MINERVA_RULESETS_GIT_BRANCH")
	setString(&cfg.RuleSets.Git.Path, "MINERVA_RULESETS_GIT_PATH")
	setDuration(&cfg.RuleSets.Git.PollInterval, "MINERVA_RULESETS_GIT_POLL_INTERVAL")
	setString(&cfg.RuleSets.Git.Auth.Type, "MINERVA_RULESETS_GIT_AUTH_TYPE")
	setString(&cfg.RuleSets.Git.Auth.Token, "MINERVA_RULESETS_GIT_AUTH_TOKEN")
	setString(&cfg.RuleSets.Git.Auth.SSHKeyPath, "MINERVA_RULESETS_GIT_AUTH_SSH_KEY_PATH")

	// Facts overrides
	setString(&cfg.Facts.Backend, "MINERVA_FACTS_BACKEND")
	setString(&cfg.Facts.SQLite.Path, "MINERVA_FACTS_SQLITE_PATH")

	// Judgment overrides
	setBool(&cfg.Judgment.Enabled, "MINERVA_JUDGMENT_ENABLED")
	setString(&cfg.Judgment.BaseURL, "MINERVA_JUDGMENT_BASE_URL")
	setString(&cfg.Judgment.APIKey, "MINERVA_JUDGMENT_API_KEY")
	setString(&cfg.Judgment.Model, "MINERVA_JUDGMENT_MODEL")
	setDuration(&cfg.Judgment.Timeout, "MINERVA_JUDGMENT_TIMEOUT")
	setInt(&cfg.Judgment.MaxRetries, "MINERVA_JUDGMENT_MAX_RETRIES")

	// Review overrides
	setBool(&cfg.Review.Enabled, "MINERVA_REVIEW_ENABLED")
	setString(&cfg.Review.BaseURL, "MINERVA_REVIEW_BASE_URL")
	setString(&cfg.Review.APIKey, "MINERVA_REVIEW_API_KEY")
	setDuration(&cfg.Review.Timeout, "MINERVA_REVIEW_TIMEOUT")
	setInt(&cfg.Review.QueueSize, "MINERVA_REVIEW_QUEUE_SIZE")
	setInt(&cfg.Review.Workers, "MINERVA_REVIEW_WORKERS")

	// Decisions overrides
	setString(&cfg.Decisions.Backend, "MINERVA_DECISIONS_BACKEND")
	setString(&cfg.Decisions.SQLite.Path, "MINERVA_DECISIONS_SQLITE_PATH")
	setInt(&cfg.Decisions.Retention.Days, "MINERVA_DECISIONS_RETENTION_DAYS")

	// Eligibility overrides
	setFloat(&cfg.Eligibility.UnlikelyFailureFraction, "MINERVA_ELIGIBILITY_UNLIKELY_FAILURE_FRACTION")
	setInt(&cfg.Eligibility.Parallelism, "MINERVA_ELIGIBILITY_PARALLELISM")

	// Reconciliation overrides
	setFloat(&cfg.Reconciliation.LowConfidenceThreshold, "MINERVA_RECONCILIATION_LOW_CONFIDENCE_THRESHOLD")

	// Telemetry overrides
	setString(&cfg.Telemetry.Logging.Level, "MINERVA_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "MINERVA_LOGGING_FORMAT")
	setBool(&cfg.Telemetry.Logging.RedactPII, "MINERVA_LOGGING_REDACT_PII")
	setBool(&cfg.Telemetry.Metrics.Enabled, "MINERVA_METRICS_ENABLED")
	setBool(&cfg.Telemetry.Tracing.Enabled, "MINERVA_TRACING_ENABLED")
	setString(&cfg.Telemetry.Tracing.Endpoint, "MINERVA_TRACING_ENDPOINT")
	setFloat(&cfg.Telemetry.Tracing.SampleRatio, "MINERVA_TRACING_SAMPLE_RATIO")
}

// Invalid values are ignored so a bad override cannot zero a field; the
// re-validation in LoadWithEnvOverrides still catches overrides that break
// cross-field rules.

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setFloat(dst *float64, key string) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
