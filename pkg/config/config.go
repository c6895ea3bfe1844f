package config

import "time"

// Config is the root configuration structure for Minerva. It contains one
// section per subsystem: the HTTP server, rule-set loading, the fact store,
// the AI judgment client, the human-review client, decision storage,
// eligibility aggregation, reconciliation, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and TLS settings.
	Server ServerConfig `yaml:"server"`

	// RuleSets contains configuration for rule-set loading: the source mode
	// (file or git), paths, hot reload, and git repository settings.
	RuleSets RuleSetsConfig `yaml:"rulesets"`

	// Facts contains configuration for the case fact store.
	Facts FactsConfig `yaml:"facts"`

	// Judgment contains configuration for the AI reasoning subsystem client.
	Judgment JudgmentConfig `yaml:"judgment"`

	// Review contains configuration for the human-review subsystem client
	// and the asynchronous escalation queue.
	Review ReviewConfig `yaml:"review"`

	// Decisions contains configuration for decision storage and retention.
	Decisions DecisionsConfig `yaml:"decisions"`

	// Eligibility contains tuning for requirement aggregation.
	Eligibility EligibilityConfig `yaml:"eligibility"`

	// Reconciliation contains tuning for decision reconciliation.
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// RequestTimeout bounds the handling of a single evaluation request,
	// including collaborator calls.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// TLS contains optional TLS settings for the listener.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS settings for the HTTP listener.
type TLSConfig struct {
	// Enabled controls whether the server listens with TLS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM certificate.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM private key.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`
}

// RuleSetsConfig contains configuration for rule-set loading.
type RuleSetsConfig struct {
	// Mode specifies how rule sets are loaded.
	// Options: "file" (local directory or file), "git" (git repository)
	// Default: "file"
	Mode string `yaml:"mode"`

	// Path is the rule-set file or directory when Mode is "file".
	// Default: "./rulesets"
	Path string `yaml:"path"`

	// Watch enables automatic reloading when rule-set files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period required after the last file event
	// before a reload fires.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Git contains git repository configuration, used when Mode is "git".
	Git GitConfig `yaml:"git"`
}

// GitConfig configures git-based rule-set loading.
type GitConfig struct {
	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/homeoffice/rulesets.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to the rule-set documents.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// LocalPath is where the repository is cloned.
	// Default: a "minerva-rulesets" directory under the system temp directory
	LocalPath string `yaml:"local_path"`

	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// CleanOnStart removes the local clone before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`

	// PollInterval between upstream change checks. 0 disables polling;
	// rule sets are then loaded once at startup.
	// Default: 30s
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollTimeout bounds a single fetch/pull operation.
	// Default: 10s
	PollTimeout time.Duration `yaml:"poll_timeout"`

	// Auth configures git authentication.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig configures git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// - "token": HTTPS with personal access token
	// - "ssh": SSH with public key
	// - "none": public repositories
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication.
	// This should typically be loaded from an environment variable.
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	// Optional, leave empty if the key is not encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// FactsConfig contains configuration for the case fact store.
type FactsConfig struct {
	// Backend specifies the fact-store backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite database configuration, shared by the fact
// store and decision storage sections.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// JudgmentConfig contains configuration for the AI reasoning subsystem
// client. When disabled, evaluations proceed on the rule outcome alone.
type JudgmentConfig struct {
	// Enabled controls whether the AI assessor is consulted.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// BaseURL is the reasoning service endpoint.
	// Example: "https://reasoning.internal/v1"
	// Required when Enabled is true.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates calls to the reasoning service.
	// This should typically be loaded from an environment variable.
	APIKey string `yaml:"api_key"`

	// Model optionally pins the reasoning model to use.
	Model string `yaml:"model"`

	// Timeout is the maximum duration for one assessment call.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts for transient
	// failures.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff between retries; it doubles per
	// attempt.
	// Default: 500ms
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// ReviewConfig contains configuration for the human-review subsystem client
// and the asynchronous escalation queue.
type ReviewConfig struct {
	// Enabled controls whether review escalations are sent. Decisions still
	// record RequiresHumanReview when disabled.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// BaseURL is the review service endpoint.
	// Required when Enabled is true.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates calls to the review service.
	// This should typically be loaded from an environment variable.
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration for one review-creation call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts for transient
	// failures.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff between retries; it doubles per
	// attempt.
	// Default: 500ms
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// QueueSize is the escalation queue capacity. When full, escalations are
	// dropped with a warning rather than blocking evaluations.
	// Default: 128
	QueueSize int `yaml:"queue_size"`

	// Workers is the number of goroutines draining the escalation queue.
	// Default: 2
	Workers int `yaml:"workers"`

	// StopTimeout bounds the drain of in-flight escalations on shutdown.
	// Default: 5s
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

// DecisionsConfig contains configuration for decision storage and retention.
type DecisionsConfig struct {
	// Backend specifies the decision-storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains decision retention configuration.
type RetentionConfig struct {
	// Days is the number of days to retain decision records. Records older
	// than this are eligible for pruning. 0 keeps decisions forever.
	// Default: 365
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 4 * * *" (daily at 4 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// BatchSize is the maximum number of records deleted per pruning pass.
	// Default: 500
	BatchSize int `yaml:"batch_size"`
}

// EligibilityConfig contains tuning for requirement aggregation.
type EligibilityConfig struct {
	// UnlikelyFailureFraction is the fraction of failed mandatory
	// requirements at or above which the outcome tiers down to Unlikely.
	// Must be in (0, 1].
	// Default: 0.5
	UnlikelyFailureFraction float64 `yaml:"unlikely_failure_fraction"`

	// Parallelism is the number of requirements evaluated concurrently.
	// Default: 1
	Parallelism int `yaml:"parallelism"`
}

// ReconciliationConfig contains tuning for decision reconciliation.
type ReconciliationConfig struct {
	// LowConfidenceThreshold is the rule-confidence below which decisions
	// are flagged for human review. Must be in [0, 1].
	// Default: 0.7
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic redaction of applicant identifiers
	// (passport numbers, email addresses) in log output.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "minerva"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP/gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// ServiceName is the service name attached to spans.
	// Default: "minerva"
	ServiceName string `yaml:"service_name"`
}
