package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Rule-set defaults
	DefaultRuleSetMode     = "file"
	DefaultRuleSetPath     = "./rulesets"
	DefaultWatchDebounce   = 100 * time.Millisecond
	DefaultGitBranch       = "main"
	DefaultGitDepth        = 1
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitPollTimeout  = 10 * time.Second
	DefaultGitAuthType     = "none"

	// Store defaults
	DefaultFactsBackend        = "memory"
	DefaultFactsSQLitePath     = "data/facts.db"
	DefaultDecisionsBackend    = "sqlite"
	DefaultDecisionsSQLitePath = "data/decisions.db"
	DefaultSQLiteMaxOpenConns  = 10
	DefaultSQLiteMaxIdleConns  = 5
	DefaultSQLiteWALMode       = true
	DefaultSQLiteBusyTimeout   = 5 * time.Second

	// Judgment defaults
	DefaultJudgmentTimeout      = 15 * time.Second
	DefaultJudgmentMaxRetries   = 2
	DefaultJudgmentRetryBackoff = 500 * time.Millisecond

	// Review defaults
	DefaultReviewTimeout      = 10 * time.Second
	DefaultReviewMaxRetries   = 3
	DefaultReviewRetryBackoff = 500 * time.Millisecond
	DefaultReviewQueueSize    = 128
	DefaultReviewWorkers      = 2
	DefaultReviewStopTimeout  = 5 * time.Second

	// Retention defaults
	DefaultRetentionDays      = 365
	DefaultRetentionSchedule  = "0 4 * * *"
	DefaultRetentionBatchSize = 500

	// Eligibility defaults
	DefaultUnlikelyFailureFraction = 0.5
	DefaultParallelism             = 1

	// Reconciliation defaults
	DefaultLowConfidenceThreshold = 0.7

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPII   = true
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "minerva"
	DefaultMetricsSubsystem   = "engine"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingInsecure    = true
	DefaultTracingServiceName = "minerva"
)

// DefaultConfig returns a configuration with every field set to its default.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values. This function is idempotent and safe
// to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Rule-set defaults
	if cfg.RuleSets.Mode == "" {
		cfg.RuleSets.Mode = DefaultRuleSetMode
	}
	if cfg.RuleSets.Path == "" {
		cfg.RuleSets.Path = DefaultRuleSetPath
	}
	if cfg.RuleSets.WatchDebounce == 0 {
		cfg.RuleSets.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.RuleSets.Git.Branch == "" {
		cfg.RuleSets.Git.Branch = DefaultGitBranch
	}
	if cfg.RuleSets.Git.LocalPath == "" {
		cfg.RuleSets.Git.LocalPath = filepath.Join(os.TempDir(), "minerva-rulesets")
	}
	if cfg.RuleSets.Git.Depth == 0 {
		cfg.RuleSets.Git.Depth = DefaultGitDepth
	}
	if cfg.RuleSets.Git.PollInterval == 0 {
		cfg.RuleSets.Git.PollInterval = DefaultGitPollInterval
	}
	if cfg.RuleSets.Git.PollTimeout == 0 {
		cfg.RuleSets.Git.PollTimeout = DefaultGitPollTimeout
	}
	if cfg.RuleSets.Git.Auth.Type == "" {
		cfg.RuleSets.Git.Auth.Type = DefaultGitAuthType
	}

	// Facts defaults
	if cfg.Facts.Backend == "" {
		cfg.Facts.Backend = DefaultFactsBackend
	}
	if cfg.Facts.SQLite.Path == "" {
		cfg.Facts.SQLite.Path = DefaultFactsSQLitePath
	}
	applySQLiteDefaults(&cfg.Facts.SQLite)

	// Judgment defaults
	if cfg.Judgment.Timeout == 0 {
		cfg.Judgment.Timeout = DefaultJudgmentTimeout
	}
	if cfg.Judgment.MaxRetries == 0 {
		cfg.Judgment.MaxRetries = DefaultJudgmentMaxRetries
	}
	if cfg.Judgment.RetryBackoff == 0 {
		cfg.Judgment.RetryBackoff = DefaultJudgmentRetryBackoff
	}

	// Review defaults
	if cfg.Review.Timeout == 0 {
		cfg.Review.Timeout = DefaultReviewTimeout
	}
	if cfg.Review.MaxRetries == 0 {
		cfg.Review.MaxRetries = DefaultReviewMaxRetries
	}
	if cfg.Review.RetryBackoff == 0 {
		cfg.Review.RetryBackoff = DefaultReviewRetryBackoff
	}
	if cfg.Review.QueueSize == 0 {
		cfg.Review.QueueSize = DefaultReviewQueueSize
	}
	if cfg.Review.Workers == 0 {
		cfg.Review.Workers = DefaultReviewWorkers
	}
	if cfg.Review.StopTimeout == 0 {
		cfg.Review.StopTimeout = DefaultReviewStopTimeout
	}

	// Decisions defaults
	if cfg.Decisions.Backend == "" {
		cfg.Decisions.Backend = DefaultDecisionsBackend
	}
	if cfg.Decisions.SQLite.Path == "" {
		cfg.Decisions.SQLite.Path = DefaultDecisionsSQLitePath
	}
	applySQLiteDefaults(&cfg.Decisions.SQLite)
	if cfg.Decisions.Retention.Days == 0 {
		cfg.Decisions.Retention.Days = DefaultRetentionDays
	}
	if cfg.Decisions.Retention.PruneSchedule == "" {
		cfg.Decisions.Retention.PruneSchedule = DefaultRetentionSchedule
	}
	if cfg.Decisions.Retention.BatchSize == 0 {
		cfg.Decisions.Retention.BatchSize = DefaultRetentionBatchSize
	}

	// Eligibility defaults
	if cfg.Eligibility.UnlikelyFailureFraction == 0 {
		cfg.Eligibility.UnlikelyFailureFraction = DefaultUnlikelyFailureFraction
	}
	if cfg.Eligibility.Parallelism == 0 {
		cfg.Eligibility.Parallelism = DefaultParallelism
	}

	// Reconciliation defaults
	if cfg.Reconciliation.LowConfidenceThreshold == 0 {
		cfg.Reconciliation.LowConfidenceThreshold = DefaultLowConfidenceThreshold
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if !cfg.Telemetry.Logging.RedactPII {
		cfg.Telemetry.Logging.RedactPII = DefaultLoggingRedactPII
	}
	if !cfg.Telemetry.Metrics.Enabled {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if !cfg.Telemetry.Tracing.Insecure {
		cfg.Telemetry.Tracing.Insecure = DefaultTracingInsecure
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}

func applySQLiteDefaults(cfg *SQLiteConfig) {
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if !cfg.WALMode {
		cfg.WALMode = DefaultSQLiteWALMode
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultSQLiteBusyTimeout
	}
}
