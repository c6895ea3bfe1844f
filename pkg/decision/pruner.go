package decision

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PrunerConfig contains configuration for the retention pruner.
type PrunerConfig struct {
	// RetentionDays is the number of days to retain decision records.
	// 0 means keep records forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 4 * * *" (daily at 4 AM)
	PruneSchedule string

	// BatchSize is the maximum number of records deleted per batch, so a
	// large backlog cannot hold the write lock for the whole sweep.
	BatchSize int
}

// DefaultPrunerConfig returns the default retention configuration.
func DefaultPrunerConfig() *PrunerConfig {
	return &PrunerConfig{
		RetentionDays: 365,
		PruneSchedule: "0 4 * * *",
		BatchSize:     500,
	}
}

// Pruner enforces the retention policy on decision records.
type Pruner struct {
	storage   Storage
	config    *PrunerConfig
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner. A nil config uses defaults.
func NewPruner(storage Storage, config *PrunerConfig, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultPrunerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "decision.retention"),
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes decision records older than the retention period. Returns
// the number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff, p.config.BatchSize)
	if err != nil {
		return deleted, fmt.Errorf("prune decisions older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		p.logger.Info("pruned decision records",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
			"cutoff_time", cutoff,
		)
	} else {
		p.logger.Debug("no decision records pruned",
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
