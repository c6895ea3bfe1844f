package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/minerva/pkg/cli"
	"mercator-hq/minerva/pkg/config"
	"mercator-hq/minerva/pkg/decision"
	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/facts"
	"mercator-hq/minerva/pkg/judgment"
	"mercator-hq/minerva/pkg/orchestrator"
	"mercator-hq/minerva/pkg/review"
	"mercator-hq/minerva/pkg/ruleset/git"
	"mercator-hq/minerva/pkg/ruleset/source"
	"mercator-hq/minerva/pkg/server"
	"mercator-hq/minerva/pkg/telemetry/logging"
	"mercator-hq/minerva/pkg/telemetry/metrics"
	"mercator-hq/minerva/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	rulesetDir    string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Minerva API server",
	Long: `Start the Minerva API server with the specified configuration.

The server loads rule sets from the configured source, then serves
evaluation requests: each request resolves a rule set, fetches case facts,
aggregates requirement verdicts, reconciles with the AI judgment, records
the decision, and escalates for human review when warranted.

Examples:
  # Start with default config
  minerva run

  # Start with custom config
  minerva run --config /etc/minerva/config.yaml

  # Override listen address
  minerva run --listen 0.0.0.0:8080

  # Serve rule sets from a local directory
  minerva run --ruleset-dir ./rulesets

  # Validate config without starting the server
  minerva run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.rulesetDir, "ruleset-dir", "", "override rule-set directory (forces file mode)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and rule sets without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.rulesetDir != "" {
		cfg.RuleSets.Mode = "file"
		cfg.RuleSets.Path = runFlags.rulesetDir
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	appLogger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		RedactPII: cfg.Telemetry.Logging.RedactPII,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger := appLogger.Slog()
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		if cfg.RuleSets.Mode == "file" {
			src := source.NewFileSource(cfg.RuleSets.Path, logger)
			if err := src.Load(); err != nil {
				return cli.NewCommandError("run", fmt.Errorf("load rule sets from %q: %w", cfg.RuleSets.Path, err))
			}
			fmt.Printf("✓ Rule sets valid (%d rule sets)\n", src.Len())
		}
		return nil
	}

	fmt.Printf("Minerva v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}
	observer := orchestrator.NewMetricsObserver(collector)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	// Rule sets
	ruleSource, err := buildRuleSource(ctx, cfg, collector, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Printf("✓ Rule sets loaded (%d rule sets, %s mode)\n", ruleSource.Len(), cfg.RuleSets.Mode)
	if collector != nil {
		collector.UpdateActiveRuleSets(cfg.RuleSets.Mode, ruleSource.Len())
	}

	// Facts
	var factStore facts.Store
	switch cfg.Facts.Backend {
	case "sqlite":
		sqliteStore, err := facts.NewSQLiteStoreWithConfig(facts.SQLiteStoreConfig{
			Path:         cfg.Facts.SQLite.Path,
			WALMode:      cfg.Facts.SQLite.WALMode,
			BusyTimeout:  cfg.Facts.SQLite.BusyTimeout,
			MaxOpenConns: cfg.Facts.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Facts.SQLite.MaxIdleConns,
		})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("open fact store: %w", err))
		}
		defer sqliteStore.Close()
		factStore = sqliteStore
	case "memory":
		factStore = facts.NewMemoryStore()
	default:
		return cli.NewConfigError("facts.backend", fmt.Sprintf("unsupported backend: %s", cfg.Facts.Backend))
	}
	fmt.Printf("✓ Fact store initialized (%s)\n", cfg.Facts.Backend)

	// Decision storage and retention
	var store decision.Storage
	switch cfg.Decisions.Backend {
	case "sqlite":
		store, err = decision.NewSQLiteStorage(&decision.SQLiteConfig{
			Path:         cfg.Decisions.SQLite.Path,
			MaxOpenConns: cfg.Decisions.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Decisions.SQLite.MaxIdleConns,
			WALMode:      cfg.Decisions.SQLite.WALMode,
			BusyTimeout:  cfg.Decisions.SQLite.BusyTimeout,
		})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("open decision storage: %w", err))
		}
	case "memory":
		store = decision.NewMemoryStorage()
	default:
		return cli.NewConfigError("decisions.backend", fmt.Sprintf("unsupported backend: %s", cfg.Decisions.Backend))
	}
	defer store.Close()

	if cfg.Decisions.Retention.PruneSchedule != "" {
		pruner := decision.NewPruner(store, &decision.PrunerConfig{
			RetentionDays: cfg.Decisions.Retention.Days,
			PruneSchedule: cfg.Decisions.Retention.PruneSchedule,
			BatchSize:     cfg.Decisions.Retention.BatchSize,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
		}
	}
	fmt.Printf("✓ Decision store initialized (%s)\n", cfg.Decisions.Backend)

	// Core evaluation pipeline
	aggregator, err := eligibility.NewAggregator(&eligibility.Config{
		UnlikelyFailureFraction: cfg.Eligibility.UnlikelyFailureFraction,
		Parallelism:             cfg.Eligibility.Parallelism,
	}, logger)
	if err != nil {
		return cli.NewConfigError("eligibility", err.Error())
	}

	policy, err := reconcile.NewPolicy(&reconcile.Config{
		LowConfidenceThreshold: cfg.Reconciliation.LowConfidenceThreshold,
	}, logger)
	if err != nil {
		return cli.NewConfigError("reconciliation", err.Error())
	}

	deps := orchestrator.Deps{
		Resolver:   ruleSource,
		Facts:      factStore,
		Aggregator: aggregator,
		Policy:     policy,
		Sink:       store,
		Tracer:     tracer,
		Logger:     logger,
		Observer:   observer,
	}

	// Collaborators
	if cfg.Judgment.Enabled {
		assessor, err := judgment.NewHTTPAssessor(judgment.Config{
			BaseURL:      cfg.Judgment.BaseURL,
			APIKey:       cfg.Judgment.APIKey,
			Model:        cfg.Judgment.Model,
			Timeout:      cfg.Judgment.Timeout,
			MaxRetries:   cfg.Judgment.MaxRetries,
			RetryBackoff: cfg.Judgment.RetryBackoff,
		}, logger)
		if err != nil {
			return cli.NewConfigError("judgment", err.Error())
		}
		deps.Assessor = assessor
		fmt.Println("✓ AI judgment enabled")
	}

	if cfg.Review.Enabled {
		reviewClient, err := review.NewClient(review.ClientConfig{
			BaseURL:      cfg.Review.BaseURL,
			APIKey:       cfg.Review.APIKey,
			Timeout:      cfg.Review.Timeout,
			MaxRetries:   cfg.Review.MaxRetries,
			RetryBackoff: cfg.Review.RetryBackoff,
		}, logger)
		if err != nil {
			return cli.NewConfigError("review", err.Error())
		}
		escalator, err := review.NewEscalator(reviewClient, store, &review.EscalatorConfig{
			QueueSize:   cfg.Review.QueueSize,
			Workers:     cfg.Review.Workers,
			StopTimeout: cfg.Review.StopTimeout,
		}, logger, observer)
		if err != nil {
			return cli.NewConfigError("review", err.Error())
		}
		defer func() {
			if err := escalator.Stop(); err != nil {
				logger.Warn("escalator drain incomplete", "error", err)
			}
		}()
		deps.Escalator = escalator
		fmt.Println("✓ Human review escalation enabled")
	}

	orch, err := orchestrator.New(deps)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// HTTP server
	opts := server.Options{
		Decisions: store,
		RuleSets:  ruleSource,
		Logger:    logger,
	}
	if collector != nil {
		opts.Metrics = collector.Handler()
		opts.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	srv, err := server.New(&cfg.Server, orch, opts)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			"address", cfg.Server.ListenAddress,
			"tls_enabled", cfg.Server.TLS.Enabled,
		)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// buildRuleSource loads rule sets per the configured mode and starts the
// background refresh (file watcher or git polling) when configured.
func buildRuleSource(ctx context.Context, cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (*source.FileSource, error) {
	switch cfg.RuleSets.Mode {
	case "file":
		src := source.NewFileSource(cfg.RuleSets.Path, logger)
		if err := src.Load(); err != nil {
			return nil, fmt.Errorf("load rule sets from %q: %w", cfg.RuleSets.Path, err)
		}
		if cfg.RuleSets.Watch {
			go func() {
				err := src.Watch(ctx, &source.WatcherConfig{
					DebounceInterval: cfg.RuleSets.WatchDebounce,
					OnReload: func(err error) {
						recordReload(collector, "file", src, err)
					},
				})
				if err != nil && ctx.Err() == nil {
					logger.Error("rule-set watcher stopped", "error", err)
				}
			}()
		}
		return src, nil

	case "git":
		repo, err := git.NewRepository(&cfg.RuleSets.Git)
		if err != nil {
			return nil, fmt.Errorf("configure rule-set repository: %w", err)
		}
		if err := repo.Clone(ctx); err != nil {
			return nil, fmt.Errorf("clone rule-set repository: %w", err)
		}
		src := source.NewFileSource(repo.GetRuleSetPath(), logger)
		if err := src.Load(); err != nil {
			return nil, fmt.Errorf("load rule sets from repository: %w", err)
		}
		if cfg.RuleSets.Git.PollInterval > 0 {
			go pollRepository(ctx, repo, src, cfg.RuleSets.Git.PollInterval, collector, logger)
		}
		return src, nil

	default:
		return nil, fmt.Errorf("unsupported rule-set mode: %s", cfg.RuleSets.Mode)
	}
}

// pollRepository pulls the rule-set repository on an interval and reloads
// the registry when upstream moved. Pull and reload failures keep the
// previous rule sets serving.
func pollRepository(ctx context.Context, repo *git.Repository, src *source.FileSource, interval time.Duration, collector *metrics.Collector, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := repo.Pull(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("rule-set repository pull failed", "error", err)
				recordReload(collector, "git", src, err)
				continue
			}
			if !result.HadChanges {
				continue
			}
			logger.Info("rule-set repository updated",
				"from", result.FromSHA,
				"to", result.ToSHA,
				"changed_files", len(result.ChangedFiles),
			)
			loadErr := src.Load()
			if loadErr != nil {
				logger.Error("rule-set reload failed, previous rule sets remain active", "error", loadErr)
			}
			recordReload(collector, "git", src, loadErr)
		}
	}
}

func recordReload(collector *metrics.Collector, mode string, src *source.FileSource, err error) {
	if collector == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	collector.RecordRuleSetReload(mode, status)
	collector.UpdateActiveRuleSets(mode, src.Len())
}
