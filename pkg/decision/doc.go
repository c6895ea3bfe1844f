// Package decision persists reconciled eligibility decisions as immutable
// audit records. Every evaluation that completes, whether or not it conflicts
// or escalates, leaves exactly one record behind.
//
// # Records
//
// A Record is the join of the rule evaluation and the reconciled decision for
// one case: the final outcome, both contributing outcomes, the confidence,
// conflict and review flags, and the missing-fact list. Records are written
// once; the single later mutation is AttachReviewID, because escalation to
// human review completes asynchronously after the record is persisted.
//
// # Storage Backends
//
// Two backends implement the Storage interface:
//   - SQLiteStorage: embedded single-node database, WAL mode, indexed by
//     case and creation time
//   - MemoryStorage: map-backed, for tests and ephemeral deployments
//
// Components that only ever write should depend on the narrower Sink
// interface instead.
//
// # Basic Usage
//
//	storage, err := decision.NewSQLiteStorage(&decision.SQLiteConfig{
//	    Path: "data/decisions.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer storage.Close()
//
//	record := decision.NewRecord(caseID, rs, ruleResult, judgment, final)
//	if err := storage.Persist(ctx, record); err != nil {
//	    log.Fatal(err)
//	}
//
//	history, err := storage.ListByCase(ctx, caseID, 20)
//
// # Retention
//
// Old records can be pruned on a schedule:
//
//	pruner := decision.NewPruner(storage, &decision.PrunerConfig{
//	    RetentionDays: 365,
//	    PruneSchedule: "0 4 * * *",
//	}, logger)
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// Pruning deletes in bounded batches so a year of backlog cannot hold the
// write lock for the duration of the sweep.
package decision
