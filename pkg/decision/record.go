package decision

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/ruleset"
)

// Record is the persisted audit trail for one completed evaluation. It joins
// the rule evaluation result with the reconciled decision so the full chain
// of reasoning survives the in-memory structures that produced it.
type Record struct {
	// Identity
	ID     string `json:"id"`      // UUID v4
	CaseID string `json:"case_id"` // Case the decision is about

	// Rule set provenance
	RuleSetID      string `json:"ruleset_id"`
	RuleSetVersion string `json:"ruleset_version"`

	// Outcomes
	FinalOutcome eligibility.Outcome `json:"final_outcome"`        // After reconciliation
	RuleOutcome  eligibility.Outcome `json:"rule_outcome"`         // Deterministic tier
	AIOutcome    eligibility.Outcome `json:"ai_outcome,omitempty"` // Empty when no judgment was available
	AIModel      string              `json:"ai_model,omitempty"`   // What produced the judgment

	// Reconciliation
	Confidence          float64 `json:"confidence"`
	ConflictDetected    bool    `json:"conflict_detected"`
	RequiresHumanReview bool    `json:"requires_human_review"`
	ReviewID            string  `json:"review_id,omitempty"` // Set once an escalation is accepted
	ReasoningSummary    string  `json:"reasoning_summary"`

	// Rule evaluation detail
	RequirementsPassed int      `json:"requirements_passed"`
	RequirementsTotal  int      `json:"requirements_total"`
	MissingFacts       []string `json:"missing_facts"`

	CreatedAt time.Time `json:"created_at"`
}

// NewRecord assembles the record for one evaluation. The judgment may be nil
// when no AI assessment was available; the AI fields stay empty then.
func NewRecord(caseID string, rs *ruleset.RuleSet, rule *eligibility.RuleEvaluationResult, judgment *reconcile.AIJudgment, final *reconcile.Decision) *Record {
	missingFacts := make([]string, len(rule.MissingFacts))
	copy(missingFacts, rule.MissingFacts)

	record := &Record{
		ID:                  uuid.NewString(),
		CaseID:              caseID,
		RuleSetID:           rs.ID,
		RuleSetVersion:      rs.Version,
		FinalOutcome:        final.FinalOutcome,
		RuleOutcome:         rule.Outcome,
		Confidence:          final.Confidence,
		ConflictDetected:    final.ConflictDetected,
		RequiresHumanReview: final.RequiresHumanReview,
		ReasoningSummary:    final.ReasoningSummary,
		RequirementsPassed:  rule.RequirementsPassed,
		RequirementsTotal:   rule.RequirementsTotal,
		MissingFacts:        missingFacts,
		CreatedAt:           time.Now().UTC(),
	}
	if judgment != nil {
		record.AIOutcome = judgment.Outcome
		record.AIModel = judgment.Model
	}
	return record
}

// Sink is the write side of decision persistence. The evaluation path depends
// on this interface only, so storage reads never leak into it.
type Sink interface {
	// Persist writes a decision record. Records are immutable; persisting
	// an ID twice is an error.
	Persist(ctx context.Context, record *Record) error
}

// Storage extends Sink with the read and maintenance operations the API
// surface and the retention pruner need.
//
// Implementations must be safe for concurrent use.
type Storage interface {
	Sink

	// GetByID retrieves a single record. Returns an error wrapping
	// ErrNotFound when no record has the given ID.
	GetByID(ctx context.Context, id string) (*Record, error)

	// ListByCase retrieves the most recent records for a case, newest
	// first. A non-positive limit applies a default cap.
	ListByCase(ctx context.Context, caseID string, limit int) ([]*Record, error)

	// AttachReviewID links an accepted human-review identifier to an
	// already-persisted record. This is the only mutation records ever
	// see; it exists because escalation completes after the record is
	// written. Returns an error wrapping ErrNotFound for unknown IDs.
	AttachReviewID(ctx context.Context, id, reviewID string) error

	// DeleteOlderThan removes all records created before the cutoff,
	// deleting in batches of at most batchSize to bound write-lock hold
	// time. Returns the total number of records deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
