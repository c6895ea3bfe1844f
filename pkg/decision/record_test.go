package decision

import (
	"reflect"
	"testing"

	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/ruleset"
)

func TestNewRecord(t *testing.T) {
	rs := &ruleset.RuleSet{ID: "skilled_worker", Version: "2026-04"}
	rule := &eligibility.RuleEvaluationResult{
		Outcome:            eligibility.OutcomePossible,
		Confidence:         0.667,
		RequirementsPassed: 2,
		RequirementsTotal:  3,
		MissingFacts:       []string{"salary"},
	}
	judgment := &reconcile.AIJudgment{
		Outcome: eligibility.OutcomeLikely,
		Model:   "reasoner-large",
	}
	final := &reconcile.Decision{
		FinalOutcome:        eligibility.OutcomePossible,
		Confidence:          0.667,
		ConflictDetected:    true,
		RequiresHumanReview: true,
		ReasoningSummary:    "rule evaluation and AI assessment disagree",
	}

	record := NewRecord("case-001", rs, rule, judgment, final)

	if record.ID == "" {
		t.Error("NewRecord() did not assign an ID")
	}
	if record.CaseID != "case-001" {
		t.Errorf("CaseID = %q, want %q", record.CaseID, "case-001")
	}
	if record.RuleSetID != "skilled_worker" || record.RuleSetVersion != "2026-04" {
		t.Errorf("rule set = %q/%q, want skilled_worker/2026-04", record.RuleSetID, record.RuleSetVersion)
	}
	if record.FinalOutcome != eligibility.OutcomePossible {
		t.Errorf("FinalOutcome = %q, want %q", record.FinalOutcome, eligibility.OutcomePossible)
	}
	if record.RuleOutcome != eligibility.OutcomePossible {
		t.Errorf("RuleOutcome = %q, want %q", record.RuleOutcome, eligibility.OutcomePossible)
	}
	if record.AIOutcome != eligibility.OutcomeLikely {
		t.Errorf("AIOutcome = %q, want %q", record.AIOutcome, eligibility.OutcomeLikely)
	}
	if record.AIModel != "reasoner-large" {
		t.Errorf("AIModel = %q, want %q", record.AIModel, "reasoner-large")
	}
	if !record.ConflictDetected || !record.RequiresHumanReview {
		t.Error("conflict and review flags not carried over")
	}
	if record.RequirementsPassed != 2 || record.RequirementsTotal != 3 {
		t.Errorf("requirements = %d/%d, want 2/3", record.RequirementsPassed, record.RequirementsTotal)
	}
	if !reflect.DeepEqual(record.MissingFacts, []string{"salary"}) {
		t.Errorf("MissingFacts = %v, want [salary]", record.MissingFacts)
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	// The record must not alias the evaluation result's slice.
	rule.MissingFacts[0] = "mutated"
	if record.MissingFacts[0] != "salary" {
		t.Error("record shares MissingFacts backing array with the evaluation result")
	}
}

func TestNewRecord_NoJudgment(t *testing.T) {
	rs := &ruleset.RuleSet{ID: "student", Version: "2026-01"}
	rule := &eligibility.RuleEvaluationResult{
		Outcome:            eligibility.OutcomeLikely,
		Confidence:         1.0,
		RequirementsPassed: 3,
		RequirementsTotal:  3,
		MissingFacts:       []string{},
	}
	final := &reconcile.Decision{
		FinalOutcome:     eligibility.OutcomeLikely,
		Confidence:       1.0,
		ReasoningSummary: "all mandatory requirements passed",
	}

	record := NewRecord("case-002", rs, rule, nil, final)

	if record.AIOutcome != "" {
		t.Errorf("AIOutcome = %q, want empty without a judgment", record.AIOutcome)
	}
	if record.AIModel != "" {
		t.Errorf("AIModel = %q, want empty without a judgment", record.AIModel)
	}
	if record.MissingFacts == nil {
		t.Error("MissingFacts = nil, want empty slice")
	}
}

func TestNewRecord_UniqueIDs(t *testing.T) {
	rs := &ruleset.RuleSet{ID: "student", Version: "2026-01"}
	rule := &eligibility.RuleEvaluationResult{Outcome: eligibility.OutcomeLikely, MissingFacts: []string{}}
	final := &reconcile.Decision{FinalOutcome: eligibility.OutcomeLikely, ReasoningSummary: "ok"}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		record := NewRecord("case-003", rs, rule, nil, final)
		if seen[record.ID] {
			t.Fatalf("duplicate record ID %q", record.ID)
		}
		seen[record.ID] = true
	}
}
