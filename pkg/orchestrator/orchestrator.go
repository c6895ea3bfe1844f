package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/minerva/pkg/decision"
	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/facts"
	"mercator-hq/minerva/pkg/judgment"
	"mercator-hq/minerva/pkg/review"
	"mercator-hq/minerva/pkg/rulelogic"
	"mercator-hq/minerva/pkg/ruleset"
	"mercator-hq/minerva/pkg/telemetry/logging"
	"mercator-hq/minerva/pkg/telemetry/tracing"
)

// Escalator submits escalations for asynchronous review creation.
// *review.Escalator implements it.
type Escalator interface {
	Escalate(esc review.Escalation) error
}

// Deps are the collaborators one orchestrator sequences. Resolver, Facts,
// Aggregator, and Policy are required; the rest are optional and their
// stages are skipped when absent.
type Deps struct {
	// Resolver resolves rule-set identifiers to published rule sets.
	Resolver ruleset.Resolver

	// Facts provides the recorded facts for a case.
	Facts facts.Store

	// Aggregator turns a requirement set plus facts into a rule verdict.
	Aggregator *eligibility.Aggregator

	// Policy reconciles the rule verdict with the AI judgment.
	Policy *reconcile.Policy

	// Assessor obtains the independent AI judgment. Nil disables the
	// judgment stage; reconciliation then runs without one.
	Assessor judgment.Assessor

	// Sink persists decision records. Nil disables persistence; results
	// are returned without a Record.
	Sink decision.Sink

	// Escalator queues human-review requests. Nil disables escalation;
	// RequiresHumanReview is still recorded on the decision.
	Escalator Escalator

	// Tracer emits pipeline spans. Nil disables tracing.
	Tracer *tracing.Tracer

	// Logger for pipeline events. Nil uses slog.Default.
	Logger *slog.Logger

	// Observer for metrics/audit side effects. Nil disables them.
	Observer Observer
}

// Result is everything one evaluation produced.
type Result struct {
	CaseID   string
	RuleSet  *ruleset.RuleSet
	Rule     *eligibility.RuleEvaluationResult
	Judgment *reconcile.AIJudgment
	Decision *reconcile.Decision

	// Record is the persisted decision, nil when persistence is disabled
	// or the evaluation was inline.
	Record *decision.Record
}

// Orchestrator runs the case evaluation pipeline.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger
	obs    Observer
}

// New creates an orchestrator from its collaborators.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Resolver == nil {
		return nil, fmt.Errorf("orchestrator: rule-set resolver is required")
	}
	if deps.Facts == nil {
		return nil, fmt.Errorf("orchestrator: fact store is required")
	}
	if deps.Aggregator == nil {
		return nil, fmt.Errorf("orchestrator: aggregator is required")
	}
	if deps.Policy == nil {
		return nil, fmt.Errorf("orchestrator: reconciliation policy is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	obs := deps.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Orchestrator{
		deps:   deps,
		logger: logger.With("component", "orchestrator"),
		obs:    obs,
	}, nil
}

// EvaluateCase evaluates a stored case against a published rule set,
// persists the decision, and escalates when the decision requires human
// review.
func (o *Orchestrator) EvaluateCase(ctx context.Context, caseID, rulesetID string) (*Result, error) {
	ctx, span := o.startSpan(ctx, tracing.SpanEvaluation)
	defer span.End()
	ctx = logging.WithCaseID(ctx, caseID)

	rs, err := o.resolveRuleSet(ctx, rulesetID)
	if err != nil {
		o.obs.EvaluationFailed(rulesetID, "ruleset")
		tracing.SetErrorAttributes(span, err, "ruleset")
		return nil, err
	}
	ctx = logging.WithRuleSetID(ctx, rs.ID)
	tracing.SetCaseAttributes(span, caseID, rs.ID, rs.Version)

	factSet, err := o.fetchFacts(ctx, caseID)
	if err != nil {
		o.obs.EvaluationFailed(rulesetID, "facts")
		tracing.SetErrorAttributes(span, err, "facts")
		return nil, err
	}

	return o.evaluate(ctx, span, caseID, factSet, rs, true)
}

// EvaluateInline evaluates ad-hoc facts against a published rule set
// without a stored case. Nothing is persisted and nothing is escalated;
// the AI judgment stage still runs when an assessor is configured.
func (o *Orchestrator) EvaluateInline(ctx context.Context, rulesetID string, factSet rulelogic.FactSet) (*Result, error) {
	ctx, span := o.startSpan(ctx, tracing.SpanEvaluation)
	defer span.End()

	rs, err := o.resolveRuleSet(ctx, rulesetID)
	if err != nil {
		o.obs.EvaluationFailed(rulesetID, "ruleset")
		tracing.SetErrorAttributes(span, err, "ruleset")
		return nil, err
	}
	ctx = logging.WithRuleSetID(ctx, rs.ID)
	tracing.SetCaseAttributes(span, "", rs.ID, rs.Version)

	return o.evaluate(ctx, span, "", factSet, rs, false)
}

// EvaluateRuleSet evaluates facts against an already-resolved rule set.
// Like EvaluateInline it neither persists nor escalates; embedders that
// build rule sets in code use this entry point.
func (o *Orchestrator) EvaluateRuleSet(ctx context.Context, rs *ruleset.RuleSet, factSet rulelogic.FactSet) (*Result, error) {
	ctx, span := o.startSpan(ctx, tracing.SpanEvaluation)
	defer span.End()
	tracing.SetCaseAttributes(span, "", rs.ID, rs.Version)
	return o.evaluate(ctx, span, "", factSet, rs, false)
}

// evaluate runs the aggregate → judge → reconcile → persist → escalate
// tail of the pipeline. persist=false is the inline path: no record, no
// escalation.
func (o *Orchestrator) evaluate(ctx context.Context, root trace.Span, caseID string, factSet rulelogic.FactSet, rs *ruleset.RuleSet, persist bool) (*Result, error) {
	started := time.Now()

	rule, err := o.aggregate(ctx, rs, factSet)
	if err != nil {
		o.obs.EvaluationFailed(rs.ID, "aggregate")
		tracing.SetErrorAttributes(root, err, "aggregate")
		return nil, err
	}
	o.reportTallies(ctx, rs, rule)
	tracing.SetAggregationAttributes(root, string(rule.Outcome), rule.RequirementsPassed, rule.RequirementsTotal, len(rule.MissingFacts))

	aiJudgment := o.assess(ctx, caseID, factSet, rs)

	final := o.reconcile(ctx, rule, aiJudgment)
	if final.ConflictDetected {
		o.obs.ConflictDetected(rs.ID)
	}
	tracing.SetDecisionAttributes(root, string(final.FinalOutcome), final.Confidence, final.ConflictDetected, final.RequiresHumanReview)

	result := &Result{
		CaseID:   caseID,
		RuleSet:  rs,
		Rule:     rule,
		Judgment: aiJudgment,
		Decision: final,
	}

	if persist {
		record := decision.NewRecord(caseID, rs, rule, aiJudgment, final)
		if err := o.persist(ctx, record); err != nil {
			o.obs.EvaluationFailed(rs.ID, "persist")
			tracing.SetErrorAttributes(root, err, "persist")
			return nil, err
		}
		result.Record = record
		if final.RequiresHumanReview {
			o.escalate(ctx, record)
		}
	}

	o.obs.EvaluationCompleted(rs.ID, final.FinalOutcome, time.Since(started))
	o.logger.InfoContext(ctx, "evaluation completed",
		"final_outcome", final.FinalOutcome,
		"rule_outcome", rule.Outcome,
		"confidence", final.Confidence,
		"conflict", final.ConflictDetected,
		"requires_review", final.RequiresHumanReview,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}

func (o *Orchestrator) resolveRuleSet(ctx context.Context, rulesetID string) (*ruleset.RuleSet, error) {
	ctx, span := o.startSpan(ctx, tracing.SpanRuleSetResolve)
	defer span.End()

	rs, err := o.deps.Resolver.Resolve(ctx, rulesetID)
	if err != nil {
		return nil, fmt.Errorf("resolving rule set %q: %w", rulesetID, err)
	}
	return rs, nil
}

func (o *Orchestrator) fetchFacts(ctx context.Context, caseID string) (rulelogic.FactSet, error) {
	ctx, span := o.startSpan(ctx, tracing.SpanFactsFetch)
	defer span.End()

	factSet, err := o.deps.Facts.GetFacts(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("fetching facts for case %q: %w", caseID, err)
	}
	return factSet, nil
}

func (o *Orchestrator) aggregate(ctx context.Context, rs *ruleset.RuleSet, factSet rulelogic.FactSet) (*eligibility.RuleEvaluationResult, error) {
	_, span := o.startSpan(ctx, tracing.SpanAggregate)
	defer span.End()

	rule, err := o.deps.Aggregator.Aggregate(rs.Requirements, factSet)
	if err != nil {
		return nil, fmt.Errorf("aggregating rule set %q: %w", rs.ID, err)
	}
	return rule, nil
}

// reportTallies counts the classification of every mandatory requirement
// and flags errored requirements as anomalies for rule-author attention.
func (o *Orchestrator) reportTallies(ctx context.Context, rs *ruleset.RuleSet, rule *eligibility.RuleEvaluationResult) {
	var passed, failed, blocked, errored int
	for _, detail := range rule.RequirementDetails {
		switch {
		case detail.Errored():
			errored++
		case detail.Blocked():
			blocked++
		case detail.Passed:
			passed++
		default:
			failed++
		}
	}
	o.obs.RequirementsTallied(passed, failed, blocked, errored)

	for _, detail := range rule.ErroredRequirements() {
		o.logger.WarnContext(ctx, "requirement excluded from tallies due to evaluation error",
			"requirement_code", detail.Code,
			"ruleset_id", rs.ID,
			"ruleset_version", rs.Version,
			"error", detail.Error,
		)
	}
}

// assess obtains the AI judgment. Every failure degrades to "no judgment
// available" so reconciliation rule 1 applies; nothing here aborts the
// evaluation.
func (o *Orchestrator) assess(ctx context.Context, caseID string, factSet rulelogic.FactSet, rs *ruleset.RuleSet) *reconcile.AIJudgment {
	if o.deps.Assessor == nil {
		return nil
	}

	ctx, span := o.startSpan(ctx, tracing.SpanJudgment)
	defer span.End()

	started := time.Now()
	aiJudgment, err := o.deps.Assessor.Assess(ctx, caseID, factSet, rs)
	latency := time.Since(started)
	switch {
	case err != nil:
		o.obs.JudgmentCall("error", latency)
		tracing.SetErrorAttributes(span, err, "judgment")
		o.logger.WarnContext(ctx, "AI judgment unavailable, proceeding on rule outcome alone", "error", err)
		return nil
	case aiJudgment == nil:
		o.obs.JudgmentCall("no_verdict", latency)
		return nil
	default:
		o.obs.JudgmentCall("ok", latency)
		tracing.SetJudgmentAttributes(span, string(aiJudgment.Outcome), aiJudgment.Model)
		return aiJudgment
	}
}

func (o *Orchestrator) reconcile(ctx context.Context, rule *eligibility.RuleEvaluationResult, aiJudgment *reconcile.AIJudgment) *reconcile.Decision {
	_, span := o.startSpan(ctx, tracing.SpanReconcile)
	defer span.End()
	return o.deps.Policy.Reconcile(rule, aiJudgment)
}

func (o *Orchestrator) persist(ctx context.Context, record *decision.Record) error {
	if o.deps.Sink == nil {
		return nil
	}
	ctx, span := o.startSpan(ctx, tracing.SpanPersist)
	defer span.End()

	if err := o.deps.Sink.Persist(ctx, record); err != nil {
		return fmt.Errorf("persisting decision %s: %w", record.ID, err)
	}
	return nil
}

// escalate submits the review request. Failures here are recoverable by
// design: the decision is already persisted and stands regardless.
func (o *Orchestrator) escalate(ctx context.Context, record *decision.Record) {
	if o.deps.Escalator == nil {
		return
	}
	err := o.deps.Escalator.Escalate(review.Escalation{
		DecisionID:       record.ID,
		CaseID:           record.CaseID,
		ReasoningSummary: record.ReasoningSummary,
		ConflictDetected: record.ConflictDetected,
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "review escalation not queued, decision stands",
			"decision_id", record.ID,
			"error", err,
		)
	}
}

// startSpan is a nil-safe tracer shim. Without a tracer the returned span
// is a noop obtained from the (empty) context.
func (o *Orchestrator) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.deps.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.deps.Tracer.Start(ctx, name)
}
