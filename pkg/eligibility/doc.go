// Package eligibility evaluates published requirements against case facts
// and aggregates the per-requirement results into a tiered verdict.
//
// # Architecture
//
// The package has two layers:
//
//   - EvaluateRequirement applies one Requirement's expression to a fact
//     set, classifying the result as passed, failed, blocked on missing
//     facts, or errored. Evaluation failures are contained here: they mark
//     the single requirement, never the whole evaluation.
//
//   - Aggregator combines the per-requirement results of a rule set into a
//     RuleEvaluationResult: an outcome tier (likely, possible, unlikely), a
//     confidence ratio, pass/total counts over the mandatory requirements,
//     and the union of missing facts.
//
// Both layers are pure: they keep no state between calls, never mutate the
// fact set, and produce the same result for the same inputs regardless of
// requirement order.
//
// # Basic Usage
//
//	agg, err := eligibility.NewAggregator(eligibility.DefaultConfig(), logger)
//	if err != nil {
//		return err
//	}
//	result, err := agg.Aggregate(requirements, facts)
//	if err != nil {
//		// only an empty requirement set fails
//		return err
//	}
//	fmt.Println(result.Outcome, result.Confidence)
//
// # Verdict Tiers
//
// Only mandatory requirements drive the verdict. All mandatory requirements
// passed with nothing missing yields "likely". Missing facts without a
// definitive failure yield "possible": the case is incomplete, not refused.
// Any definitive failure yields "possible" or "unlikely" depending on the
// failed fraction against the configured threshold. An empty requirement
// set is a NoRequirementsError, never a vacuous "likely".
//
// # Thread Safety
//
// Aggregator is safe for concurrent use. Requirement and the result types
// are value objects; treat them as immutable once built.
package eligibility
