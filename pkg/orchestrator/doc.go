// Package orchestrator sequences one case evaluation end to end: resolve
// the rule set, fetch the case facts, aggregate the requirement results
// into a rule verdict, obtain the optional AI judgment, reconcile the two,
// persist the decision, and escalate for human review when the reconciled
// decision asks for it.
//
// The orchestrator owns no business semantics of its own. The expression
// language lives in rulelogic, classification and tiering in eligibility,
// the merge policy in eligibility/reconcile; this package wires them to
// the collaborator interfaces (rule-set resolver, fact store, assessor,
// decision sink, review escalator) and contains the failure policy at each
// boundary:
//
//   - Resolver, fact store, and aggregation failures abort the evaluation.
//   - Assessor failures degrade to "no judgment available"; reconciliation
//     rule 1 then applies.
//   - Decision persistence failures abort: a decision that cannot be
//     recorded is never served.
//   - Review escalation failures are recoverable; the already-computed
//     decision stands.
//
// Metrics and audit side effects go through the injected Observer, never
// through package-level state.
package orchestrator
