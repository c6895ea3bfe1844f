// Package rulelogic implements the expression language used to encode
// eligibility requirement conditions: a small JSON-tree language evaluated
// against a mapping of case facts.
//
// An expression is serialized as a single-key JSON object per operator
// (operator name mapped to an operand array), for example:
//
//	{">=": [{"var": "salary"}, 38700]}
//
// The serialized form is the published, persisted representation of a
// requirement condition and round-trips through Parse and Marshal without
// change, including the single-operand sugar form {"var": "salary"}.
//
// # Architecture
//
// The package has three layers:
//
//  1. Expression tree - an immutable parsed form (Literal, ListExpr, Operation)
//  2. Evaluator - a pure tree walk dispatching on a closed Operator enum
//  3. Fact access - dotted-path resolution and static variable scanning
//
// # Basic Usage
//
//	expr, err := rulelogic.Parse([]byte(`{">=": [{"var": "salary"}, 38700]}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	facts := rulelogic.FactSet{"salary": 50000}
//	result, err := rulelogic.Evaluate(expr, facts)
//	// result == true
//
// # Evaluation Semantics
//
// Evaluation is total and deterministic: identical (expression, facts) input
// always produces identical output, and the evaluator performs no I/O and
// holds no state between calls. Missing facts never raise: the var operator
// returns its default (or null) when a path does not resolve. The only
// runtime failures are the three typed errors in this package: a malformed
// node, an operator outside the fixed set, and division by zero.
//
// # Thread Safety
//
// Expressions are immutable after construction and safe for concurrent
// evaluation from multiple goroutines, each call with its own fact context.
package rulelogic
