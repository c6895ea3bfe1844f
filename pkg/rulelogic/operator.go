package rulelogic

// Operator identifies one of the fixed expression operators. The set is
// closed: evaluation dispatches over these constants exhaustively and any
// other value fails with UnsupportedOperatorError.
type Operator string

const (
	// Fact access.
	OperatorVar         Operator = "var"
	OperatorMissing     Operator = "missing"
	OperatorMissingSome Operator = "missing_some"

	// Logic.
	OperatorNot    Operator = "!"
	OperatorTruthy Operator = "!!"
	OperatorAnd    Operator = "and"
	OperatorOr     Operator = "or"

	// Equality.
	OperatorEqual          Operator = "=="
	OperatorStrictEqual    Operator = "==="
	OperatorNotEqual       Operator = "!="
	OperatorStrictNotEqual Operator = "!=="

	// Ordered comparison.
	OperatorGreaterThan    Operator = ">"
	OperatorGreaterOrEqual Operator = ">="
	OperatorLessThan       Operator = "<"
	OperatorLessOrEqual    Operator = "<="

	// Arithmetic.
	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
	OperatorMultiply Operator = "*"
	OperatorDivide   Operator = "/"
	OperatorModulo   Operator = "%"

	// Numeric reduction.
	OperatorMin Operator = "min"
	OperatorMax Operator = "max"
	OperatorAbs Operator = "abs"

	// Strings.
	OperatorCat    Operator = "cat"
	OperatorSubstr Operator = "substr"
	OperatorIn     Operator = "in"

	// Structure.
	OperatorMerge Operator = "merge"
	OperatorIf    Operator = "if"

	// Collections.
	OperatorMap    Operator = "map"
	OperatorFilter Operator = "filter"
	OperatorAll    Operator = "all"
	OperatorNone   Operator = "none"
	OperatorSome   Operator = "some"
	OperatorReduce Operator = "reduce"

	// Whitelisted string-method dispatch.
	OperatorMethod Operator = "method"
)

// knownOperators is the fixed operator set, used by Known and by rule-set
// validation to reject unknown operators before a rule set is published.
var knownOperators = map[Operator]struct{}{
	OperatorVar: {}, OperatorMissing: {}, OperatorMissingSome: {},
	OperatorNot: {}, OperatorTruthy: {}, OperatorAnd: {}, OperatorOr: {},
	OperatorEqual: {}, OperatorStrictEqual: {}, OperatorNotEqual: {}, OperatorStrictNotEqual: {},
	OperatorGreaterThan: {}, OperatorGreaterOrEqual: {}, OperatorLessThan: {}, OperatorLessOrEqual: {},
	OperatorAdd: {}, OperatorSubtract: {}, OperatorMultiply: {}, OperatorDivide: {}, OperatorModulo: {},
	OperatorMin: {}, OperatorMax: {}, OperatorAbs: {},
	OperatorCat: {}, OperatorSubstr: {}, OperatorIn: {},
	OperatorMerge: {}, OperatorIf: {},
	OperatorMap: {}, OperatorFilter: {}, OperatorAll: {}, OperatorNone: {}, OperatorSome: {}, OperatorReduce: {},
	OperatorMethod: {},
}

// Known reports whether op is in the fixed operator set.
func Known(op Operator) bool {
	_, ok := knownOperators[op]
	return ok
}

// MethodName identifies one of the whitelisted string methods available to
// the method operator. Dispatch is a closed enumeration: no reflective or
// dynamic method invocation happens anywhere in the evaluator.
type MethodName string

const (
	MethodLower      MethodName = "lower"
	MethodUpper      MethodName = "upper"
	MethodStrip      MethodName = "strip"
	MethodStartsWith MethodName = "startswith"
	MethodEndsWith   MethodName = "endswith"
	MethodReplace    MethodName = "replace"
)
