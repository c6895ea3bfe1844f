package rulelogic

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. The typed errors below unwrap to
// these so callers can classify a failure without string matching.
var (
	// ErrMalformedExpression indicates a structurally invalid expression
	// node: an object with other than exactly one key, or an operand list
	// that violates the operator's arity.
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrUnsupportedOperator indicates an operator outside the fixed set.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrDivisionByZero indicates a zero divisor in / or %.
	ErrDivisionByZero = errors.New("division by zero")
)

// MalformedExpressionError reports a structurally invalid expression node.
// Evaluation of the enclosing requirement fails; the aggregate evaluation
// continues without it.
type MalformedExpressionError struct {
	// Op is the operator being evaluated when the problem was found,
	// empty when the node itself could not be interpreted.
	Op Operator

	// Reason describes the structural problem.
	Reason string
}

func (e *MalformedExpressionError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("malformed expression: %s: %s", string(e.Op), e.Reason)
	}
	return fmt.Sprintf("malformed expression: %s", e.Reason)
}

func (e *MalformedExpressionError) Unwrap() error {
	return ErrMalformedExpression
}

// UnsupportedOperatorError reports an operator (or, for the method operator,
// a method name) outside the fixed set.
type UnsupportedOperatorError struct {
	Op Operator

	// Method is set when the failure is an unknown string method rather
	// than an unknown operator.
	Method string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("unsupported method %q", e.Method)
	}
	return fmt.Sprintf("unsupported operator %q", string(e.Op))
}

func (e *UnsupportedOperatorError) Unwrap() error {
	return ErrUnsupportedOperator
}

// DivisionByZeroError reports a zero divisor. Only the / and % operators
// can produce it.
type DivisionByZeroError struct {
	Op Operator
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("%s: division by zero", string(e.Op))
}

func (e *DivisionByZeroError) Unwrap() error {
	return ErrDivisionByZero
}
