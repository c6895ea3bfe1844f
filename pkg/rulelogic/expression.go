package rulelogic

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Expression is a node in a parsed rule-logic tree. A node is a Literal, a
// ListExpr, or an Operation; the interface is sealed so the evaluator's
// dispatch is exhaustive. Expressions are immutable once constructed.
type Expression interface {
	exprNode()

	// MarshalJSON serializes the node back to its published wire form.
	MarshalJSON() ([]byte, error)
}

// Literal is a scalar leaf: null, bool, number, or string. Numbers parsed
// from JSON are held as json.Number so the published representation
// round-trips without reformatting.
type Literal struct {
	Value any
}

func (*Literal) exprNode() {}

// ListExpr is a list node. Each element is evaluated and the results are
// returned as a list.
type ListExpr struct {
	Items []Expression
}

func (*ListExpr) exprNode() {}

// Operation applies an operator to an ordered operand list. The wire form is
// a single-key object: {"operator": [operands...]}, or the single-operand
// sugar {"operator": operand}. The sugar form is remembered so serialization
// reproduces the published shape exactly.
type Operation struct {
	Op       Operator
	Operands []Expression

	// sugar records that the operand arrived unwrapped (not in an array).
	sugar bool
}

func (*Operation) exprNode() {}

// NewOperation builds an operation node with an explicit operand array.
func NewOperation(op Operator, operands ...Expression) *Operation {
	return &Operation{Op: op, Operands: operands}
}

// Parse decodes the published JSON form of an expression.
// Structural problems (an object with other than exactly one key, invalid
// JSON) fail with MalformedExpressionError. Operator names are not checked
// here: an unknown operator is an evaluation-time failure, so that rule sets
// published ahead of an engine upgrade degrade per requirement rather than
// failing to load.
func Parse(data []byte) (Expression, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedExpressionError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return nil, &MalformedExpressionError{Reason: "trailing data after expression"}
	}
	return FromValue(raw)
}

// FromValue builds an expression tree from an already-decoded value tree
// (the output of a JSON or YAML decoder). An object with exactly one key is
// an Operation; any other object is malformed. Lists become ListExpr nodes
// and scalars become Literals.
func FromValue(v any) (Expression, error) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) != 1 {
			return nil, &MalformedExpressionError{
				Reason: fmt.Sprintf("object node must have exactly one key, got %d", len(val)),
			}
		}
		var key string
		var operand any
		for k, o := range val {
			key, operand = k, o
		}
		return operationFromValue(Operator(key), operand)

	case []any:
		items := make([]Expression, len(val))
		for i, item := range val {
			expr, err := FromValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = expr
		}
		return &ListExpr{Items: items}, nil

	case nil, bool, string, json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &Literal{Value: val}, nil

	default:
		return nil, &MalformedExpressionError{
			Reason: fmt.Sprintf("unsupported node type %T", v),
		}
	}
}

func operationFromValue(op Operator, operand any) (Expression, error) {
	if list, ok := operand.([]any); ok {
		operands := make([]Expression, len(list))
		for i, item := range list {
			expr, err := FromValue(item)
			if err != nil {
				return nil, err
			}
			operands[i] = expr
		}
		return &Operation{Op: op, Operands: operands}, nil
	}

	single, err := FromValue(operand)
	if err != nil {
		return nil, err
	}
	return &Operation{Op: op, Operands: []Expression{single}, sugar: true}, nil
}

// Marshal serializes an expression to its published wire form: compact JSON,
// no HTML escaping, numbers and sugar forms exactly as parsed.
func Marshal(expr Expression) ([]byte, error) {
	if expr == nil {
		return nil, &MalformedExpressionError{Reason: "nil expression"}
	}
	var buf bytes.Buffer
	if err := writeExpr(&buf, expr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeExpr(buf *bytes.Buffer, expr Expression) error {
	switch node := expr.(type) {
	case *Literal:
		return writeScalar(buf, node.Value)

	case *ListExpr:
		buf.WriteByte('[')
		for i, item := range node.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeExpr(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case *Operation:
		buf.WriteByte('{')
		if err := writeScalar(buf, string(node.Op)); err != nil {
			return err
		}
		buf.WriteByte(':')
		if node.sugar && len(node.Operands) == 1 {
			if err := writeExpr(buf, node.Operands[0]); err != nil {
				return err
			}
		} else {
			buf.WriteByte('[')
			for i, operand := range node.Operands {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := writeExpr(buf, operand); err != nil {
					return err
				}
			}
			buf.WriteByte(']')
		}
		buf.WriteByte('}')
		return nil

	case nil:
		return &MalformedExpressionError{Reason: "nil expression"}

	default:
		return &MalformedExpressionError{Reason: fmt.Sprintf("unknown node type %T", expr)}
	}
}

// writeScalar encodes a scalar literal. json.Number values are written as-is
// to preserve the source representation.
func writeScalar(buf *bytes.Buffer, v any) error {
	if n, ok := v.(json.Number); ok {
		buf.WriteString(string(n))
		return nil
	}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return &MalformedExpressionError{Reason: fmt.Sprintf("unencodable literal: %v", err)}
	}
	// Encoder.Encode appends a newline; the wire form is compact.
	b := buf.Bytes()
	if len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l *Literal) MarshalJSON() ([]byte, error) { return Marshal(l) }

// MarshalJSON implements json.Marshaler.
func (l *ListExpr) MarshalJSON() ([]byte, error) { return Marshal(l) }

// MarshalJSON implements json.Marshaler.
func (o *Operation) MarshalJSON() ([]byte, error) { return Marshal(o) }

// String returns the wire form, for logs and error messages.
func (l *Literal) String() string { return exprString(l) }

// String returns the wire form, for logs and error messages.
func (l *ListExpr) String() string { return exprString(l) }

// String returns the wire form, for logs and error messages.
func (o *Operation) String() string { return exprString(o) }

func exprString(expr Expression) string {
	b, err := Marshal(expr)
	if err != nil {
		return "<invalid expression>"
	}
	return string(b)
}

var (
	_ json.Marshaler = (*Literal)(nil)
	_ json.Marshaler = (*ListExpr)(nil)
	_ json.Marshaler = (*Operation)(nil)
)
