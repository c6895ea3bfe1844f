package rulelogic

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// TestParse_NodeShapes tests the structural mapping from JSON to the
// expression tree.
func TestParse_NodeShapes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantType string
	}{
		{"number literal", `42`, "*rulelogic.Literal"},
		{"string literal", `"salary"`, "*rulelogic.Literal"},
		{"bool literal", `true`, "*rulelogic.Literal"},
		{"null literal", `null`, "*rulelogic.Literal"},
		{"list", `[1, 2, 3]`, "*rulelogic.ListExpr"},
		{"operation", `{"var": "salary"}`, "*rulelogic.Operation"},
		{"nested operation", `{"and": [{"var": "a"}, {"var": "b"}]}`, "*rulelogic.Operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			var gotType string
			switch expr.(type) {
			case *Literal:
				gotType = "*rulelogic.Literal"
			case *ListExpr:
				gotType = "*rulelogic.ListExpr"
			case *Operation:
				gotType = "*rulelogic.Operation"
			}
			if gotType != tt.wantType {
				t.Errorf("Parse() node type = %s, want %s", gotType, tt.wantType)
			}
		})
	}
}

// TestParse_Malformed tests the structural failure modes.
func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"invalid JSON", `{"var":`},
		{"empty input", ``},
		{"two-key object", `{"var": "a", ">=": [1, 2]}`},
		{"empty object", `{}`},
		{"trailing data", `{"var": "a"} {"var": "b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatalf("Parse(%s) error = nil, want MalformedExpressionError", tt.src)
			}
			if !errors.Is(err, ErrMalformedExpression) {
				t.Errorf("Parse(%s) error = %v, want errors.Is(ErrMalformedExpression)", tt.src, err)
			}
		})
	}
}

// TestParse_UnknownOperatorDeferred verifies that parsing accepts operator
// names it does not recognize; the failure belongs to evaluation so that
// already-published rule sets load even when this engine predates them.
func TestParse_UnknownOperatorDeferred(t *testing.T) {
	expr, err := Parse([]byte(`{"frobnicate": [1, 2]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	op, ok := expr.(*Operation)
	if !ok {
		t.Fatalf("Parse() node type = %T, want *Operation", expr)
	}
	if Known(op.Op) {
		t.Errorf("Known(%q) = true, want false", op.Op)
	}
	if _, err := Evaluate(expr, nil); !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("Evaluate() error = %v, want errors.Is(ErrUnsupportedOperator)", err)
	}
}

// TestMarshal_RoundTrip feeds published compact wire forms through
// Parse+Marshal and requires the exact input bytes back: sugar forms,
// number representations and operator key escaping all survive.
func TestMarshal_RoundTrip(t *testing.T) {
	tests := []string{
		`{"var":"salary"}`,
		`{"var":["salary"]}`,
		`{"var":["salary",38700]}`,
		`{">=":[{"var":"salary"},38700]}`,
		`{"<":[18,{"var":"age"},66]}`,
		`{"==":[{"var":"rate"},0.085]}`,
		`{"==":[{"var":"rate"},0.10]}`,
		`{"+":[1e3,2]}`,
		`{"!":{"var":"refused_before"}}`,
		`{"if":[{"missing":["salary"]},"incomplete","complete"]}`,
		`{"and":[{">=":[{"var":"salary"},38700]},{"in":[{"var":"visa_type"},["skilled_worker","global_talent"]]}]}`,
		`{"method":[{"var":"code"},"lower"]}`,
		`{"reduce":[{"var":"nums"},{"+":[{"var":"current"},{"var":"accumulator"}]},0]}`,
		`{"cat":["a","<b>","c"]}`,
		`{"==":[{"var":"name"},"Müller"]}`,
		`"bare literal"`,
		`[1,2,[3,4]]`,
		`null`,
		`-0.5`,
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			expr, err := Parse([]byte(src))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			out, err := Marshal(expr)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != src {
				t.Errorf("Marshal() = %s, want %s", out, src)
			}
		})
	}
}

// TestMarshal_JSONMarshaler verifies expressions embed cleanly in larger
// documents through encoding/json. The encoder must have HTML escaping off,
// as everywhere this engine emits expressions.
func TestMarshal_JSONMarshaler(t *testing.T) {
	expr := mustParse(t, `{">=":[{"var":"salary"},38700]}`)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any{"logic": expr}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{"logic":{">=":[{"var":"salary"},38700]}}`
	if got := strings.TrimSuffix(buf.String(), "\n"); got != want {
		t.Errorf("Encode() = %s, want %s", got, want)
	}
}

// TestFromValue tests building expressions from already-decoded trees, the
// path used by the YAML rule-set loader.
func TestFromValue(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{
			name:  "decoded map",
			value: map[string]any{">=": []any{map[string]any{"var": "salary"}, 38700}},
			want:  `{">=":[{"var":"salary"},38700]}`,
		},
		{
			name:  "go int literal",
			value: 42,
			want:  `42`,
		},
		{
			name:  "sugar operand",
			value: map[string]any{"var": "salary"},
			want:  `{"var":"salary"}`,
		},
		{
			name:    "two keys",
			value:   map[string]any{"a": 1, "b": 2},
			wantErr: true,
		},
		{
			name:    "unsupported type",
			value:   struct{}{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := FromValue(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedExpression) {
					t.Fatalf("FromValue() error = %v, want errors.Is(ErrMalformedExpression)", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromValue() error = %v", err)
			}
			out, err := Marshal(expr)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Marshal() = %s, want %s", out, tt.want)
			}
		})
	}
}

// TestExpression_String smoke-tests the log rendering.
func TestExpression_String(t *testing.T) {
	expr := mustParse(t, `{">=":[{"var":"salary"},38700]}`)
	if got := expr.(*Operation).String(); got != `{">=":[{"var":"salary"},38700]}` {
		t.Errorf("String() = %s", got)
	}
}
