package rulelogic

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) Expression {
	t.Helper()
	expr, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", src, err)
	}
	return expr
}

func mustData(t *testing.T, src string) any {
	t.Helper()
	if src == "" {
		return nil
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode data %s: %v", src, err)
	}
	return v
}

// asJSON renders a value in canonical compact JSON so results can be
// compared regardless of numeric representation (json.Number vs float64).
func asJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %#v: %v", v, err)
	}
	return string(b)
}

func evalJSON(t *testing.T, expr, data string) (any, error) {
	t.Helper()
	return Evaluate(mustParse(t, expr), mustData(t, data))
}

// TestEvaluate_Var tests data access: dotted paths, defaults, and the
// present-vs-absent distinction.
func TestEvaluate_Var(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{
			name: "top-level key",
			expr: `{"var": "salary"}`,
			data: `{"salary": 50000}`,
			want: 50000.0,
		},
		{
			name: "absent key yields null without error",
			expr: `{"var": "missing_key"}`,
			data: `{}`,
			want: nil,
		},
		{
			name: "nested dotted path",
			expr: `{"var": "sponsor.licence.number"}`,
			data: `{"sponsor": {"licence": {"number": "ABC123"}}}`,
			want: "ABC123",
		},
		{
			name: "literal dotted key wins over descent",
			expr: `{"var": "sponsor.licence"}`,
			data: `{"sponsor.licence": "flat", "sponsor": {"licence": "nested"}}`,
			want: "flat",
		},
		{
			name: "present null is not replaced by default",
			expr: `{"var": ["salary", 99]}`,
			data: `{"salary": null}`,
			want: nil,
		},
		{
			name: "default used when key absent",
			expr: `{"var": ["salary", 38700]}`,
			data: `{}`,
			want: 38700.0,
		},
		{
			name: "empty path returns whole context",
			expr: `{"var": ""}`,
			data: `{"a": 1}`,
			want: map[string]any{"a": 1.0},
		},
		{
			name: "no operands returns whole context",
			expr: `{"var": []}`,
			data: `{"a": 1}`,
			want: map[string]any{"a": 1.0},
		},
		{
			name: "numeric path indexes a list context",
			expr: `{"var": 1}`,
			data: `["a", "b", "c"]`,
			want: "b",
		},
		{
			name: "negative index counts from the end",
			expr: `{"var": "visas.-1"}`,
			data: `{"visas": ["student", "work"]}`,
			want: "work",
		},
		{
			name: "path through a list",
			expr: `{"var": "applicants.0.age"}`,
			data: `{"applicants": [{"age": 34}]}`,
			want: 34.0,
		},
		{
			name: "computed path",
			expr: `{"var": {"cat": ["sal", "ary"]}}`,
			data: `{"salary": 41000}`,
			want: 41000.0,
		},
		{
			name: "index out of range yields null",
			expr: `{"var": "visas.5"}`,
			data: `{"visas": ["student"]}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Missing tests the missing and missing_some operators,
// including the null-counts-as-missing rule.
func TestEvaluate_Missing(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{
			name: "variadic keys",
			expr: `{"missing": ["salary", "age"]}`,
			data: `{"salary": 50000}`,
			want: []any{"age"},
		},
		{
			name: "single list operand",
			expr: `{"missing": [["salary", "age"]]}`,
			data: `{}`,
			want: []any{"salary", "age"},
		},
		{
			name: "null value counts as missing",
			expr: `{"missing": ["salary"]}`,
			data: `{"salary": null}`,
			want: []any{"salary"},
		},
		{
			name: "nothing missing",
			expr: `{"missing": ["salary"]}`,
			data: `{"salary": 0}`,
			want: []any{},
		},
		{
			name: "no keys",
			expr: `{"missing": []}`,
			data: `{}`,
			want: []any{},
		},
		{
			name: "missing_some threshold met",
			expr: `{"missing_some": [1, ["salary", "pension"]]}`,
			data: `{"salary": 50000}`,
			want: []any{},
		},
		{
			name: "missing_some threshold not met",
			expr: `{"missing_some": [2, ["salary", "pension", "savings"]]}`,
			data: `{"salary": 50000}`,
			want: []any{"pension", "savings"},
		},
		{
			name: "missing composes with if",
			expr: `{"if": [{"missing": ["salary"]}, "incomplete", "complete"]}`,
			data: `{"salary": 50000}`,
			want: "complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Logic tests !, !!, and, or, including the value-returning
// semantics of and/or.
func TestEvaluate_Logic(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{"not true", `{"!": [true]}`, `{}`, false},
		{"not empty string", `{"!": [""]}`, `{}`, true},
		{"not zero", `{"!": [0]}`, `{}`, true},
		{"truthy of list", `{"!!": [[1]]}`, `{}`, true},
		{"truthy of empty list", `{"!!": [[]]}`, `{}`, false},
		{"truthy of absent var", `{"!!": [{"var": "x"}]}`, `{}`, false},
		{"and returns last truthy value", `{"and": [1, "yes"]}`, `{}`, "yes"},
		{"and returns first falsy value", `{"and": [1, 0, 2]}`, `{}`, 0.0},
		{"or returns first truthy value", `{"or": [0, "", "fallback"]}`, `{}`, "fallback"},
		{"or returns last falsy value", `{"or": [0, ""]}`, `{}`, ""},
		{"single operand and", `{"and": [7]}`, `{}`, 7.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_ShortCircuit verifies that and/or stop evaluating once the
// result is decided; the skipped operand here would otherwise fail.
func TestEvaluate_ShortCircuit(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want any
	}{
		{"and stops at falsy", `{"and": [false, {"/": [1, 0]}]}`, false},
		{"or stops at truthy", `{"or": [true, {"/": [1, 0]}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, `{}`)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Equality tests ==/===/!=/!==; equality coerces only across
// numeric representations, never between strings and numbers.
func TestEvaluate_Equality(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{"integer equals float", `{"==": [1, 1.0]}`, `{}`, true},
		{"numeric string is not a number", `{"==": ["1", 1]}`, `{}`, false},
		{"bool compares numerically", `{"==": [true, 1]}`, `{}`, true},
		{"false equals zero", `{"==": [false, 0]}`, `{}`, true},
		{"strict mirrors loose", `{"===": ["1", 1]}`, `{}`, false},
		{"strings compare exactly", `{"==": ["abc", "abc"]}`, `{}`, true},
		{"null equals null", `{"==": [null, null]}`, `{}`, true},
		{"null is not zero", `{"==": [null, 0]}`, `{}`, false},
		{"lists compare element-wise", `{"==": [[1, "a"], [1.0, "a"]]}`, `{}`, true},
		{"lists of different length", `{"==": [[1], [1, 2]]}`, `{}`, false},
		{"not equal", `{"!=": [1, 2]}`, `{}`, true},
		{"strict not equal", `{"!==": [1, 1.0]}`, `{}`, false},
		{"var against literal", `{"==": [{"var": "visa_type"}, "skilled_worker"]}`, `{"visa_type": "skilled_worker"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Comparisons tests the ordered operators, which coerce
// numerically where possible, compare string pairs lexicographically, and
// yield false for incomparable pairs instead of failing.
func TestEvaluate_Comparisons(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{
			name: "salary meets threshold",
			expr: `{">=": [{"var": "salary"}, 38700]}`,
			data: `{"salary": 50000}`,
			want: true,
		},
		{
			name: "salary below threshold",
			expr: `{">=": [{"var": "salary"}, 38700]}`,
			data: `{"salary": 30000}`,
			want: false,
		},
		{"numeric string coerces", `{">": ["10", 9]}`, `{}`, true},
		{"bool coerces", `{">": [true, 0]}`, `{}`, true},
		{"string pair compares lexicographically", `{"<": ["apple", "banana"]}`, `{}`, true},
		{"lexicographic not numeric", `{"<": ["10", "9"]}`, `{}`, true},
		{"incomparable pair is false", `{"<": [null, 1]}`, `{}`, false},
		{"list operand is false", `{">": [[1], 0]}`, `{}`, false},
		{"between chain holds", `{"<": [18, {"var": "age"}, 66]}`, `{"age": 35}`, true},
		{"between chain fails", `{"<": [18, {"var": "age"}, 66]}`, `{"age": 70}`, false},
		{"chain with equal bound", `{"<=": [18, 18, 66]}`, `{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Arithmetic tests + - * / %; non-coercible operands become 0
// and only a zero divisor can fail.
func TestEvaluate_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{"variadic sum", `{"+": [1, 2, 3.5]}`, `{}`, 6.5},
		{"sum coerces numeric strings", `{"+": ["10", 5]}`, `{}`, 15.0},
		{"non-coercible operand is zero", `{"+": [10, "abc"]}`, `{}`, 10.0},
		{"null is zero", `{"+": [10, null]}`, `{}`, 10.0},
		{"empty sum", `{"+": []}`, `{}`, 0.0},
		{"subtraction", `{"-": [10, 4]}`, `{}`, 6.0},
		{"unary negation", `{"-": [5]}`, `{}`, -5.0},
		{"multiplication", `{"*": [3, 4, 0.5]}`, `{}`, 6.0},
		{"division", `{"/": [10, 4]}`, `{}`, 2.5},
		{"modulo", `{"%": [7, 3]}`, `{}`, 1.0},
		{"modulo takes divisor sign", `{"%": [-7, 3]}`, `{}`, 2.0},
		{"modulo negative divisor", `{"%": [7, -3]}`, `{}`, -2.0},
		{"weekly to annual salary", `{"*": [{"var": "weekly_pay"}, 52]}`, `{"weekly_pay": 800}`, 41600.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_MinMaxAbs tests min/max/abs, which skip non-coercible
// operands and yield null when nothing is coercible.
func TestEvaluate_MinMaxAbs(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want any
	}{
		{"min", `{"min": [3, 1, 2]}`, 1.0},
		{"max", `{"max": [3, 1, 2]}`, 3.0},
		{"min skips non-coercible", `{"min": [3, "abc", 1]}`, 1.0},
		{"min of nothing coercible", `{"min": ["abc", null]}`, nil},
		{"max of empty", `{"max": []}`, nil},
		{"abs negative", `{"abs": [-7.5]}`, 7.5},
		{"abs positive", `{"abs": [7.5]}`, 7.5},
		{"abs non-coercible", `{"abs": ["abc"]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, `{}`)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Strings tests cat, substr, in on strings, and the method
// whitelist.
func TestEvaluate_Strings(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{"cat", `{"cat": ["CoS ", {"var": "ref"}]}`, `{"ref": "X123"}`, "CoS X123"},
		{"cat null is empty", `{"cat": ["a", null, "b"]}`, `{}`, "ab"},
		{"cat integral number", `{"cat": ["n=", 42]}`, `{}`, "n=42"},
		{"cat bool", `{"cat": [true, "!"]}`, `{}`, "true!"},
		{"substr from start", `{"substr": ["jsonlogic", 4]}`, `{}`, "logic"},
		{"substr negative start", `{"substr": ["jsonlogic", -5]}`, `{}`, "logic"},
		{"substr with length", `{"substr": ["jsonlogic", 1, 3]}`, `{}`, "son"},
		{"substr negative length", `{"substr": ["jsonlogic", 4, -2]}`, `{}`, "log"},
		{"substr start past end", `{"substr": ["abc", 10]}`, `{}`, ""},
		{"substr negative start clamps", `{"substr": ["abc", -10]}`, `{}`, "abc"},
		{"substr counts runes", `{"substr": ["héllo", 1, 2]}`, `{}`, "él"},
		{"in substring", `{"in": ["Spring", "Springfield"]}`, `{}`, true},
		{"in substring absent", `{"in": ["field", "Spring"]}`, `{}`, false},
		{"in non-string needle on string", `{"in": [1, "111"]}`, `{}`, false},
		{"in list membership", `{"in": [{"var": "visa_type"}, ["skilled_worker", "global_talent"]]}`, `{"visa_type": "global_talent"}`, true},
		{"in list numeric equality", `{"in": [1, [1.0, 2.0]]}`, `{}`, true},
		{"in null haystack", `{"in": ["a", null]}`, `{}`, false},
		{"method lower", `{"method": [{"var": "code"}, "lower"]}`, `{"code": "SOC2231"}`, "soc2231"},
		{"method upper", `{"method": ["ok", "upper"]}`, `{}`, "OK"},
		{"method strip", `{"method": ["  padded  ", "strip"]}`, `{}`, "padded"},
		{"method startswith", `{"method": ["skilled_worker", "startswith", ["skilled"]]}`, `{}`, true},
		{"method endswith", `{"method": ["skilled_worker", "endswith", ["worker"]]}`, `{}`, true},
		{"method replace", `{"method": ["a-b-c", "replace", ["-", "."]]}`, `{}`, "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_MergeAndIf tests merge flattening and lazy if branching.
func TestEvaluate_MergeAndIf(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{"merge flattens one level", `{"merge": [[1, 2], 3, [4, [5]]]}`, `{}`, []any{1.0, 2.0, 3.0, 4.0, []any{5.0}}},
		{"merge of nothing", `{"merge": []}`, `{}`, []any{}},
		{"if true branch", `{"if": [true, "yes", "no"]}`, `{}`, "yes"},
		{"if false branch", `{"if": [false, "yes", "no"]}`, `{}`, "no"},
		{"if pair chain", `{"if": [false, 1, false, 2, true, 3, 4]}`, `{}`, 3.0},
		{"if falls through to else", `{"if": [false, 1, false, 2, 9]}`, `{}`, 9.0},
		{"if without else", `{"if": [false, 1]}`, `{}`, nil},
		{"if with no operands", `{"if": []}`, `{}`, nil},
		{"if single operand is else", `{"if": ["only"]}`, `{}`, "only"},
		{"untaken branch never evaluated", `{"if": [true, "safe", {"/": [1, 0]}]}`, `{}`, "safe"},
		{"untaken condition arm skipped", `{"if": [false, {"/": [1, 0]}, "safe"]}`, `{}`, "safe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Collections tests map/filter/all/none/some, including the
// empty-list verdicts and the non-list-operand fallback.
func TestEvaluate_Collections(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{
			name: "map doubles",
			expr: `{"map": [{"var": "nums"}, {"*": [{"var": ""}, 2]}]}`,
			data: `{"nums": [1, 2, 3]}`,
			want: []any{2.0, 4.0, 6.0},
		},
		{
			name: "map over non-list is empty",
			expr: `{"map": [{"var": "absent"}, {"var": ""}]}`,
			data: `{}`,
			want: []any{},
		},
		{
			name: "filter keeps matches",
			expr: `{"filter": [{"var": "nums"}, {">": [{"var": ""}, 1]}]}`,
			data: `{"nums": [1, 2, 3]}`,
			want: []any{2.0, 3.0},
		},
		{
			name: "all holds",
			expr: `{"all": [{"var": "dependants"}, {">=": [{"var": "age"}, 18]}]}`,
			data: `{"dependants": [{"age": 21}, {"age": 34}]}`,
			want: true,
		},
		{
			name: "all fails on one element",
			expr: `{"all": [{"var": "dependants"}, {">=": [{"var": "age"}, 18]}]}`,
			data: `{"dependants": [{"age": 21}, {"age": 12}]}`,
			want: false,
		},
		{
			name: "all of empty list is false",
			expr: `{"all": [[], {"var": ""}]}`,
			data: `{}`,
			want: false,
		},
		{
			name: "all over non-list is false",
			expr: `{"all": [{"var": "absent"}, true]}`,
			data: `{}`,
			want: false,
		},
		{
			name: "none of empty list is true",
			expr: `{"none": [[], {"var": ""}]}`,
			data: `{}`,
			want: true,
		},
		{
			name: "none rejects on match",
			expr: `{"none": [{"var": "convictions"}, {"==": [{"var": "type"}, "serious"]}]}`,
			data: `{"convictions": [{"type": "serious"}]}`,
			want: false,
		},
		{
			name: "some of empty list is false",
			expr: `{"some": [[], true]}`,
			data: `{}`,
			want: false,
		},
		{
			name: "some finds a match",
			expr: `{"some": [{"var": "sponsorships"}, {"==": [{"var": "status"}, "active"]}]}`,
			data: `{"sponsorships": [{"status": "lapsed"}, {"status": "active"}]}`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Reduce tests folding with the {current, accumulator} scope.
func TestEvaluate_Reduce(t *testing.T) {
	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{
			name: "sum with initial",
			expr: `{"reduce": [{"var": "nums"}, {"+": [{"var": "current"}, {"var": "accumulator"}]}, 0]}`,
			data: `{"nums": [1, 2, 3, 4]}`,
			want: 10.0,
		},
		{
			name: "initial returned for empty list",
			expr: `{"reduce": [[], {"+": [{"var": "current"}, {"var": "accumulator"}]}, 42]}`,
			data: `{}`,
			want: 42.0,
		},
		{
			name: "missing initial starts from null",
			expr: `{"reduce": [[1, 2], {"+": [{"var": "current"}, {"var": "accumulator"}]}]}`,
			data: `{}`,
			want: 3.0,
		},
		{
			name: "string fold",
			expr: `{"reduce": [["a", "b"], {"cat": [{"var": "accumulator"}, {"var": "current"}]}, ""]}`,
			data: `{}`,
			want: "ab",
		},
		{
			name: "non-list input returns initial",
			expr: `{"reduce": [{"var": "absent"}, {"var": "current"}, "initial"]}`,
			data: `{}`,
			want: "initial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalJSON(t, tt.expr, tt.data)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if asJSON(t, got) != asJSON(t, tt.want) {
				t.Errorf("Evaluate() = %s, want %s", asJSON(t, got), asJSON(t, tt.want))
			}
		})
	}
}

// TestEvaluate_Errors tests the error taxonomy: which expressions fail,
// and with which sentinel.
func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr error
	}{
		{"division by zero", `{"/": [10, 0]}`, ErrDivisionByZero},
		{"modulo by zero", `{"%": [10, 0]}`, ErrDivisionByZero},
		{"unknown operator", `{"frobnicate": [1]}`, ErrUnsupportedOperator},
		{"unknown method", `{"method": ["x", "casefold"]}`, ErrUnsupportedOperator},
		{"and with no operands", `{"and": []}`, ErrMalformedExpression},
		{"equality needs two operands", `{"==": [1]}`, ErrMalformedExpression},
		{"comparison needs two operands", `{">": [1]}`, ErrMalformedExpression},
		{"subtract arity", `{"-": [1, 2, 3]}`, ErrMalformedExpression},
		{"multiply needs operands", `{"*": []}`, ErrMalformedExpression},
		{"substr non-string target", `{"substr": [5, 1]}`, ErrMalformedExpression},
		{"substr non-numeric start", `{"substr": ["abc", "x"]}`, ErrMalformedExpression},
		{"method non-string target", `{"method": [5, "lower"]}`, ErrMalformedExpression},
		{"method argument arity", `{"method": ["x", "replace", ["-"]]}`, ErrMalformedExpression},
		{"var computed non-path", `{"var": [["a"]]}`, ErrMalformedExpression},
		{"missing_some needs list", `{"missing_some": [1, "salary"]}`, ErrMalformedExpression},
		{"error propagates from operand", `{"+": [1, {"/": [1, 0]}]}`, ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evalJSON(t, tt.expr, `{}`)
			if err == nil {
				t.Fatalf("Evaluate() error = nil, want %v", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Evaluate() error = %v, want errors.Is(%v)", err, tt.wantErr)
			}
		})
	}
}

// TestEvaluate_ErrorDetails checks the typed error fields callers report on.
func TestEvaluate_ErrorDetails(t *testing.T) {
	_, err := evalJSON(t, `{"/": [10, 0]}`, `{}`)
	var divErr *DivisionByZeroError
	if !errors.As(err, &divErr) {
		t.Fatalf("Evaluate() error = %v, want *DivisionByZeroError", err)
	}
	if divErr.Op != OperatorDivide {
		t.Errorf("DivisionByZeroError.Op = %q, want %q", divErr.Op, OperatorDivide)
	}

	_, err = evalJSON(t, `{"method": ["x", "casefold"]}`, `{}`)
	var opErr *UnsupportedOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("Evaluate() error = %v, want *UnsupportedOperatorError", err)
	}
	if opErr.Method != "casefold" {
		t.Errorf("UnsupportedOperatorError.Method = %q, want %q", opErr.Method, "casefold")
	}
}

// TestEvaluate_FactSetContext verifies FactSet works directly as the
// evaluation context, including for whole-context access.
func TestEvaluate_FactSetContext(t *testing.T) {
	facts := FactSet{"salary": 50000, "role": map[string]any{"soc": "2231"}}

	got, err := Evaluate(mustParse(t, `{">=": [{"var": "salary"}, 38700]}`), facts)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != true {
		t.Errorf("Evaluate() = %v, want true", got)
	}

	got, err = Evaluate(mustParse(t, `{"var": "role.soc"}`), facts)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != "2231" {
		t.Errorf("Evaluate() = %v, want 2231", got)
	}
}

// TestEvaluate_Deterministic re-evaluates a compound expression many times
// and requires identical results; the evaluator keeps no state between
// calls.
func TestEvaluate_Deterministic(t *testing.T) {
	expr := mustParse(t, `{"if": [
		{"and": [
			{">=": [{"var": "salary"}, 38700]},
			{"in": [{"var": "visa_type"}, ["skilled_worker", "global_talent"]]},
			{"none": [{"var": "convictions"}, {"==": [{"var": "type"}, "serious"]}]}
		]},
		{"cat": ["eligible:", {"var": "visa_type"}]},
		"ineligible"
	]}`)
	data := mustData(t, `{
		"salary": 50000,
		"visa_type": "skilled_worker",
		"convictions": [{"type": "minor"}]
	}`)

	first, err := Evaluate(expr, data)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := asJSON(t, first)
	for i := 0; i < 100; i++ {
		got, err := Evaluate(expr, data)
		if err != nil {
			t.Fatalf("Evaluate() iteration %d error = %v", i, err)
		}
		if asJSON(t, got) != want {
			t.Fatalf("Evaluate() iteration %d = %s, want %s", i, asJSON(t, got), want)
		}
	}
}
