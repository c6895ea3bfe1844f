package rulelogic

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FactSet maps dotted-path fact keys to values describing a case. Keys
// match exactly (no case folding); insertion order is irrelevant. Values
// live in the JSON domain: nil, bool, number, string, []any and
// map[string]any, with json.Number accepted wherever a number is.
type FactSet map[string]any

// coerceNumeric converts a value to float64 under the expression language's
// coercion rules: numbers convert directly, bools become 0/1, and numeric
// strings parse. Everything else reports false.
func coerceNumeric(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// numericValue is the equality-side counterpart of coerceNumeric: it treats
// numbers and bools as numeric but never parses strings, so "1" == 1 stays
// false while 1 == 1.0 and true == 1 hold.
func numericValue(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return coerceNumeric(v)
}

// Truthy reports the truthiness of a value: null, false, zero, the empty
// string, and empty lists and maps are falsy; everything else is truthy.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	case FactSet:
		return len(val) > 0
	default:
		if f, ok := coerceNumericNoString(val); ok {
			return f != 0
		}
		return true
	}
}

// coerceNumericNoString converts numeric kinds only; used where a string has
// already been handled.
func coerceNumericNoString(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return coerceNumeric(v)
}

// Equal implements the language's value equality: numeric values (including
// bools) compare numerically across representations, strings compare
// exactly, and lists and maps compare element-wise under the same rules.
// There is no cross-type coercion beyond numeric.
func Equal(a, b any) bool {
	if na, ok := numericValue(a); ok {
		nb, bok := numericValue(b)
		return bok && na == nb
	}
	if _, bIsNum := numericValue(b); bIsNum {
		return false
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, present := bv[k]
			if !present || !Equal(v, bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Stringify renders a value for string concatenation: null becomes the empty
// string, numbers drop a trailing ".0" on integral values, and composite
// values render as compact JSON.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case json.Number:
		return string(val)
	case []any, map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		if f, ok := coerceNumericNoString(val); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}
