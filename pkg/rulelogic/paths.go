package rulelogic

import (
	"sort"
	"strconv"
	"strings"
)

// resolvePath looks up a dotted path in an evaluation context. The second
// return distinguishes "present with a null value" from "absent".
//
// At each map level an exact match on the full remaining path wins before
// segment descent, so a FactSet may carry literal dotted keys
// ("sponsor.licence_number") alongside nested structures. Numeric segments
// index lists; negative indexes count from the end.
func resolvePath(data any, path string) (any, bool) {
	if path == "" {
		return data, true
	}

	current := data
	remaining := path
	for {
		if m, ok := asMap(current); ok {
			if v, present := m[remaining]; present {
				return v, true
			}
		}

		segment := remaining
		rest := ""
		if i := strings.IndexByte(remaining, '.'); i >= 0 {
			segment, rest = remaining[:i], remaining[i+1:]
		}

		next, ok := descend(current, segment)
		if !ok {
			return nil, false
		}
		if rest == "" {
			return next, true
		}
		current, remaining = next, rest
	}
}

// descend resolves one path segment against a map or list.
func descend(data any, segment string) (any, bool) {
	if m, ok := asMap(data); ok {
		v, present := m[segment]
		return v, present
	}
	if list, ok := data.([]any); ok {
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, false
		}
		if idx < 0 {
			idx += len(list)
		}
		if idx < 0 || idx >= len(list) {
			return nil, false
		}
		return list[idx], true
	}
	return nil, false
}

// asMap widens both the plain JSON map type and FactSet to one map view.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case FactSet:
		return m, true
	default:
		return nil, false
	}
}

// pathString renders a var operand as a lookup path. Numeric operands index
// lists, mirroring how integer keys behave in the published rule corpus.
func pathString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case nil:
		return "", true
	default:
		if f, ok := coerceNumericNoString(val); ok {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return "", false
	}
}

// nullOrAbsent reports whether a path fails to resolve or resolves to null.
// This is the notion of "missing" shared by the missing and missing_some
// operators and by requirement classification.
func nullOrAbsent(data any, path string) bool {
	v, ok := resolvePath(data, path)
	return !ok || v == nil
}

// ScanVars returns the sorted, deduplicated set of fact paths an expression
// depends on: the string-literal paths of var nodes that carry no default
// operand. Vars with defaults are self-sufficient when the fact is absent,
// computed paths cannot be known statically, and the empty path refers to
// the whole context; none of those block a determination. Bodies of the
// collection operators are skipped, since their vars resolve against list
// elements rather than the fact set.
func ScanVars(expr Expression) []string {
	seen := map[string]struct{}{}
	scanVars(expr, seen)
	return sortedKeys(seen)
}

func scanVars(expr Expression, seen map[string]struct{}) {
	switch node := expr.(type) {
	case *ListExpr:
		for _, item := range node.Items {
			scanVars(item, seen)
		}
	case *Operation:
		switch node.Op {
		case OperatorVar:
			if len(node.Operands) == 1 {
				if lit, ok := node.Operands[0].(*Literal); ok {
					if path, ok := lit.Value.(string); ok && path != "" {
						seen[path] = struct{}{}
						return
					}
				}
			}
			for _, operand := range node.Operands {
				scanVars(operand, seen)
			}
		case OperatorMap, OperatorFilter, OperatorAll, OperatorNone, OperatorSome:
			if len(node.Operands) > 0 {
				scanVars(node.Operands[0], seen)
			}
		case OperatorReduce:
			if len(node.Operands) > 0 {
				scanVars(node.Operands[0], seen)
			}
			if len(node.Operands) > 2 {
				scanVars(node.Operands[2], seen)
			}
		default:
			for _, operand := range node.Operands {
				scanVars(operand, seen)
			}
		}
	}
}

// MissingFacts returns the sorted subset of an expression's statically
// scanned fact paths that are null or absent in facts.
func MissingFacts(expr Expression, facts FactSet) []string {
	missing := []string{}
	for _, path := range ScanVars(expr) {
		if nullOrAbsent(facts, path) {
			missing = append(missing, path)
		}
	}
	return missing
}

// Operators returns the sorted, deduplicated operator set used by an
// expression. Rule-set validation uses it to reject unknown operators
// before publication.
func Operators(expr Expression) []Operator {
	seen := map[string]struct{}{}
	Walk(expr, func(op *Operation) {
		seen[string(op.Op)] = struct{}{}
	})
	keys := sortedKeys(seen)
	ops := make([]Operator, len(keys))
	for i, k := range keys {
		ops[i] = Operator(k)
	}
	return ops
}

// Walk visits every Operation node in an expression tree, depth-first.
func Walk(expr Expression, visit func(*Operation)) {
	switch node := expr.(type) {
	case *Literal:
	case *ListExpr:
		for _, item := range node.Items {
			Walk(item, visit)
		}
	case *Operation:
		visit(node)
		for _, operand := range node.Operands {
			Walk(operand, visit)
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
