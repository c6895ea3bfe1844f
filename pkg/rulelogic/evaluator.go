package rulelogic

import (
	"fmt"
	"math"
	"strings"
)

// Evaluate applies an expression to an evaluation context and returns the
// resulting value. The context is the case's FactSet at the top level;
// collection operators re-enter with a single element as the context.
//
// Evaluation is pure and deterministic. The only failures are the three
// typed errors of this package; in particular a missing fact never fails,
// it resolves to the var default or null.
func Evaluate(expr Expression, data any) (any, error) {
	if fs, ok := data.(FactSet); ok {
		data = map[string]any(fs)
	}
	return evaluate(expr, data)
}

func evaluate(expr Expression, data any) (any, error) {
	switch node := expr.(type) {
	case *Literal:
		return node.Value, nil
	case *ListExpr:
		items := make([]any, len(node.Items))
		for i, item := range node.Items {
			v, err := evaluate(item, data)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case *Operation:
		return evalOperation(node, data)
	case nil:
		return nil, &MalformedExpressionError{Reason: "nil expression"}
	default:
		return nil, &MalformedExpressionError{Reason: fmt.Sprintf("unknown node type %T", expr)}
	}
}

func evalOperation(op *Operation, data any) (any, error) {
	switch op.Op {
	case OperatorVar:
		return evalVar(op, data)
	case OperatorMissing:
		return evalMissing(op, data)
	case OperatorMissingSome:
		return evalMissingSome(op, data)

	case OperatorNot:
		v, err := evalSingle(op, data)
		if err != nil {
			return nil, err
		}
		return !Truthy(v), nil
	case OperatorTruthy:
		v, err := evalSingle(op, data)
		if err != nil {
			return nil, err
		}
		return Truthy(v), nil
	case OperatorAnd, OperatorOr:
		return evalAndOr(op, data)

	case OperatorEqual, OperatorStrictEqual:
		a, b, err := evalPair(op, data)
		if err != nil {
			return nil, err
		}
		return Equal(a, b), nil
	case OperatorNotEqual, OperatorStrictNotEqual:
		a, b, err := evalPair(op, data)
		if err != nil {
			return nil, err
		}
		return !Equal(a, b), nil

	case OperatorGreaterThan, OperatorGreaterOrEqual, OperatorLessThan, OperatorLessOrEqual:
		return evalComparison(op, data)

	case OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide, OperatorModulo:
		return evalArithmetic(op, data)

	case OperatorMin, OperatorMax:
		return evalMinMax(op, data)
	case OperatorAbs:
		return evalAbs(op, data)

	case OperatorCat:
		return evalCat(op, data)
	case OperatorSubstr:
		return evalSubstr(op, data)
	case OperatorIn:
		return evalIn(op, data)

	case OperatorMerge:
		return evalMerge(op, data)
	case OperatorIf:
		return evalIf(op, data)

	case OperatorMap, OperatorFilter, OperatorAll, OperatorNone, OperatorSome:
		return evalCollection(op, data)
	case OperatorReduce:
		return evalReduce(op, data)

	case OperatorMethod:
		return evalMethod(op, data)

	default:
		return nil, &UnsupportedOperatorError{Op: op.Op}
	}
}

// evalOperands evaluates every operand eagerly, in order.
func evalOperands(op *Operation, data any) ([]any, error) {
	args := make([]any, len(op.Operands))
	for i, operand := range op.Operands {
		v, err := evaluate(operand, data)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func evalSingle(op *Operation, data any) (any, error) {
	if len(op.Operands) != 1 {
		return nil, arityError(op, "expected 1 operand, got %d", len(op.Operands))
	}
	return evaluate(op.Operands[0], data)
}

func evalPair(op *Operation, data any) (any, any, error) {
	if len(op.Operands) != 2 {
		return nil, nil, arityError(op, "expected 2 operands, got %d", len(op.Operands))
	}
	a, err := evaluate(op.Operands[0], data)
	if err != nil {
		return nil, nil, err
	}
	b, err := evaluate(op.Operands[1], data)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func arityError(op *Operation, format string, args ...any) error {
	return &MalformedExpressionError{Op: op.Op, Reason: fmt.Sprintf(format, args...)}
}

func evalVar(op *Operation, data any) (any, error) {
	if len(op.Operands) == 0 {
		return data, nil
	}

	pathVal, err := evaluate(op.Operands[0], data)
	if err != nil {
		return nil, err
	}
	path, ok := pathString(pathVal)
	if !ok {
		return nil, &MalformedExpressionError{Op: op.Op, Reason: "path must be a string or number"}
	}

	var def any
	if len(op.Operands) > 1 {
		if def, err = evaluate(op.Operands[1], data); err != nil {
			return nil, err
		}
	}

	if path == "" {
		return data, nil
	}
	if v, present := resolvePath(data, path); present {
		return v, nil
	}
	return def, nil
}

func evalMissing(op *Operation, data any) (any, error) {
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}

	keys := args
	if len(args) == 1 {
		if list, ok := args[0].([]any); ok {
			keys = list
		}
	}
	return missingKeys(op, keys, data)
}

func evalMissingSome(op *Operation, data any) (any, error) {
	if len(op.Operands) != 2 {
		return nil, arityError(op, "expected [minimum, keys], got %d operands", len(op.Operands))
	}
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}

	needF, ok := coerceNumeric(args[0])
	if !ok {
		return nil, &MalformedExpressionError{Op: op.Op, Reason: "minimum count must be a number"}
	}
	keys, ok := args[1].([]any)
	if !ok {
		return nil, &MalformedExpressionError{Op: op.Op, Reason: "second operand must be a list of keys"}
	}

	missing, err := missingKeys(op, keys, data)
	if err != nil {
		return nil, err
	}
	if len(keys)-len(missing.([]any)) >= int(needF) {
		return []any{}, nil
	}
	return missing, nil
}

func missingKeys(op *Operation, keys []any, data any) (any, error) {
	missing := []any{}
	for _, k := range keys {
		path, ok := pathString(k)
		if !ok {
			return nil, &MalformedExpressionError{Op: op.Op, Reason: "keys must be strings"}
		}
		if nullOrAbsent(data, path) {
			missing = append(missing, path)
		}
	}
	return missing, nil
}

// evalAndOr short-circuits: and returns the first falsy operand value, or
// returns the first truthy one; with no short circuit the last value wins.
func evalAndOr(op *Operation, data any) (any, error) {
	if len(op.Operands) == 0 {
		return nil, arityError(op, "expected at least 1 operand, got 0")
	}

	var v any
	var err error
	for _, operand := range op.Operands {
		if v, err = evaluate(operand, data); err != nil {
			return nil, err
		}
		if op.Op == OperatorAnd && !Truthy(v) {
			return v, nil
		}
		if op.Op == OperatorOr && Truthy(v) {
			return v, nil
		}
	}
	return v, nil
}

// evalComparison applies an ordered comparison pairwise across the operands,
// so three operands express a between check. A pair that cannot be ordered
// (neither numerically coercible nor two strings) compares false rather
// than failing.
func evalComparison(op *Operation, data any) (any, error) {
	if len(op.Operands) < 2 {
		return nil, arityError(op, "expected at least 2 operands, got %d", len(op.Operands))
	}
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(args); i++ {
		if !compareOrdered(op.Op, args[i], args[i+1]) {
			return false, nil
		}
	}
	return true, nil
}

func compareOrdered(op Operator, a, b any) bool {
	if na, aok := coerceNumeric(a); aok {
		if nb, bok := coerceNumeric(b); bok {
			switch op {
			case OperatorGreaterThan:
				return na > nb
			case OperatorGreaterOrEqual:
				return na >= nb
			case OperatorLessThan:
				return na < nb
			case OperatorLessOrEqual:
				return na <= nb
			}
			return false
		}
	}

	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		switch op {
		case OperatorGreaterThan:
			return as > bs
		case OperatorGreaterOrEqual:
			return as >= bs
		case OperatorLessThan:
			return as < bs
		case OperatorLessOrEqual:
			return as <= bs
		}
	}
	return false
}

// evalArithmetic coerces each operand to a number, treating non-coercible
// values as 0. Division and modulo fail on a zero divisor; nothing else in
// arithmetic can fail.
func evalArithmetic(op *Operation, data any) (any, error) {
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		nums[i], _ = coerceNumeric(a)
	}

	switch op.Op {
	case OperatorAdd:
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum, nil

	case OperatorSubtract:
		switch len(nums) {
		case 1:
			return -nums[0], nil
		case 2:
			return nums[0] - nums[1], nil
		default:
			return nil, arityError(op, "expected 1 or 2 operands, got %d", len(nums))
		}

	case OperatorMultiply:
		if len(nums) == 0 {
			return nil, arityError(op, "expected at least 1 operand, got 0")
		}
		product := 1.0
		for _, n := range nums {
			product *= n
		}
		return product, nil

	case OperatorDivide:
		if len(nums) != 2 {
			return nil, arityError(op, "expected 2 operands, got %d", len(nums))
		}
		if nums[1] == 0 {
			return nil, &DivisionByZeroError{Op: op.Op}
		}
		return nums[0] / nums[1], nil

	case OperatorModulo:
		if len(nums) != 2 {
			return nil, arityError(op, "expected 2 operands, got %d", len(nums))
		}
		if nums[1] == 0 {
			return nil, &DivisionByZeroError{Op: op.Op}
		}
		return floorMod(nums[0], nums[1]), nil
	}
	return nil, &UnsupportedOperatorError{Op: op.Op}
}

// floorMod is the floored modulo used by the published rule corpus: the
// result takes the divisor's sign, so -7 % 3 is 2.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// evalMinMax reduces the coercible operands; with no coercible operand the
// result is null.
func evalMinMax(op *Operation, data any) (any, error) {
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}

	var best float64
	found := false
	for _, a := range args {
		f, ok := coerceNumeric(a)
		if !ok {
			continue
		}
		if !found {
			best, found = f, true
			continue
		}
		if (op.Op == OperatorMin && f < best) || (op.Op == OperatorMax && f > best) {
			best = f
		}
	}
	if !found {
		return nil, nil
	}
	return best, nil
}

func evalAbs(op *Operation, data any) (any, error) {
	v, err := evalSingle(op, data)
	if err != nil {
		return nil, err
	}
	f, ok := coerceNumeric(v)
	if !ok {
		return nil, nil
	}
	return math.Abs(f), nil
}

func evalCat(op *Operation, data any) (any, error) {
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(Stringify(a))
	}
	return sb.String(), nil
}

// evalSubstr slices a string with Python slice semantics: a negative start
// counts from the end, and a negative length is an end offset from the end
// rather than a count.
func evalSubstr(op *Operation, data any) (any, error) {
	if len(op.Operands) < 2 || len(op.Operands) > 3 {
		return nil, arityError(op, "expected [string, start] or [string, start, length], got %d operands", len(op.Operands))
	}
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}

	s, ok := args[0].(string)
	if !ok {
		return nil, &MalformedExpressionError{Op: op.Op, Reason: "target must be a string"}
	}
	startF, ok := coerceNumeric(args[1])
	if !ok {
		return nil, &MalformedExpressionError{Op: op.Op, Reason: "start must be a number"}
	}

	if len(args) == 3 {
		lengthF, lok := coerceNumeric(args[2])
		if !lok {
			return nil, &MalformedExpressionError{Op: op.Op, Reason: "length must be a number"}
		}
		length := int(lengthF)
		return sliceString(s, int(startF), &length), nil
	}
	return sliceString(s, int(startF), nil), nil
}

func sliceString(s string, start int, length *int) string {
	runes := []rune(s)
	n := len(runes)

	begin := start
	if begin < 0 {
		begin += n
		if begin < 0 {
			begin = 0
		}
	}
	if begin > n {
		begin = n
	}

	end := n
	if length != nil {
		if *length >= 0 {
			end = begin + *length
			if end > n {
				end = n
			}
		} else {
			end = n + *length
			if end < 0 {
				end = 0
			}
		}
	}
	if end < begin {
		end = begin
	}
	return string(runes[begin:end])
}

// evalIn tests substring containment when the haystack is a string and
// membership when it is a list; any other haystack (including null) is
// simply not containing.
func evalIn(op *Operation, data any) (any, error) {
	needle, haystack, err := evalPair(op, data)
	if err != nil {
		return nil, err
	}

	switch h := haystack.(type) {
	case string:
		ns, ok := needle.(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(h, ns), nil
	case []any:
		for _, item := range h {
			if Equal(item, needle) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

// evalMerge flattens list operands one level; non-list operands pass
// through as single elements.
func evalMerge(op *Operation, data any) (any, error) {
	args, err := evalOperands(op, data)
	if err != nil {
		return nil, err
	}
	merged := []any{}
	for _, a := range args {
		if list, ok := a.([]any); ok {
			merged = append(merged, list...)
			continue
		}
		merged = append(merged, a)
	}
	return merged, nil
}

// evalIf walks condition/value pairs left to right, returning the value of
// the first truthy condition. An odd trailing operand is the else branch;
// with none, the result is null. Branches not taken are never evaluated.
func evalIf(op *Operation, data any) (any, error) {
	i := 0
	for i+1 < len(op.Operands) {
		cond, err := evaluate(op.Operands[i], data)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return evaluate(op.Operands[i+1], data)
		}
		i += 2
	}
	if i < len(op.Operands) {
		return evaluate(op.Operands[i], data)
	}
	return nil, nil
}

// evalCollection implements map, filter, all, none and some. Operand 0 must
// evaluate to a list; any other value behaves as the empty list, which makes
// all false, none true and some false. Operand 1 is evaluated once per
// element with the element as the context.
func evalCollection(op *Operation, data any) (any, error) {
	if len(op.Operands) != 2 {
		return nil, arityError(op, "expected [list, expression], got %d operands", len(op.Operands))
	}
	listVal, err := evaluate(op.Operands[0], data)
	if err != nil {
		return nil, err
	}
	items, _ := listVal.([]any)
	body := op.Operands[1]

	switch op.Op {
	case OperatorMap:
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = evaluate(body, item); err != nil {
				return nil, err
			}
		}
		return out, nil

	case OperatorFilter:
		out := []any{}
		for _, item := range items {
			v, err := evaluate(body, item)
			if err != nil {
				return nil, err
			}
			if Truthy(v) {
				out = append(out, item)
			}
		}
		return out, nil

	case OperatorAll:
		if len(items) == 0 {
			return false, nil
		}
		for _, item := range items {
			v, err := evaluate(body, item)
			if err != nil {
				return nil, err
			}
			if !Truthy(v) {
				return false, nil
			}
		}
		return true, nil

	case OperatorNone:
		for _, item := range items {
			v, err := evaluate(body, item)
			if err != nil {
				return nil, err
			}
			if Truthy(v) {
				return false, nil
			}
		}
		return true, nil

	case OperatorSome:
		for _, item := range items {
			v, err := evaluate(body, item)
			if err != nil {
				return nil, err
			}
			if Truthy(v) {
				return true, nil
			}
		}
		return false, nil
	}
	return nil, &UnsupportedOperatorError{Op: op.Op}
}

// evalReduce folds a list through operand 1, which sees the context
// {"current": element, "accumulator": value}. Operand 2 is the initial
// accumulator; when omitted the fold starts from null.
func evalReduce(op *Operation, data any) (any, error) {
	if len(op.Operands) < 2 || len(op.Operands) > 3 {
		return nil, arityError(op, "expected [list, expression, initial], got %d operands", len(op.Operands))
	}
	listVal, err := evaluate(op.Operands[0], data)
	if err != nil {
		return nil, err
	}
	items, _ := listVal.([]any)

	var acc any
	if len(op.Operands) == 3 {
		if acc, err = evaluate(op.Operands[2], data); err != nil {
			return nil, err
		}
	}

	for _, item := range items {
		scope := map[string]any{"current": item, "accumulator": acc}
		if acc, err = evaluate(op.Operands[1], scope); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// evalMethod dispatches a whitelisted string method: lower, upper, strip,
// startswith, endswith, replace. The enumeration is closed; nothing here
// reaches arbitrary code.
func evalMethod(op *Operation, data any) (any, error) {
	if len(op.Operands) < 2 || len(op.Operands) > 3 {
		return nil, arityError(op, "expected [target, name] or [target, name, args], got %d operands", len(op.Operands))
	}

	target, err := evaluate(op.Operands[0], data)
	if err != nil {
		return nil, err
	}
	nameVal, err := evaluate(op.Operands[1], data)
	if err != nil {
		return nil, err
	}
	name, ok := nameVal.(string)
	if !ok {
		return nil, &MalformedExpressionError{Op: op.Op, Reason: "method name must be a string"}
	}

	var args []any
	if len(op.Operands) == 3 {
		argsVal, err := evaluate(op.Operands[2], data)
		if err != nil {
			return nil, err
		}
		if args, ok = argsVal.([]any); !ok {
			return nil, &MalformedExpressionError{Op: op.Op, Reason: "method arguments must be a list"}
		}
	}

	s, ok := target.(string)
	if !ok {
		return nil, &MalformedExpressionError{Op: op.Op, Reason: "method target must be a string"}
	}

	switch MethodName(name) {
	case MethodLower:
		if err := requireMethodArity(op, name, args, 0); err != nil {
			return nil, err
		}
		return strings.ToLower(s), nil
	case MethodUpper:
		if err := requireMethodArity(op, name, args, 0); err != nil {
			return nil, err
		}
		return strings.ToUpper(s), nil
	case MethodStrip:
		if err := requireMethodArity(op, name, args, 0); err != nil {
			return nil, err
		}
		return strings.TrimSpace(s), nil
	case MethodStartsWith:
		strs, err := methodStringArgs(op, name, args, 1)
		if err != nil {
			return nil, err
		}
		return strings.HasPrefix(s, strs[0]), nil
	case MethodEndsWith:
		strs, err := methodStringArgs(op, name, args, 1)
		if err != nil {
			return nil, err
		}
		return strings.HasSuffix(s, strs[0]), nil
	case MethodReplace:
		strs, err := methodStringArgs(op, name, args, 2)
		if err != nil {
			return nil, err
		}
		return strings.ReplaceAll(s, strs[0], strs[1]), nil
	default:
		return nil, &UnsupportedOperatorError{Op: op.Op, Method: name}
	}
}

func requireMethodArity(op *Operation, name string, args []any, want int) error {
	if len(args) != want {
		return &MalformedExpressionError{
			Op:     op.Op,
			Reason: fmt.Sprintf("method %q takes %d argument(s), got %d", name, want, len(args)),
		}
	}
	return nil
}

func methodStringArgs(op *Operation, name string, args []any, want int) ([]string, error) {
	if err := requireMethodArity(op, name, args, want); err != nil {
		return nil, err
	}
	out := make([]string, want)
	for i, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, &MalformedExpressionError{
				Op:     op.Op,
				Reason: fmt.Sprintf("method %q arguments must be strings", name),
			}
		}
		out[i] = s
	}
	return out, nil
}
