// internal/rules/operators.go
package rules

import (
	"strings"
	"time"

	"github.com/solatis/prospector/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the fixed operator vocabulary over a resolved field value and a
 * compiled operand. Values are coerced here, per operator, because the same
 * field can be compared as text by one rule and as a date by another.
 *
 * Operators:
 *   - is_empty/is_not_empty, is_true/is_false: presence and truthiness
 *   - contains/not_contains, starts_with/ends_with: case-insensitive text
 *   - equals/not_equals: case-insensitive text, or calendar day for dates
 *   - greater_than/less_than/..._equal: numeric
 *   - before/after/between: calendar-day date comparison
 *   - is_one_of/is_none_of: case-insensitive set membership
 *
 * Arrays: text operators match if any element matches, and the negated
 * forms (not_contains, not_equals, is_none_of) require that none does.
 */

// Compare applies op to a resolved, non-empty field value.
func Compare(op types.Operator, value any, operand Operand) bool {
	switch op {
	case types.OpIsTrue:
		return Truthy(value)
	case types.OpIsFalse:
		return Falsy(value)
	case types.OpContains:
		return anyText(value, operand, strings.Contains)
	case types.OpNotContains:
		return scalarOK(operand) && !anyText(value, operand, strings.Contains)
	case types.OpStartsWith:
		return anyText(value, operand, strings.HasPrefix)
	case types.OpEndsWith:
		return anyText(value, operand, strings.HasSuffix)
	case types.OpEquals:
		return compareEqual(value, operand)
	case types.OpNotEquals:
		return scalarOK(operand) && !compareEqual(value, operand)
	case types.OpGreaterThan:
		return compareNumeric(value, operand, func(a, b float64) bool { return a > b })
	case types.OpLessThan:
		return compareNumeric(value, operand, func(a, b float64) bool { return a < b })
	case types.OpGreaterThanEqual:
		return compareNumeric(value, operand, func(a, b float64) bool { return a >= b })
	case types.OpLessThanEqual:
		return compareNumeric(value, operand, func(a, b float64) bool { return a <= b })
	case types.OpBefore:
		return compareDate(value, operand, func(a, b int) bool { return a < b })
	case types.OpAfter:
		return compareDate(value, operand, func(a, b int) bool { return a > b })
	case types.OpBetween:
		return compareBetween(value, operand)
	case types.OpIsOneOf:
		return compareIn(value, operand)
	case types.OpIsNoneOf:
		if _, ok := operand.(MultiOperand); !ok {
			return false
		}
		return !compareIn(value, operand)
	default:
		return false
	}
}

// scalarOK reports whether operand is a usable scalar. Negated operators
// check it first so a malformed operand does not turn into a match.
func scalarOK(operand Operand) bool {
	_, ok := operand.(ScalarOperand)
	return ok
}

// anyText applies a case-insensitive string predicate to value (or to each
// element of an array value) against a scalar operand.
func anyText(value any, operand Operand, pred func(s, sub string) bool) bool {
	s, ok := operand.(ScalarOperand)
	if !ok {
		return false
	}
	needle := ToText(s.Value)
	if list := asList(value); list != nil {
		for _, elem := range list {
			if !IsEmpty(elem) && pred(ToText(elem), needle) {
				return true
			}
		}
		return false
	}
	return pred(ToText(value), needle)
}

// compareEqual is calendar-day equality when both sides read as dates and
// case-insensitive string equality otherwise.
func compareEqual(value any, operand Operand) bool {
	s, ok := operand.(ScalarOperand)
	if !ok {
		return false
	}
	if list := asList(value); list != nil {
		for _, elem := range list {
			if equalScalar(elem, s.Value) {
				return true
			}
		}
		return false
	}
	return equalScalar(value, s.Value)
}

func equalScalar(a, b any) bool {
	if isDateValue(a) || isDateValue(b) {
		da, okA := ToDate(a)
		db, okB := ToDate(b)
		if okA && okB {
			return sameDay(da, db)
		}
	}
	return ToText(a) == ToText(b)
}

// isDateValue reports whether v is a native date, as opposed to text that
// might parse as one. Plain strings are compared as text unless the other
// side is a date.
func isDateValue(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case map[string]any:
		_, ok := t["seconds"]
		return ok
	default:
		return false
	}
}

// compareNumeric coerces both sides to numbers; NaN on either side is false.
func compareNumeric(value any, operand Operand, cmp func(a, b float64) bool) bool {
	s, ok := operand.(ScalarOperand)
	if !ok {
		return false
	}
	a, okA := ToNumber(value)
	b, okB := ToNumber(s.Value)
	if !okA || !okB {
		return false
	}
	return cmp(a, b)
}

// compareDate compares calendar days; cmp receives the day ordering as ints.
func compareDate(value any, operand Operand, cmp func(a, b int) bool) bool {
	s, ok := operand.(ScalarOperand)
	if !ok {
		return false
	}
	a, okA := ToDate(value)
	b, okB := ToDate(s.Value)
	if !okA || !okB {
		return false
	}
	return cmp(dayOf(a).Compare(dayOf(b)), 0)
}

// compareBetween is an inclusive calendar-day range test. Reversed ranges are
// not reordered and match nothing.
func compareBetween(value any, operand Operand) bool {
	r, ok := operand.(RangeOperand)
	if !ok {
		return false
	}
	v, okV := ToDate(value)
	start, okS := ToDate(r.Start)
	end, okE := ToDate(r.End)
	if !okV || !okS || !okE {
		return false
	}
	day := dayOf(v)
	return !day.Before(dayOf(start)) && !day.After(dayOf(end))
}

// compareIn tests case-insensitive membership; array values match on any overlap.
func compareIn(value any, operand Operand) bool {
	m, ok := operand.(MultiOperand)
	if !ok {
		return false
	}
	candidates := make(map[string]struct{}, len(m.Values))
	for _, c := range m.Values {
		candidates[ToText(c)] = struct{}{}
	}
	if list := asList(value); list != nil {
		for _, elem := range list {
			if _, hit := candidates[ToText(elem)]; hit {
				return true
			}
		}
		return false
	}
	_, hit := candidates[ToText(value)]
	return hit
}
