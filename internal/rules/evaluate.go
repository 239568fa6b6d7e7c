// internal/rules/evaluate.go
package rules

import (
	"github.com/solatis/prospector/internal/types"
)

/*
 * Single-rule evaluation.
 *
 * Evaluates one CompiledRule against one record: resolve the field, apply
 * the empty-value policy, then compare. Total over its inputs: unresolved
 * fields, malformed operands and unknown operators all produce false.
 *
 * Evaluation flow:
 *   1. Resolve field (direct property, dotted path, or customFields)
 *   2. is_empty / is_not_empty answer from emptiness alone
 *   3. Any other operator on an empty value is false (early exit)
 *   4. Compare(op, value, operand)
 */

// EvaluateRule reports whether record satisfies rule, reading the rule's
// field from the record itself regardless of the rule's entity source.
func EvaluateRule(record types.Record, rule CompiledRule) bool {
	value, found := Resolve(record, rule.Field)
	if !found {
		value = nil
	}
	empty := IsEmpty(value)

	switch rule.Operator {
	case types.OpIsEmpty:
		return empty
	case types.OpIsNotEmpty:
		return !empty
	}

	if empty {
		return false
	}
	if _, bad := rule.Operand.(invalidOperand); bad {
		return false
	}
	return Compare(rule.Operator, value, rule.Operand)
}

// Evaluate compiles and evaluates a single rule. Convenience for callers
// holding one raw rule; passes that evaluate many records should compile once.
func Evaluate(record types.Record, rule types.FilterRule) bool {
	return EvaluateRule(record, Compile(rule))
}
