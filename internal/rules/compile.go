// internal/rules/compile.go
package rules

import (
	"fmt"

	"github.com/solatis/prospector/internal/types"
)

/*
 * Rule compilation and validation.
 *
 * Compiles types.FilterRule to CompiledRule: the wire-level `value any` is
 * replaced by an Operand whose variant is chosen by operator category, so
 * the evaluator switches on a closed set of shapes instead of re-inspecting
 * JSON-decoded values for every record.
 *
 * Operator categories:
 *   - presence (is_empty, is_not_empty, is_true, is_false): NoOperand
 *   - scalar (text, numeric, date comparisons): ScalarOperand
 *   - range (between): RangeOperand
 *   - multi (is_one_of, is_none_of): MultiOperand
 *
 * Two entry points with different failure policies:
 *   - Compile is lenient. A malformed operand compiles to invalidOperand and
 *     the rule simply never matches. Used by the engine, which must keep
 *     rendering records even for half-edited or stale presets.
 *   - Validate is strict and returns an error. Used at the API boundary so
 *     clients learn about broken rules before they are saved.
 */

// Operand is the compiled comparison value of a rule.
type Operand interface {
	isOperand()
}

// NoOperand is used by presence and boolean operators.
type NoOperand struct{}

// ScalarOperand carries a single comparison value.
type ScalarOperand struct {
	Value any
}

// RangeOperand carries an inclusive [Start, End] pair.
type RangeOperand struct {
	Start any
	End   any
}

// MultiOperand carries a set of candidate values.
type MultiOperand struct {
	Values []any
}

// invalidOperand marks a rule whose value did not fit its operator.
type invalidOperand struct{}

func (NoOperand) isOperand()      {}
func (ScalarOperand) isOperand()  {}
func (RangeOperand) isOperand()   {}
func (MultiOperand) isOperand()   {}
func (invalidOperand) isOperand() {}

// CountCondition is the compiled threshold of a count aggregation.
type CountCondition struct {
	Operator types.Operator
	Operand  Operand
}

// CompiledRule is a pre-processed rule ready for evaluation.
type CompiledRule struct {
	ID          string
	Field       string
	Operator    types.Operator
	Operand     Operand
	Gate        types.LogicGate
	Source      types.EntitySource
	Aggregation types.AggregationType
	Count       CountCondition
}

// operatorCategory groups operators by the operand shape they take.
type operatorCategory int

const (
	categoryUnknown operatorCategory = iota
	categoryPresence
	categoryScalar
	categoryRange
	categoryMulti
)

func categoryOf(op types.Operator) operatorCategory {
	switch op {
	case types.OpIsEmpty, types.OpIsNotEmpty, types.OpIsTrue, types.OpIsFalse:
		return categoryPresence
	case types.OpContains, types.OpNotContains, types.OpEquals, types.OpNotEquals,
		types.OpStartsWith, types.OpEndsWith,
		types.OpGreaterThan, types.OpLessThan, types.OpGreaterThanEqual, types.OpLessThanEqual,
		types.OpBefore, types.OpAfter:
		return categoryScalar
	case types.OpBetween:
		return categoryRange
	case types.OpIsOneOf, types.OpIsNoneOf:
		return categoryMulti
	default:
		return categoryUnknown
	}
}

// isCountOperator reports whether op may be used as a count threshold.
func isCountOperator(op types.Operator) bool {
	switch op {
	case types.OpEquals, types.OpGreaterThan, types.OpLessThan,
		types.OpGreaterThanEqual, types.OpLessThanEqual, types.OpBetween:
		return true
	default:
		return false
	}
}

// Compile pre-processes a rule. It never fails: shapes that do not fit the
// operator compile to an operand that never matches.
func Compile(rule types.FilterRule) CompiledRule {
	rule.Normalize()
	compiled := CompiledRule{
		ID:          rule.ID,
		Field:       rule.Field,
		Operator:    rule.Operator,
		Operand:     compileOperand(rule.Operator, rule.Value),
		Gate:        rule.LogicGate,
		Source:      rule.EntitySource,
		Aggregation: rule.AggregationType,
	}
	if rule.AggregationType == types.AggregateCount {
		compiled.Count = CountCondition{
			Operator: rule.CountOperator,
			Operand:  compileOperand(rule.CountOperator, rule.CountValue),
		}
	}
	return compiled
}

// CompileChain compiles every rule of a chain, preserving order.
func CompileChain(rules []types.FilterRule) []CompiledRule {
	out := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, Compile(r))
	}
	return out
}

// compileOperand picks the operand variant for op.
func compileOperand(op types.Operator, value any) Operand {
	switch categoryOf(op) {
	case categoryPresence:
		return NoOperand{}
	case categoryScalar:
		if list := asList(value); list != nil {
			// A scalar operator given a one-element list is a common UI
			// artefact of switching operators; anything longer is malformed.
			if len(list) == 1 {
				return ScalarOperand{Value: list[0]}
			}
			return invalidOperand{}
		}
		if IsEmpty(value) {
			return invalidOperand{}
		}
		return ScalarOperand{Value: value}
	case categoryRange:
		list := asList(value)
		if len(list) != 2 || IsEmpty(list[0]) || IsEmpty(list[1]) {
			return invalidOperand{}
		}
		return RangeOperand{Start: list[0], End: list[1]}
	case categoryMulti:
		if list := asList(value); list != nil {
			return MultiOperand{Values: list}
		}
		if IsEmpty(value) {
			return MultiOperand{}
		}
		return MultiOperand{Values: []any{value}}
	default:
		return invalidOperand{}
	}
}

// Validate checks a rule strictly. Returned errors wrap types.ErrInvalidRule
// or types.ErrInvalidOperator.
func Validate(rule types.FilterRule) error {
	rule.Normalize()

	if rule.Field == "" {
		return fmt.Errorf("%w: rule %q has no field", types.ErrInvalidRule, rule.ID)
	}
	if SplitPath(rule.Field) == nil {
		return fmt.Errorf("%w: rule %q field %q is not a valid path", types.ErrInvalidRule, rule.ID, rule.Field)
	}
	if categoryOf(rule.Operator) == categoryUnknown {
		return fmt.Errorf("%w: %q", types.ErrInvalidOperator, rule.Operator)
	}

	switch rule.EntitySource {
	case types.SourceSelf, types.SourceCompany:
	case types.SourceLeads:
		switch rule.AggregationType {
		case types.AggregateAny, types.AggregateAll, types.AggregateNone:
		case types.AggregateCount:
			if !isCountOperator(rule.CountOperator) {
				return fmt.Errorf("%w: count operator %q", types.ErrInvalidOperator, rule.CountOperator)
			}
			if _, ok := compileOperand(rule.CountOperator, rule.CountValue).(invalidOperand); ok {
				return fmt.Errorf("%w: rule %q has a malformed countValue", types.ErrInvalidRule, rule.ID)
			}
		default:
			return fmt.Errorf("%w: rule %q aggregation %q", types.ErrInvalidRule, rule.ID, rule.AggregationType)
		}
	default:
		return fmt.Errorf("%w: rule %q entity source %q", types.ErrInvalidRule, rule.ID, rule.EntitySource)
	}

	if _, ok := compileOperand(rule.Operator, rule.Value).(invalidOperand); ok {
		return fmt.Errorf("%w: rule %q value does not fit operator %s", types.ErrInvalidRule, rule.ID, rule.Operator)
	}
	return nil
}

// ValidateChain validates every rule and returns the first error.
func ValidateChain(rules []types.FilterRule) error {
	for i, r := range rules {
		if err := Validate(r); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}
