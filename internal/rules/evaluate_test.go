// internal/rules/evaluate_test.go
package rules

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/prospector/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEvaluate_CustomFieldEqualsIgnoresCase(t *testing.T) {
	lead := &types.Lead{
		Name:         "Jane",
		CustomFields: types.CustomFields{"priority": "high"},
	}
	rule := types.FilterRule{Field: "priority", Operator: types.OpEquals, Value: "HIGH"}

	if !Evaluate(lead, rule) {
		t.Errorf("Evaluate() = false, want true")
	}
}

func TestEvaluate_NestedNumericComparison(t *testing.T) {
	company := &types.Company{
		ID:               "c1",
		ApolloEnrichment: &types.ApolloEnrichment{EmployeeCount: f64(50)},
	}
	rule := types.FilterRule{Field: "apolloEnrichment.employeeCount", Operator: types.OpGreaterThan, Value: "10"}

	if !Evaluate(company, rule) {
		t.Errorf("Evaluate() = false, want true")
	}
}

func TestEvaluate_AllOperators(t *testing.T) {
	contacted := time.Date(2024, 6, 15, 17, 45, 0, 0, time.UTC)
	lead := &types.Lead{
		ID:              "l1",
		Name:            "Jane Doe",
		Email:           "jane@acme.io",
		Title:           "VP Engineering",
		Status:          "Qualified",
		DealValue:       f64(1200),
		Tags:            []string{"Enterprise", "warm"},
		Archived:        false,
		LastContactedAt: &contacted,
		CustomFields: types.CustomFields{
			"priority": "high",
			"score":    "42",
			"opted_in": true,
			"zero":     float64(0),
		},
	}

	tests := []struct {
		name     string
		field    string
		operator types.Operator
		value    any
		want     bool
	}{
		{"is_empty on missing", "phone", types.OpIsEmpty, nil, true},
		{"is_empty on present", "name", types.OpIsEmpty, nil, false},
		{"is_not_empty on present", "email", types.OpIsNotEmpty, nil, true},
		{"is_not_empty on missing", "phone", types.OpIsNotEmpty, nil, false},
		{"zero is not empty", "zero", types.OpIsNotEmpty, nil, true},
		{"is_true on bool", "opted_in", types.OpIsTrue, nil, true},
		{"is_false on bool", "archived", types.OpIsFalse, nil, true},
		{"is_true on false", "archived", types.OpIsTrue, nil, false},
		{"is_false on zero", "zero", types.OpIsFalse, nil, true},
		{"contains", "title", types.OpContains, "engineer", true},
		{"contains misses", "title", types.OpContains, "sales", false},
		{"not_contains", "title", types.OpNotContains, "sales", true},
		{"not_contains hits", "title", types.OpNotContains, "ENG", false},
		{"starts_with", "email", types.OpStartsWith, "JANE@", true},
		{"ends_with", "email", types.OpEndsWith, ".io", true},
		{"ends_with misses", "email", types.OpEndsWith, ".com", false},
		{"equals ignores case", "status", types.OpEquals, "qualified", true},
		{"equals misses", "status", types.OpEquals, "lost", false},
		{"not_equals", "status", types.OpNotEquals, "lost", true},
		{"not_equals on equal", "status", types.OpNotEquals, "QUALIFIED", false},
		{"equals number as text", "dealValue", types.OpEquals, "1200", true},
		{"greater_than", "dealValue", types.OpGreaterThan, float64(1000), true},
		{"greater_than on equal", "dealValue", types.OpGreaterThan, float64(1200), false},
		{"greater_than_equal", "dealValue", types.OpGreaterThanEqual, "1200", true},
		{"less_than", "score", types.OpLessThan, float64(50), true},
		{"less_than_equal", "score", types.OpLessThanEqual, float64(41), false},
		{"numeric on text is false", "name", types.OpGreaterThan, float64(0), false},
		{"numeric with text operand is false", "dealValue", types.OpGreaterThan, "lots", false},
		{"before", "lastContactedAt", types.OpBefore, "2024-07-01", true},
		{"before same day", "lastContactedAt", types.OpBefore, "2024-06-15", false},
		{"after", "lastContactedAt", types.OpAfter, "2024-06-01", true},
		{"after same day", "lastContactedAt", types.OpAfter, "2024-06-15", false},
		{"equals same calendar day", "lastContactedAt", types.OpEquals, "2024-06-15", true},
		{"equals other day", "lastContactedAt", types.OpEquals, "2024-06-16", false},
		{"between inclusive start", "lastContactedAt", types.OpBetween, []any{"2024-06-15", "2024-06-20"}, true},
		{"between inclusive end", "lastContactedAt", types.OpBetween, []any{"2024-06-01", "2024-06-15"}, true},
		{"between outside", "lastContactedAt", types.OpBetween, []any{"2024-07-01", "2024-07-31"}, false},
		{"between reversed", "lastContactedAt", types.OpBetween, []any{"2024-06-20", "2024-06-01"}, false},
		{"before with unparsable date", "lastContactedAt", types.OpBefore, "soon", false},
		{"is_one_of", "status", types.OpIsOneOf, []any{"new", "QUALIFIED"}, true},
		{"is_one_of misses", "status", types.OpIsOneOf, []any{"new", "lost"}, false},
		{"is_none_of", "status", types.OpIsNoneOf, []any{"new", "lost"}, true},
		{"is_none_of hits", "status", types.OpIsNoneOf, []any{"qualified"}, false},
		{"array contains any element", "tags", types.OpContains, "enter", true},
		{"array equals element", "tags", types.OpEquals, "WARM", true},
		{"array not_contains", "tags", types.OpNotContains, "cold", true},
		{"array not_contains hit", "tags", types.OpNotContains, "warm", false},
		{"array is_one_of overlap", "tags", types.OpIsOneOf, []any{"cold", "warm"}, true},
		{"array is_none_of overlap", "tags", types.OpIsNoneOf, []any{"warm"}, false},
		{"unknown operator", "name", "matches", "jane", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := types.FilterRule{Field: tt.field, Operator: tt.operator, Value: tt.value}
			if got := Evaluate(lead, rule); got != tt.want {
				t.Errorf("Evaluate(%s %s %v) = %v, want %v", tt.field, tt.operator, tt.value, got, tt.want)
			}
		})
	}
}

func TestEvaluate_MissingFieldOnlyMatchesIsEmpty(t *testing.T) {
	lead := &types.Lead{ID: "l1"}
	operators := []types.Operator{
		types.OpIsNotEmpty, types.OpIsTrue, types.OpIsFalse,
		types.OpContains, types.OpNotContains, types.OpEquals, types.OpNotEquals,
		types.OpStartsWith, types.OpEndsWith,
		types.OpGreaterThan, types.OpLessThan, types.OpGreaterThanEqual, types.OpLessThanEqual,
		types.OpBefore, types.OpAfter, types.OpBetween, types.OpIsOneOf, types.OpIsNoneOf,
	}
	values := map[types.Operator]any{
		types.OpBetween:  []any{"2024-01-01", "2024-12-31"},
		types.OpIsOneOf:  []any{"x"},
		types.OpIsNoneOf: []any{"x"},
	}

	for _, op := range operators {
		value, ok := values[op]
		if !ok {
			value = "x"
		}
		rule := types.FilterRule{Field: "missingField", Operator: op, Value: value}
		if Evaluate(lead, rule) {
			t.Errorf("Evaluate(missingField %s) = true, want false", op)
		}
	}
	if !Evaluate(lead, types.FilterRule{Field: "missingField", Operator: types.OpIsEmpty}) {
		t.Errorf("Evaluate(missingField is_empty) = false, want true")
	}
}

func TestEvaluate_MalformedOperandNeverMatches(t *testing.T) {
	lead := &types.Lead{Name: "Jane", DealValue: f64(10)}
	tests := []struct {
		name string
		rule types.FilterRule
	}{
		{"not_equals without value", types.FilterRule{Field: "name", Operator: types.OpNotEquals}},
		{"not_contains without value", types.FilterRule{Field: "name", Operator: types.OpNotContains}},
		{"greater_than with list", types.FilterRule{Field: "dealValue", Operator: types.OpGreaterThan, Value: []any{1, 2}}},
		{"between with one bound", types.FilterRule{Field: "dealValue", Operator: types.OpBetween, Value: []any{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Evaluate(lead, tt.rule) {
				t.Errorf("Evaluate() = true, want false")
			}
		})
	}
}

func TestEvaluate_DateValueForms(t *testing.T) {
	june := day(2024, 6, 15)
	lead := &types.Lead{
		CustomFields: types.CustomFields{
			"stored":   map[string]any{"seconds": float64(june.Unix()), "nanoseconds": float64(0)},
			"text":     "2024-06-15",
			"datetime": "2024-06-15T22:10:00Z",
		},
	}
	for _, field := range []string{"stored", "text", "datetime"} {
		rule := types.FilterRule{Field: field, Operator: types.OpAfter, Value: "2024-06-14"}
		if !Evaluate(lead, rule) {
			t.Errorf("Evaluate(%s after 2024-06-14) = false, want true", field)
		}
		rule = types.FilterRule{Field: field, Operator: types.OpBetween, Value: []any{"2024-06-15", "2024-06-15"}}
		if !Evaluate(lead, rule) {
			t.Errorf("Evaluate(%s between same day) = false, want true", field)
		}
	}
}

func TestEvaluate_PropertyIsEmptyComplementsIsNotEmpty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	values := []any{nil, "", "x", float64(0), false, true, []string{}, []string{"a"}, []any{}, "  "}
	fields := []string{"name", "custom", "missing", "apolloEnrichment.city"}

	properties.Property("exactly one of is_empty and is_not_empty holds", prop.ForAll(
		func(vi, fi int) bool {
			lead := &types.Lead{CustomFields: types.CustomFields{"custom": values[vi%len(values)]}}
			field := fields[fi%len(fields)]
			empty := Evaluate(lead, types.FilterRule{Field: field, Operator: types.OpIsEmpty})
			notEmpty := Evaluate(lead, types.FilterRule{Field: field, Operator: types.OpIsNotEmpty})
			return empty != notEmpty
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func TestEvaluate_PropertyNegationOnPresentValues(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("equals and not_equals disagree on present values", prop.ForAll(
		func(value, operand string) bool {
			lead := &types.Lead{CustomFields: types.CustomFields{"f": value}}
			eq := Evaluate(lead, types.FilterRule{Field: "f", Operator: types.OpEquals, Value: operand})
			neq := Evaluate(lead, types.FilterRule{Field: "f", Operator: types.OpNotEquals, Value: operand})
			return eq != neq
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.Property("contains and not_contains disagree on present values", prop.ForAll(
		func(value, operand string) bool {
			lead := &types.Lead{CustomFields: types.CustomFields{"f": value}}
			c := Evaluate(lead, types.FilterRule{Field: "f", Operator: types.OpContains, Value: operand})
			nc := Evaluate(lead, types.FilterRule{Field: "f", Operator: types.OpNotContains, Value: operand})
			return c != nc
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}

func TestEvaluate_DoesNotMutateRecord(t *testing.T) {
	lead := &types.Lead{
		Name:         "Jane",
		Tags:         []string{"b", "a"},
		CustomFields: types.CustomFields{"priority": "High"},
	}
	chain := []types.FilterRule{
		{Field: "priority", Operator: types.OpEquals, Value: "high"},
		{Field: "tags", Operator: types.OpIsOneOf, Value: []any{"a"}},
		{Field: "name", Operator: types.OpStartsWith, Value: "J"},
	}
	for _, r := range chain {
		Evaluate(lead, r)
	}
	if lead.CustomFields["priority"] != "High" {
		t.Errorf("priority = %v, want High", lead.CustomFields["priority"])
	}
	if lead.Tags[0] != "b" || lead.Tags[1] != "a" {
		t.Errorf("Tags = %v, want [b a]", lead.Tags)
	}
}
