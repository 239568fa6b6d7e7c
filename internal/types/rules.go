// internal/types/rules.go
package types

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

/*
 * Filter rule and field catalog types.
 *
 * FilterRule is the exact shape the web client persists inside a saved filter
 * preset, so its JSON form is a compatibility surface: presets written by
 * older clients must keep decoding. Enum values are normalised on decode and
 * missing keys fall back to the defaults the client always assumed.
 *
 * Key types:
 *   - FilterRule: one clause of a rule chain, joined to the next by LogicGate
 *   - FilterableField: one entry of the field catalog shown in the rule builder
 *   - FieldDefinition: stored metadata for a custom field
 *   - FilterPreset: a named, saved rule chain
 */

// Operator is a filter operator from the fixed vocabulary.
type Operator string

const (
	OpIsEmpty          Operator = "is_empty"
	OpIsNotEmpty       Operator = "is_not_empty"
	OpIsTrue           Operator = "is_true"
	OpIsFalse          Operator = "is_false"
	OpContains         Operator = "contains"
	OpNotContains      Operator = "not_contains"
	OpEquals           Operator = "equals"
	OpNotEquals        Operator = "not_equals"
	OpStartsWith       Operator = "starts_with"
	OpEndsWith         Operator = "ends_with"
	OpGreaterThan      Operator = "greater_than"
	OpLessThan         Operator = "less_than"
	OpGreaterThanEqual Operator = "greater_than_equal"
	OpLessThanEqual    Operator = "less_than_equal"
	OpBefore           Operator = "before"
	OpAfter            Operator = "after"
	OpBetween          Operator = "between"
	OpIsOneOf          Operator = "is_one_of"
	OpIsNoneOf         Operator = "is_none_of"
)

// LogicGate joins a rule to the next rule in the chain.
type LogicGate string

const (
	GateAnd LogicGate = "AND"
	GateOr  LogicGate = "OR"
)

// EntitySource says which record a rule's field belongs to.
type EntitySource string

const (
	SourceSelf    EntitySource = "self"
	SourceCompany EntitySource = "company"
	SourceLeads   EntitySource = "leads"
)

// AggregationType reduces per-lead results to one result for a company.
type AggregationType string

const (
	AggregateAny   AggregationType = "any"
	AggregateAll   AggregationType = "all"
	AggregateNone  AggregationType = "none"
	AggregateCount AggregationType = "count"
)

// FieldType is the value type of a filterable field.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldSelect  FieldType = "select"
	FieldBoolean FieldType = "boolean"
)

// FilterRule is one clause of a rule chain.
type FilterRule struct {
	ID              string          `json:"id"`
	Field           string          `json:"field"`
	FieldLabel      string          `json:"fieldLabel,omitempty"`
	Operator        Operator        `json:"operator"`
	Value           any             `json:"value,omitempty"`
	LogicGate       LogicGate       `json:"logicGate"`
	EntitySource    EntitySource    `json:"entitySource,omitempty"`
	AggregationType AggregationType `json:"aggregationType,omitempty"`
	CountOperator   Operator        `json:"countOperator,omitempty"`
	CountValue      any             `json:"countValue,omitempty"`
}

// UnmarshalJSON decodes a rule, normalising enum casing and applying the
// defaults older clients relied on (AND gate, self source, any aggregation).
func (r *FilterRule) UnmarshalJSON(data []byte) error {
	type plain FilterRule
	var p plain
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = FilterRule(p)
	r.Normalize()
	return nil
}

// Normalize applies decode-time defaults in place. Safe to call repeatedly.
func (r *FilterRule) Normalize() {
	r.Field = strings.TrimSpace(r.Field)
	r.Operator = Operator(strings.ToLower(strings.TrimSpace(string(r.Operator))))
	r.CountOperator = Operator(strings.ToLower(strings.TrimSpace(string(r.CountOperator))))
	r.LogicGate = ParseLogicGate(string(r.LogicGate))
	r.EntitySource = EntitySource(strings.ToLower(strings.TrimSpace(string(r.EntitySource))))
	if r.EntitySource == "" {
		r.EntitySource = SourceSelf
	}
	r.AggregationType = AggregationType(strings.ToLower(strings.TrimSpace(string(r.AggregationType))))
	if r.EntitySource == SourceLeads && r.AggregationType == "" {
		r.AggregationType = AggregateAny
	}
}

// ParseLogicGate maps any casing of "or" to GateOr and everything else to GateAnd.
func ParseLogicGate(s string) LogicGate {
	if strings.EqualFold(strings.TrimSpace(s), string(GateOr)) {
		return GateOr
	}
	return GateAnd
}

// FilterableField describes one field offered by the rule builder.
type FilterableField struct {
	Name          string       `json:"name"`
	Label         string       `json:"label"`
	Type          FieldType    `json:"type"`
	Options       []string     `json:"options,omitempty"`
	IsCustomField bool         `json:"isCustomField"`
	EntitySource  EntitySource `json:"entitySource"`
}

// FieldDefinition is stored metadata for one custom field of one entity type.
// FieldType is the raw stored type; "dropdown" is accepted as an alias of select.
type FieldDefinition struct {
	EntityType EntityType `json:"entityType" db:"entity_type"`
	Name       string     `json:"name" db:"name"`
	Label      string     `json:"label" db:"label"`
	FieldType  string     `json:"fieldType" db:"field_type"`
	Options    []string   `json:"options,omitempty" db:"-"`
}

// FilterPreset is a saved, named rule chain.
type FilterPreset struct {
	ID          PresetID     `json:"id"`
	WorkspaceID string       `json:"workspaceId"`
	Name        string       `json:"name"`
	EntityType  EntityType   `json:"entityType"`
	Rules       []FilterRule `json:"rules"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
