package catalog

import (
	"strings"

	"github.com/solatis/prospector/internal/types"
)

// MatchField finds the catalog entry a saved rule refers to. Presets written
// by older clients may carry a renamed field, a label instead of a name, or
// a different casing, so matching falls back through:
//  1. same entity source and name
//  2. same name
//  3. label, ignoring case
//  4. normalised key of name or label against the rule's field and label
func MatchField(fields []types.FilterableField, rule types.FilterRule) (types.FilterableField, bool) {
	rule.Normalize()

	for _, f := range fields {
		if f.Name == rule.Field && sourceOf(f) == rule.EntitySource {
			return f, true
		}
	}
	for _, f := range fields {
		if f.Name == rule.Field {
			return f, true
		}
	}
	for _, f := range fields {
		if rule.FieldLabel != "" && strings.EqualFold(f.Label, rule.FieldLabel) {
			return f, true
		}
	}

	wants := make([]string, 0, 2)
	for _, s := range []string{rule.Field, rule.FieldLabel} {
		if k := normalizeKey(s); k != "" {
			wants = append(wants, k)
		}
	}
	for _, f := range fields {
		name, label := normalizeKey(f.Name), normalizeKey(f.Label)
		for _, w := range wants {
			if w == name || w == label {
				return f, true
			}
		}
	}
	return types.FilterableField{}, false
}

func sourceOf(f types.FilterableField) types.EntitySource {
	if f.EntitySource == "" {
		return types.SourceSelf
	}
	return f.EntitySource
}
