// Package catalog builds the list of fields offered by the rule builder.
//
// The catalog is derived, never stored: built-in fields come from fixed
// tables, custom fields from the keys actually present in the record set,
// described by stored field definitions when those exist. Building is a pure
// function of its Input, so two calls with equal inputs produce equal lists.
//
// Output order:
//  1. built-ins of the entity (standard fields, then the enrichment groups
//     apollo, blog, writing, each only when some record carries the block)
//  2. custom fields, sorted by the name the catalog exposes
//  3. in cross-entity mode, the related entity's built-ins and custom fields
package catalog

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/solatis/prospector/internal/types"
)

// Input carries everything the catalog is derived from.
type Input struct {
	Entity         types.EntityType
	Leads          []*types.Lead
	Companies      []*types.Company
	Definitions    []types.FieldDefinition
	PipelineStages []string
	CrossEntity    bool
}

// Build returns the ordered field catalog for in.Entity. An unknown entity
// type yields an empty catalog.
func Build(in Input) []types.FilterableField {
	var self, related types.EntityType
	var relatedSource types.EntitySource
	var prefix string
	switch in.Entity {
	case types.EntityLeads:
		self, related = types.EntityLeads, types.EntityCompanies
		relatedSource, prefix = types.SourceCompany, "Company: "
	case types.EntityCompanies:
		self, related = types.EntityCompanies, types.EntityLeads
		relatedSource, prefix = types.SourceLeads, "Lead: "
	default:
		return nil
	}

	fields := entityFields(self, in, types.SourceSelf, "")
	if in.CrossEntity {
		fields = append(fields, entityFields(related, in, relatedSource, prefix)...)
	}
	return fields
}

// entityFields lists built-ins followed by sorted custom fields for one
// entity type, tagged with source and labelled with prefix.
func entityFields(entity types.EntityType, in Input, source types.EntitySource, prefix string) []types.FilterableField {
	var out []types.FilterableField
	for _, b := range builtinsFor(entity, in) {
		out = append(out, builtinField(b, entity, in.PipelineStages, source, prefix))
	}

	defs := definitionsFor(entity, in.Definitions)
	shadowed := builtinNames(entity)
	var custom []types.FilterableField
	for _, key := range customKeys(entity, in) {
		f := customField(key, defs[key])
		if _, clash := shadowed[key]; clash {
			f.Name = "customFields." + key
		}
		f.EntitySource = source
		f.Label = prefix + f.Label
		custom = append(custom, f)
	}
	// Renaming can move a field, so order by the final name.
	sort.SliceStable(custom, func(i, j int) bool { return custom[i].Name < custom[j].Name })
	return append(out, custom...)
}

// builtinsFor returns the built-in table of an entity, with the company
// enrichment groups included only when present in the record set.
func builtinsFor(entity types.EntityType, in Input) []builtin {
	if entity == types.EntityLeads {
		return leadBuiltins
	}
	out := append([]builtin(nil), companyBuiltins...)
	if lo.SomeBy(in.Companies, func(c *types.Company) bool { return c != nil && c.ApolloEnrichment != nil }) {
		out = append(out, apolloBuiltins...)
	}
	if lo.SomeBy(in.Companies, func(c *types.Company) bool { return c != nil && c.BlogAnalysis != nil }) {
		out = append(out, blogBuiltins...)
	}
	if lo.SomeBy(in.Companies, func(c *types.Company) bool { return c != nil && c.WritingProgram != nil }) {
		out = append(out, writingBuiltins...)
	}
	return out
}

func builtinField(b builtin, entity types.EntityType, stages []string, source types.EntitySource, prefix string) types.FilterableField {
	f := types.FilterableField{
		Name:         b.name,
		Label:        prefix + b.label,
		Type:         b.typ,
		EntitySource: source,
	}
	if b.typ == types.FieldSelect {
		f.Options = statusOptions(entity, stages)
	}
	return f
}

// statusOptions returns the configured pipeline stages for leads, or the
// fixed defaults.
func statusOptions(entity types.EntityType, stages []string) []string {
	if entity == types.EntityCompanies {
		return append([]string(nil), DefaultCompanyStatuses...)
	}
	stages = lo.Compact(lo.Map(stages, func(s string, _ int) string { return strings.TrimSpace(s) }))
	if len(stages) == 0 {
		return append([]string(nil), DefaultLeadStages...)
	}
	return lo.Uniq(stages)
}

// customKeys returns the union of customFields keys over one entity's
// records, sorted.
func customKeys(entity types.EntityType, in Input) []string {
	seen := make(map[string]struct{})
	add := func(m types.CustomFields) {
		for k := range m {
			if strings.TrimSpace(k) != "" {
				seen[k] = struct{}{}
			}
		}
	}
	if entity == types.EntityLeads {
		for _, l := range in.Leads {
			if l != nil {
				add(l.CustomFields)
			}
		}
	} else {
		for _, c := range in.Companies {
			if c != nil {
				add(c.CustomFields)
			}
		}
	}
	keys := lo.Keys(seen)
	sort.Strings(keys)
	return keys
}

// definitionsFor indexes the definitions of one entity type by field name.
// Later definitions of the same name win.
func definitionsFor(entity types.EntityType, defs []types.FieldDefinition) map[string]types.FieldDefinition {
	own := lo.Filter(defs, func(d types.FieldDefinition, _ int) bool { return d.EntityType == entity })
	return lo.KeyBy(own, func(d types.FieldDefinition) string { return d.Name })
}

// customField describes one custom key. A zero def means the key has no
// stored definition.
func customField(key string, def types.FieldDefinition) types.FilterableField {
	f := types.FilterableField{
		Name:          key,
		Label:         HumanizeKey(key),
		Type:          ParseFieldType(def.FieldType),
		IsCustomField: true,
	}
	if def.Label != "" {
		f.Label = def.Label
	}
	if f.Type == types.FieldSelect {
		f.Options = append([]string{}, def.Options...)
	}
	return f
}

// ParseFieldType maps a stored definition type to a catalog field type.
// "dropdown" is an alias of select; unknown or missing types are text.
func ParseFieldType(s string) types.FieldType {
	switch t := types.FieldType(strings.ToLower(strings.TrimSpace(s))); t {
	case types.FieldText, types.FieldNumber, types.FieldDate, types.FieldSelect, types.FieldBoolean:
		return t
	case "dropdown":
		return types.FieldSelect
	default:
		return types.FieldText
	}
}
