// internal/rules/fieldpath.go
package rules

import (
	"strings"

	"github.com/solatis/prospector/internal/types"
)

/*
 * Field value resolution for records.
 *
 * Dotted names ("apolloEnrichment.employeeCount") are walked segment by
 * segment through PropertySet values and plain maps. Plain names try the
 * record's own property first and fall back to customFields.
 *
 * Key functions:
 *   - SplitPath: splits a field name into segments
 *   - Resolve: two-step accessor (direct property, then customFields)
 *
 * A missing segment anywhere along the path means the value is absent; the
 * evaluator treats absent exactly like an empty value.
 */

// MaxPathDepth bounds dotted field names. Records nest one level, custom
// field maps may nest a little further; anything deeper never resolves.
const MaxPathDepth = 4

// SplitPath splits a dotted field name into its segments.
// Returns nil for empty names, names with empty segments, or names deeper than MaxPathDepth.
func SplitPath(name string) []string {
	if name == "" {
		return nil
	}
	segs := strings.Split(name, ".")
	if len(segs) > MaxPathDepth {
		return nil
	}
	for _, s := range segs {
		if s == "" {
			return nil
		}
	}
	return segs
}

// Resolve returns the value of a named field on a record.
func Resolve(record types.Record, name string) (any, bool) {
	if record == nil {
		return nil, false
	}
	path := SplitPath(name)
	switch len(path) {
	case 0:
		return nil, false
	case 1:
		if v, ok := record.Property(name); ok {
			return v, true
		}
		custom := record.CustomFieldMap()
		if custom == nil {
			return nil, false
		}
		v, ok := custom[name]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	default:
		return walk(record, path)
	}
}

// walk follows path segments through nested property sets and maps.
func walk(current any, path []string) (any, bool) {
	for _, seg := range path {
		next, ok := step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// step resolves one segment against the current value.
func step(current any, seg string) (any, bool) {
	switch v := current.(type) {
	case types.PropertySet:
		return v.Property(seg)
	case map[string]any:
		val, ok := v[seg]
		if !ok || val == nil {
			return nil, false
		}
		return val, true
	case types.CustomFields:
		val, ok := v[seg]
		if !ok || val == nil {
			return nil, false
		}
		return val, true
	default:
		// Scalar value but path continues
		return nil, false
	}
}
