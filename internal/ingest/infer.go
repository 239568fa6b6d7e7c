package ingest

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/solatis/prospector/internal/types"
)

// MaxSelectOptions bounds the distinct values of a column inferred as select.
const MaxSelectOptions = 10

// InferFieldType guesses the field type of a column from its cells. Blank
// cells are ignored; a column with no values is text.
func InferFieldType(values []string) types.FieldType {
	present := lo.Filter(values, func(v string, _ int) bool { return strings.TrimSpace(v) != "" })
	if len(present) == 0 {
		return types.FieldText
	}

	switch {
	case lo.EveryBy(present, looksLikeBool):
		return types.FieldBoolean
	case lo.EveryBy(present, looksLikeNumber):
		return types.FieldNumber
	case lo.EveryBy(present, func(v string) bool { _, ok := ParseDate(v); return ok }):
		return types.FieldDate
	}

	distinct := lo.Uniq(lo.Map(present, func(v string, _ int) string { return strings.ToLower(strings.TrimSpace(v)) }))
	if len(distinct) <= MaxSelectOptions && len(distinct) < len(present) {
		return types.FieldSelect
	}
	return types.FieldText
}

// SelectOptions returns the distinct values of a column in first-seen order,
// keeping the casing of the first occurrence.
func SelectOptions(values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func looksLikeBool(v string) bool {
	_, ok := parseBool(v)
	return ok
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}

func looksLikeNumber(v string) bool {
	_, ok := parseNumber(v)
	return ok
}

// parseNumber accepts thousands separators and a leading currency sign.
func parseNumber(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "$€£")
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}
