// internal/rules/coercion.go
package rules

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

/*
 * Type coercion for rule evaluation.
 *
 * Record values arrive in whatever shape the document store produced:
 * strings, float64 from JSON, time.Time, string slices, or timestamp maps.
 * Operands arrive from saved presets, so a number may be the string "10" and
 * a date may be "2024-06-01". Every operator coerces both sides here.
 *
 * Coercion never fails loudly. A value that cannot become a number is NaN,
 * and NaN compares false with everything; a value that cannot become a date
 * reports ok=false. Callers turn both into a non-match.
 *
 * Emptiness: nil, the empty string and empty slices are empty. Zero and false
 * are values, so numeric and boolean fields holding 0/false are not empty.
 */

// dateLayouts are tried in order when a string must become a date.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
}

// IsEmpty reports whether v counts as "no value" for filtering.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case *time.Time:
		return t == nil
	case *float64:
		return t == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return rv.IsNil()
	case reflect.Slice:
		return rv.IsNil() || rv.Len() == 0
	}
	return false
}

// ToNumber converts v the way a loosely-typed client would.
// Returns NaN and false for values with no numeric reading.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return math.NaN(), false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	case time.Time:
		return float64(n.UnixMilli()), true
	case *float64:
		if n == nil {
			return math.NaN(), false
		}
		return *n, true
	default:
		return math.NaN(), false
	}
}

// ToDate converts v to a time. Numbers are epoch milliseconds; maps carrying
// "seconds" (and optionally "nanoseconds") are document-store timestamps.
func ToDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, false
		}
		return *d, true
	case string:
		return parseDate(d)
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(d)).UTC(), true
	case int:
		return time.UnixMilli(int64(d)).UTC(), true
	case int64:
		return time.UnixMilli(d).UTC(), true
	case map[string]any:
		secs, ok := ToNumber(d["seconds"])
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := ToNumber(d["nanoseconds"])
		if math.IsNaN(nanos) {
			nanos = 0
		}
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// parseDate tries every known layout against a trimmed string.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToText returns the lower-cased string form of v for case-insensitive comparison.
func ToText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return strings.ToLower(t.Format(time.RFC3339))
	default:
		return strings.ToLower(fmt.Sprintf("%v", v))
	}
}

// Truthy reports whether v reads as boolean true: true, "true" or 1.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1"
	default:
		n, ok := ToNumber(v)
		return ok && n == 1
	}
}

// Falsy reports whether v reads as boolean false: false, "false" or 0.
func Falsy(v any) bool {
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "false" || s == "0"
	default:
		n, ok := ToNumber(v)
		return ok && n == 0
	}
}

// asList returns v as a list of values when it is a slice, nil otherwise.
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// sameDay reports calendar-day equality in UTC.
func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

// dayOf truncates t to midnight UTC of its calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
