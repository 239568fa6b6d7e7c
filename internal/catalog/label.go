package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HumanizeKey derives a display label from a custom field key:
// "lead_score" becomes "Lead Score". Existing capitals are kept, so
// "linkedIn_url" becomes "LinkedIn Url".
func HumanizeKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	return cases.Title(language.English, cases.NoLower).String(strings.Join(words, " "))
}

// normalizeKey reduces a field name or label to a comparison key: lower case,
// separators dropped and the customFields prefix removed.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "customfields.")
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, s)
}
