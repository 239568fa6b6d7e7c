package ingest

import (
	"regexp"
	"strings"
)

// Mapping targets besides lead field names.
const (
	TargetFirstName      = "firstName"
	TargetLastName       = "lastName"
	TargetCompanyWebsite = "company.website"
	TargetIndustry       = "company.industry"
	customPrefix         = "customFields."
)

// Mapping assigns each header a target: a lead field name, one of the
// Target constants, "customFields.<key>", or "" to skip the column.
type Mapping map[string]string

// CustomTarget returns the mapping target for a custom field key.
func CustomTarget(key string) string {
	return customPrefix + key
}

// CustomKey returns the custom field key of a target, if it is one.
func CustomKey(target string) (string, bool) {
	if !strings.HasPrefix(target, customPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(target, customPrefix)
	return key, key != ""
}

var synonyms = map[string]string{
	"name":            "name",
	"fullname":        "name",
	"contact":         "name",
	"contactname":     "name",
	"leadname":        "name",
	"firstname":       TargetFirstName,
	"givenname":       TargetFirstName,
	"lastname":        TargetLastName,
	"surname":         TargetLastName,
	"familyname":      TargetLastName,
	"email":           "email",
	"emailaddress":    "email",
	"workemail":       "email",
	"mail":            "email",
	"phone":           "phone",
	"phonenumber":     "phone",
	"mobile":          "phone",
	"telephone":       "phone",
	"tel":             "phone",
	"title":           "title",
	"jobtitle":        "title",
	"position":        "title",
	"role":            "title",
	"company":         "companyName",
	"companyname":     "companyName",
	"organization":    "companyName",
	"organisation":    "companyName",
	"account":         "companyName",
	"accountname":     "companyName",
	"status":          "status",
	"stage":           "status",
	"leadstatus":      "status",
	"source":          "source",
	"leadsource":      "source",
	"channel":         "source",
	"dealvalue":       "dealValue",
	"dealsize":        "dealValue",
	"value":           "dealValue",
	"amount":          "dealValue",
	"tags":            "tags",
	"labels":          "tags",
	"linkedin":        "linkedinUrl",
	"linkedinurl":     "linkedinUrl",
	"linkedinprofile": "linkedinUrl",
	"notes":           "notes",
	"note":            "notes",
	"comments":        "notes",
	"lastcontacted":   "lastContactedAt",
	"lastcontactedat": "lastContactedAt",
	"lastcontact":     "lastContactedAt",
	"lastcontactdate": "lastContactedAt",
	"website":         TargetCompanyWebsite,
	"companywebsite":  TargetCompanyWebsite,
	"domain":          TargetCompanyWebsite,
	"url":             TargetCompanyWebsite,
	"industry":        TargetIndustry,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SuggestMapping proposes a target for every header. Headers without a
// known synonym become custom fields keyed by their snake_case form. Each
// built-in target is assigned at most once, to the first matching header.
// Repeated headers are renamed as ReadTable renames them.
func SuggestMapping(headers []string) Mapping {
	m := make(Mapping, len(headers))
	taken := make(map[string]bool)
	for _, h := range UniqueHeaders(headers) {
		key := nonAlnum.ReplaceAllString(strings.ToLower(h), "")
		if target, ok := synonyms[key]; ok && !taken[target] {
			m[h] = target
			taken[target] = true
			continue
		}
		if snake := SnakeCase(h); snake != "" {
			m[h] = CustomTarget(snake)
		} else {
			m[h] = ""
		}
	}
	return m
}

// SnakeCase lowercases s and joins its alphanumeric runs with underscores.
func SnakeCase(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
}
