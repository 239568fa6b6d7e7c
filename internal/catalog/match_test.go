package catalog

import (
	"testing"

	"github.com/solatis/prospector/internal/types"
)

func TestMatchField(t *testing.T) {
	fields := Build(Input{
		Entity:      types.EntityLeads,
		CrossEntity: true,
		Leads:       []*types.Lead{{ID: "l1", CustomFields: types.CustomFields{"lead_score": 1}}},
		Companies:   []*types.Company{{ID: "c1"}},
	})

	tests := []struct {
		name       string
		rule       types.FilterRule
		wantName   string
		wantSource types.EntitySource
		wantFound  bool
	}{
		{
			name:       "exact name and self source",
			rule:       types.FilterRule{Field: "name"},
			wantName:   "name",
			wantSource: types.SourceSelf,
			wantFound:  true,
		},
		{
			name:       "exact name and company source",
			rule:       types.FilterRule{Field: "name", EntitySource: types.SourceCompany},
			wantName:   "name",
			wantSource: types.SourceCompany,
			wantFound:  true,
		},
		{
			name:       "name with stale source",
			rule:       types.FilterRule{Field: "email", EntitySource: types.SourceCompany},
			wantName:   "email",
			wantSource: types.SourceSelf,
			wantFound:  true,
		},
		{
			name:       "label ignoring case",
			rule:       types.FilterRule{Field: "score", FieldLabel: "LEAD SCORE"},
			wantName:   "lead_score",
			wantSource: types.SourceSelf,
			wantFound:  true,
		},
		{
			name:       "normalised legacy key",
			rule:       types.FilterRule{Field: "customFields.lead-score"},
			wantName:   "lead_score",
			wantSource: types.SourceSelf,
			wantFound:  true,
		},
		{
			name:       "normalised camel case",
			rule:       types.FilterRule{Field: "Last_Contacted_At"},
			wantName:   "lastContactedAt",
			wantSource: types.SourceSelf,
			wantFound:  true,
		},
		{
			name:      "no match",
			rule:      types.FilterRule{Field: "favourite_colour"},
			wantFound: false,
		},
		{
			name:      "empty rule",
			rule:      types.FilterRule{},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := MatchField(fields, tt.rule)
			if found != tt.wantFound {
				t.Fatalf("MatchField() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if got.Name != tt.wantName || got.EntitySource != tt.wantSource {
				t.Errorf("MatchField() = %s/%s, want %s/%s", got.EntitySource, got.Name, tt.wantSource, tt.wantName)
			}
		})
	}
}

func TestHumanizeKey(t *testing.T) {
	tests := map[string]string{
		"lead_score":       "Lead Score",
		"priority":         "Priority",
		"annual__revenue_": "Annual Revenue",
		"":                 "",
		"leadScore":        "LeadScore",
		"linkedIn_url":     "LinkedIn Url",
		"ARR_usd":          "ARR Usd",
	}
	for in, want := range tests {
		if got := HumanizeKey(in); got != want {
			t.Errorf("HumanizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
