package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/prospector/internal/types"
)

func f64(v float64) *float64 { return &v }

// Test normal path resolution cases
func TestResolve_Normal(t *testing.T) {
	created := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	company := &types.Company{
		ID:        "c1",
		Name:      "Acme Corp",
		CreatedAt: created,
		ApolloEnrichment: &types.ApolloEnrichment{
			EmployeeCount: f64(50),
			Technologies:  []string{"Go", "React"},
		},
		CustomFields: types.CustomFields{
			"priority": "high",
			"meta":     map[string]any{"owner": "dana"},
		},
	}

	tests := []struct {
		name      string
		field     string
		wantValue any
		wantFound bool
	}{
		{
			name:      "direct property",
			field:     "name",
			wantValue: "Acme Corp",
			wantFound: true,
		},
		{
			name:      "dotted nested property",
			field:     "apolloEnrichment.employeeCount",
			wantValue: float64(50),
			wantFound: true,
		},
		{
			name:      "custom field fallback",
			field:     "priority",
			wantValue: "high",
			wantFound: true,
		},
		{
			name:      "explicit customFields path",
			field:     "customFields.priority",
			wantValue: "high",
			wantFound: true,
		},
		{
			name:      "nested map inside custom field",
			field:     "customFields.meta.owner",
			wantValue: "dana",
			wantFound: true,
		},
		{
			name:      "date property",
			field:     "createdAt",
			wantValue: created,
			wantFound: true,
		},
		{
			name:      "missing nested block",
			field:     "blogAnalysis.postCount",
			wantFound: false,
		},
		{
			name:      "missing segment in present block",
			field:     "apolloEnrichment.annualRevenue",
			wantFound: false,
		},
		{
			name:      "path continues past scalar",
			field:     "name.first",
			wantFound: false,
		},
		{
			name:      "unknown field",
			field:     "nope",
			wantFound: false,
		},
		{
			name:      "empty segment",
			field:     "apolloEnrichment..employeeCount",
			wantFound: false,
		},
		{
			name:      "empty name",
			field:     "",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Resolve(company, tt.field)
			if found != tt.wantFound {
				t.Fatalf("Resolve(%q) found = %v, want %v", tt.field, found, tt.wantFound)
			}
			if !tt.wantFound {
				return
			}
			if gotTime, ok := got.(time.Time); ok {
				if !gotTime.Equal(tt.wantValue.(time.Time)) {
					t.Errorf("Resolve(%q) = %v, want %v", tt.field, got, tt.wantValue)
				}
				return
			}
			if got != tt.wantValue {
				t.Errorf("Resolve(%q) = %v, want %v", tt.field, got, tt.wantValue)
			}
		})
	}
}

func TestResolve_DirectPropertyWinsOverCustomField(t *testing.T) {
	lead := &types.Lead{
		Name:         "Jane",
		CustomFields: types.CustomFields{"name": "shadowed"},
	}
	got, found := Resolve(lead, "name")
	if !found || got != "Jane" {
		t.Errorf("Resolve(name) = %v, %v, want Jane, true", got, found)
	}
}

func TestResolve_EmptyDirectPropertyFallsBackToCustomField(t *testing.T) {
	lead := &types.Lead{CustomFields: types.CustomFields{"title": "CTO"}}
	got, found := Resolve(lead, "title")
	if !found || got != "CTO" {
		t.Errorf("Resolve(title) = %v, %v, want CTO, true", got, found)
	}
}

func TestResolve_NilRecord(t *testing.T) {
	var lead *types.Lead
	if _, found := Resolve(lead, "name"); found {
		t.Error("Resolve on nil lead found a value")
	}
	if _, found := Resolve(nil, "name"); found {
		t.Error("Resolve on nil record found a value")
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"name", 1},
		{"apolloEnrichment.employeeCount", 2},
		{"a.b.c.d", 4},
		{"a.b.c.d.e", 0},
		{".a", 0},
		{"a.", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := len(SplitPath(tt.name)); got != tt.want {
			t.Errorf("len(SplitPath(%q)) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestResolve_PropertyNeverCrashes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	company := &types.Company{
		ID:               "c1",
		ApolloEnrichment: &types.ApolloEnrichment{City: "Berlin"},
		CustomFields:     types.CustomFields{"k": map[string]any{"k": "v"}},
	}
	segments := []string{"k", "apolloEnrichment", "city", "customFields", "", "name", "blogAnalysis"}

	properties.Property("resolution never crashes regardless of path", prop.ForAll(
		func(picks []int) bool {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Resolve() panicked: %v", r)
				}
			}()
			parts := make([]string, len(picks))
			for i, p := range picks {
				parts[i] = segments[p%len(segments)]
			}
			_, _ = Resolve(company, strings.Join(parts, "."))
			return true
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
