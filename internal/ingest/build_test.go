package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/prospector/internal/types"
)

func TestSuggestMapping(t *testing.T) {
	headers := []string{"First Name", "Last Name", "E-mail Address", "Job Title", "Organisation", "Lead Score", "Email", "Website", "???"}
	got := SuggestMapping(headers)

	want := Mapping{
		"First Name":     TargetFirstName,
		"Last Name":      TargetLastName,
		"E-mail Address": "email",
		"Job Title":      "title",
		"Organisation":   "companyName",
		"Lead Score":     "customFields.lead_score",
		"Email":          "customFields.email",
		"Website":        TargetCompanyWebsite,
		"???":            "",
	}
	assert.Equal(t, want, got)
}

func TestSuggestMapping_RepeatedHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Mapping
	}{
		{
			name:    "same header twice",
			headers: []string{"Email", "Email"},
			want:    Mapping{"Email": "email", "Email_2": "customFields.email_2"},
		},
		{
			name:    "case differs",
			headers: []string{"Company", "company"},
			want:    Mapping{"Company": "companyName", "company_2": "customFields.company_2"},
		},
		{
			name:    "suffix already present",
			headers: []string{"Notes", "Notes", "Notes_2"},
			want:    Mapping{"Notes": "notes", "Notes_2": "customFields.notes_2", "Notes_2_2": "customFields.notes_2_2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestMapping(tt.headers))
		})
	}
}

func TestBuildLeads_RepeatedHeadersKeepBothColumns(t *testing.T) {
	table, err := ReadTable("leads.csv", strings.NewReader("Name,Email,Email\nJane,jane@acme.io,j.doe@home.net\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Email", "Email_2"}, table.Headers)

	res := BuildLeads(table, SuggestMapping(table.Headers), Options{})
	require.Len(t, res.Leads, 1)
	assert.Equal(t, "jane@acme.io", res.Leads[0].Email)
	assert.Equal(t, "j.doe@home.net", res.Leads[0].CustomFields["email_2"])
}

func TestCustomKey(t *testing.T) {
	key, ok := CustomKey(CustomTarget("lead_score"))
	assert.True(t, ok)
	assert.Equal(t, "lead_score", key)

	_, ok = CustomKey("email")
	assert.False(t, ok)
	_, ok = CustomKey("customFields.")
	assert.False(t, ok)
}

func TestInferFieldType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   types.FieldType
	}{
		{"blank column", []string{"", " "}, types.FieldText},
		{"booleans", []string{"Yes", "no", "", "TRUE"}, types.FieldBoolean},
		{"numbers", []string{"1,200", "$35", "-4.5"}, types.FieldNumber},
		{"dates", []string{"2024-06-15", "15/06/2024", "Jun 3, 2024"}, types.FieldDate},
		{"repeated categories", []string{"Gold", "silver", "gold", "Bronze"}, types.FieldSelect},
		{"all distinct", []string{"alpha", "beta", "gamma"}, types.FieldText},
		{
			"too many categories",
			[]string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "a"},
			types.FieldText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFieldType(tt.values))
		})
	}
}

func TestSelectOptions(t *testing.T) {
	got := SelectOptions([]string{"Gold", "", "silver", "GOLD", " Bronze "})
	assert.Equal(t, []string{"Gold", "silver", "Bronze"}, got)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-06-15T10:00:00Z", time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), true},
		{"06/15/2024", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/06/2024", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"03/04/2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"15.06.2024", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"Jun 15, 2024", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"45458", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"45458.5", time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), true},
		{"02/31/2024", time.Time{}, false},
		{"13/13/2024", time.Time{}, false},
		{"42", time.Time{}, false},
		{"soon", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.True(t, tt.want.Equal(got), "ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildLeads(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	table := &Table{
		Headers: []string{"First Name", "Last Name", "Email", "Company", "Website", "Deal Value", "Tags", "Tier", "Renewal", "Ignored"},
		Rows: [][]string{
			{"Jane", "Doe", "JANE@ACME.IO", "Acme", "acme.io", "1,200", "hot; enterprise", "Gold", "2024-09-01", "x"},
			{"John", "Roe", "john@acme.io", "ACME", "other.io", "", "", "gold", "", "y"},
			{"", "", "", "", "", "", "", "", "", "only ignored"},
			{"Bob", "", "bob@globex.com", "Globex", "", "n/a", "", "Silver", "15/10/2024", ""},
			{"Eve", "", "eve@initech.com", "Existing Co", "", "10", "", "", "", ""},
		},
	}
	mapping := SuggestMapping(table.Headers)
	mapping["Ignored"] = ""
	existing := &types.Company{ID: "c-existing", Name: "existing co"}

	res := BuildLeads(table, mapping, Options{Now: now, ExistingCompanies: []*types.Company{existing}})

	require.Len(t, res.Leads, 4)
	assert.Equal(t, 1, res.Skipped)

	jane := res.Leads[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "jane@acme.io", jane.Email)
	require.NotNil(t, jane.DealValue)
	assert.Equal(t, 1200.0, *jane.DealValue)
	assert.Equal(t, []string{"hot", "enterprise"}, jane.Tags)
	assert.Equal(t, "Gold", jane.CustomFields["tier"])
	assert.Equal(t, "2024-09-01", jane.CustomFields["renewal"])
	assert.Equal(t, now, jane.CreatedAt)
	assert.NotEmpty(t, jane.ID)

	john := res.Leads[1]
	assert.Nil(t, john.DealValue)
	assert.NotContains(t, john.CustomFields, "renewal")

	bob := res.Leads[2]
	assert.Nil(t, bob.DealValue, "unparsable deal value is dropped")
	assert.Equal(t, "2024-10-15", bob.CustomFields["renewal"])

	// Acme and ACME collapse into one company; Existing Co is reused.
	require.Len(t, res.Companies, 2)
	acme, globex := res.Companies[0], res.Companies[1]
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, "acme.io", acme.Website)
	assert.Equal(t, "Globex", globex.Name)
	assert.Equal(t, acme.ID, jane.CompanyID)
	assert.Equal(t, acme.ID, john.CompanyID)
	assert.Equal(t, globex.ID, bob.CompanyID)
	assert.Equal(t, "c-existing", res.Leads[3].CompanyID)

	defs := map[string]types.FieldDefinition{}
	for _, d := range res.Definitions {
		defs[d.Name] = d
	}
	require.Len(t, defs, 2)
	assert.Equal(t, string(types.FieldSelect), defs["tier"].FieldType)
	assert.Equal(t, []string{"Gold", "Silver"}, defs["tier"].Options)
	assert.Equal(t, "Tier", defs["tier"].Label)
	assert.Equal(t, types.EntityLeads, defs["tier"].EntityType)
	assert.Equal(t, string(types.FieldDate), defs["renewal"].FieldType)
}
