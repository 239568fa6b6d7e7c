package ingest

import (
	"strings"
	"time"

	"github.com/solatis/prospector/internal/types"
)

// Options tunes BuildLeads.
type Options struct {
	// Now stamps createdAt/updatedAt; zero means time.Now.
	Now time.Time
	// ExistingCompanies are matched by name before new companies are created.
	ExistingCompanies []*types.Company
}

// Result is the outcome of converting a table.
type Result struct {
	Leads []*types.Lead
	// Companies holds only companies created by this import.
	Companies   []*types.Company
	Definitions []types.FieldDefinition
	// Skipped counts rows whose mapped cells were all blank.
	Skipped int
}

type column struct {
	index  int
	target string
	typ    types.FieldType
}

// BuildLeads converts table rows into leads. Companies are deduplicated by
// name, ignoring case, and linked through companyId. Every custom column
// yields one field definition typed by InferFieldType.
func BuildLeads(t *Table, m Mapping, opts Options) Result {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var res Result
	var cols []column
	for i, h := range t.Headers {
		target := m[h]
		if target == "" {
			continue
		}
		c := column{index: i, target: target}
		if key, ok := CustomKey(target); ok {
			values := columnValues(t, i)
			c.typ = InferFieldType(values)
			def := types.FieldDefinition{
				EntityType: types.EntityLeads,
				Name:       key,
				Label:      h,
				FieldType:  string(c.typ),
			}
			if c.typ == types.FieldSelect {
				def.Options = SelectOptions(values)
			}
			res.Definitions = append(res.Definitions, def)
		}
		cols = append(cols, c)
	}

	companies := make(map[string]*types.Company)
	for _, c := range opts.ExistingCompanies {
		if c != nil && c.Name != "" {
			companies[strings.ToLower(c.Name)] = c
		}
	}

	for _, row := range t.Rows {
		if allBlank(row, cols) {
			res.Skipped++
			continue
		}

		lead := &types.Lead{ID: types.NewID(), CreatedAt: now, UpdatedAt: now}
		var first, last, website, industry string
		for _, c := range cols {
			cell := row[c.index]
			if cell == "" {
				continue
			}
			switch c.target {
			case TargetFirstName:
				first = cell
			case TargetLastName:
				last = cell
			case TargetCompanyWebsite:
				website = cell
			case TargetIndustry:
				industry = cell
			default:
				if key, ok := CustomKey(c.target); ok {
					if lead.CustomFields == nil {
						lead.CustomFields = types.CustomFields{}
					}
					lead.CustomFields[key] = typedValue(cell, c.typ)
					continue
				}
				setLeadField(lead, c.target, cell)
			}
		}
		if lead.Name == "" {
			lead.Name = strings.TrimSpace(first + " " + last)
		}

		if lead.CompanyName != "" {
			key := strings.ToLower(lead.CompanyName)
			company, ok := companies[key]
			if !ok {
				company = &types.Company{
					ID:        types.NewID(),
					Name:      lead.CompanyName,
					Website:   website,
					Industry:  industry,
					CreatedAt: now,
					UpdatedAt: now,
				}
				companies[key] = company
				res.Companies = append(res.Companies, company)
			}
			lead.CompanyID = company.ID
		}
		res.Leads = append(res.Leads, lead)
	}
	return res
}

// setLeadField assigns a cell to a built-in lead field. Unknown targets and
// unparsable values are dropped.
func setLeadField(lead *types.Lead, target, cell string) {
	switch target {
	case "name":
		lead.Name = cell
	case "email":
		lead.Email = strings.ToLower(cell)
	case "phone":
		lead.Phone = cell
	case "title":
		lead.Title = cell
	case "companyName":
		lead.CompanyName = cell
	case "status":
		lead.Status = strings.ToLower(cell)
	case "source":
		lead.Source = cell
	case "dealValue":
		if f, ok := parseNumber(cell); ok {
			lead.DealValue = &f
		}
	case "tags":
		lead.Tags = splitTags(cell)
	case "linkedinUrl":
		lead.LinkedinURL = cell
	case "notes":
		lead.Notes = cell
	case "lastContactedAt":
		if d, ok := ParseDate(cell); ok {
			lead.LastContactedAt = &d
		}
	}
}

// typedValue converts a custom cell to the column's inferred type. Dates are
// stored as ISO calendar days.
func typedValue(cell string, typ types.FieldType) any {
	switch typ {
	case types.FieldNumber:
		if f, ok := parseNumber(cell); ok {
			return f
		}
	case types.FieldBoolean:
		if b, ok := parseBool(cell); ok {
			return b
		}
	case types.FieldDate:
		if d, ok := ParseDate(cell); ok {
			return d.Format("2006-01-02")
		}
	}
	return cell
}

func splitTags(cell string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == ';' }) {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func columnValues(t *Table, col int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[col]
	}
	return out
}

func allBlank(row []string, cols []column) bool {
	for _, c := range cols {
		if row[c.index] != "" {
			return false
		}
	}
	return true
}
