// Package types provides domain models shared across prospector components.
//
// Records are explicit structs with optional nested blocks rather than open maps:
// the filter engine reaches their properties through the Record and PropertySet
// accessors, and only customFields stays schema-less.
//
// Separation from storage: documents are persisted as JSON by internal/store.
// This package carries the JSON shape (camelCase keys, as written by the web
// client) but never touches the database.
package types

import "time"

// EntityType names a record collection.
type EntityType string

const (
	EntityLeads     EntityType = "leads"
	EntityCompanies EntityType = "companies"
)

// ParseEntityType validates an entity type string.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityLeads, EntityCompanies:
		return EntityType(s), nil
	default:
		return "", ErrUnknownEntityType
	}
}

// PropertySet exposes named properties of a record or of one nested block.
// The bool result is false when the property is absent.
type PropertySet interface {
	Property(name string) (any, bool)
}

// Record is what the filter engine reads. Records are never mutated by it.
type Record interface {
	PropertySet
	RecordID() string
	CustomFieldMap() map[string]any
}

// CustomFields holds dynamically-defined field values keyed by field name.
type CustomFields map[string]any

// Lead is a person in the sales pipeline.
type Lead struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Email           string       `json:"email,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	Title           string       `json:"title,omitempty"`
	CompanyID       string       `json:"companyId,omitempty"`
	CompanyName     string       `json:"companyName,omitempty"`
	Status          string       `json:"status,omitempty"`
	Source          string       `json:"source,omitempty"`
	DealValue       *float64     `json:"dealValue,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	LinkedinURL     string       `json:"linkedinUrl,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	Archived        bool         `json:"archived"`
	LastContactedAt *time.Time   `json:"lastContactedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	CustomFields    CustomFields `json:"customFields,omitempty"`
}

// RecordID implements Record.
func (l *Lead) RecordID() string {
	if l == nil {
		return ""
	}
	return l.ID
}

// CustomFieldMap implements Record.
func (l *Lead) CustomFieldMap() map[string]any {
	if l == nil {
		return nil
	}
	return l.CustomFields
}

// Property implements PropertySet. Zero-valued optional strings are reported
// as absent so that "is empty" filters see them as unset.
func (l *Lead) Property(name string) (any, bool) {
	if l == nil {
		return nil, false
	}
	switch name {
	case "id":
		return nonEmpty(l.ID)
	case "name":
		return nonEmpty(l.Name)
	case "email":
		return nonEmpty(l.Email)
	case "phone":
		return nonEmpty(l.Phone)
	case "title":
		return nonEmpty(l.Title)
	case "companyId":
		return nonEmpty(l.CompanyID)
	case "companyName":
		return nonEmpty(l.CompanyName)
	case "status":
		return nonEmpty(l.Status)
	case "source":
		return nonEmpty(l.Source)
	case "dealValue":
		if l.DealValue == nil {
			return nil, false
		}
		return *l.DealValue, true
	case "tags":
		if l.Tags == nil {
			return nil, false
		}
		return l.Tags, true
	case "linkedinUrl":
		return nonEmpty(l.LinkedinURL)
	case "notes":
		return nonEmpty(l.Notes)
	case "archived":
		return l.Archived, true
	case "lastContactedAt":
		return timePtr(l.LastContactedAt)
	case "createdAt":
		return timeValue(l.CreatedAt)
	case "updatedAt":
		return timeValue(l.UpdatedAt)
	case "customFields":
		if l.CustomFields == nil {
			return nil, false
		}
		return map[string]any(l.CustomFields), true
	default:
		return nil, false
	}
}

// Company is an organisation that leads belong to.
type Company struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Website          string            `json:"website,omitempty"`
	Industry         string            `json:"industry,omitempty"`
	Description      string            `json:"description,omitempty"`
	Rating           *float64          `json:"rating,omitempty"`
	Status           string            `json:"status,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	ApolloEnrichment *ApolloEnrichment `json:"apolloEnrichment,omitempty"`
	BlogAnalysis     *BlogAnalysis     `json:"blogAnalysis,omitempty"`
	WritingProgram   *WritingProgram   `json:"writingProgram,omitempty"`
	CustomFields     CustomFields      `json:"customFields,omitempty"`
}

// RecordID implements Record.
func (c *Company) RecordID() string {
	if c == nil {
		return ""
	}
	return c.ID
}

// CustomFieldMap implements Record.
func (c *Company) CustomFieldMap() map[string]any {
	if c == nil {
		return nil
	}
	return c.CustomFields
}

// Property implements PropertySet. Nested blocks are returned as PropertySet
// values and are absent when nil.
func (c *Company) Property(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	switch name {
	case "id":
		return nonEmpty(c.ID)
	case "name":
		return nonEmpty(c.Name)
	case "website":
		return nonEmpty(c.Website)
	case "industry":
		return nonEmpty(c.Industry)
	case "description":
		return nonEmpty(c.Description)
	case "rating":
		if c.Rating == nil {
			return nil, false
		}
		return *c.Rating, true
	case "status":
		return nonEmpty(c.Status)
	case "createdAt":
		return timeValue(c.CreatedAt)
	case "updatedAt":
		return timeValue(c.UpdatedAt)
	case "apolloEnrichment":
		if c.ApolloEnrichment == nil {
			return nil, false
		}
		return c.ApolloEnrichment, true
	case "blogAnalysis":
		if c.BlogAnalysis == nil {
			return nil, false
		}
		return c.BlogAnalysis, true
	case "writingProgram":
		if c.WritingProgram == nil {
			return nil, false
		}
		return c.WritingProgram, true
	case "customFields":
		if c.CustomFields == nil {
			return nil, false
		}
		return map[string]any(c.CustomFields), true
	default:
		return nil, false
	}
}

// ApolloEnrichment is firmographic data returned by the enrichment provider.
type ApolloEnrichment struct {
	EmployeeCount *float64 `json:"employeeCount,omitempty"`
	AnnualRevenue *float64 `json:"annualRevenue,omitempty"`
	FoundedYear   *float64 `json:"foundedYear,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	City          string   `json:"city,omitempty"`
	Country       string   `json:"country,omitempty"`
	Technologies  []string `json:"technologies,omitempty"`
}

// Property implements PropertySet.
func (a *ApolloEnrichment) Property(name string) (any, bool) {
	switch name {
	case "employeeCount":
		return floatPtr(a.EmployeeCount)
	case "annualRevenue":
		return floatPtr(a.AnnualRevenue)
	case "foundedYear":
		return floatPtr(a.FoundedYear)
	case "industry":
		return nonEmpty(a.Industry)
	case "city":
		return nonEmpty(a.City)
	case "country":
		return nonEmpty(a.Country)
	case "technologies":
		if a.Technologies == nil {
			return nil, false
		}
		return a.Technologies, true
	default:
		return nil, false
	}
}

// BlogAnalysis summarises a company's blog activity.
type BlogAnalysis struct {
	HasBlog          bool       `json:"hasBlog"`
	PostCount        *float64   `json:"postCount,omitempty"`
	MonthlyFrequency *float64   `json:"monthlyFrequency,omitempty"`
	LastPostDate     *time.Time `json:"lastPostDate,omitempty"`
	ContentTopics    []string   `json:"contentTopics,omitempty"`
}

// Property implements PropertySet.
func (b *BlogAnalysis) Property(name string) (any, bool) {
	switch name {
	case "hasBlog":
		return b.HasBlog, true
	case "postCount":
		return floatPtr(b.PostCount)
	case "monthlyFrequency":
		return floatPtr(b.MonthlyFrequency)
	case "lastPostDate":
		return timePtr(b.LastPostDate)
	case "contentTopics":
		if b.ContentTopics == nil {
			return nil, false
		}
		return b.ContentTopics, true
	default:
		return nil, false
	}
}

// WritingProgram describes a paid guest-writing program run by a company.
type WritingProgram struct {
	HasProgram         bool     `json:"hasProgram"`
	AcceptsSubmissions bool     `json:"acceptsSubmissions"`
	PaymentAmount      *float64 `json:"paymentAmount,omitempty"`
	ProgramURL         string   `json:"programUrl,omitempty"`
	Status             string   `json:"status,omitempty"`
}

// Property implements PropertySet.
func (w *WritingProgram) Property(name string) (any, bool) {
	switch name {
	case "hasProgram":
		return w.HasProgram, true
	case "acceptsSubmissions":
		return w.AcceptsSubmissions, true
	case "paymentAmount":
		return floatPtr(w.PaymentAmount)
	case "programUrl":
		return nonEmpty(w.ProgramURL)
	case "status":
		return nonEmpty(w.Status)
	default:
		return nil, false
	}
}

func nonEmpty(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

func floatPtr(f *float64) (any, bool) {
	if f == nil {
		return nil, false
	}
	return *f, true
}

func timePtr(t *time.Time) (any, bool) {
	if t == nil || t.IsZero() {
		return nil, false
	}
	return *t, true
}

func timeValue(t time.Time) (any, bool) {
	if t.IsZero() {
		return nil, false
	}
	return t, true
}
