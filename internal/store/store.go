// Package store persists leads, companies, custom field definitions and
// filter presets for one workspace at a time.
//
// Records are kept as JSON documents in the shape the web client writes, so
// adding a property to a record never needs a migration. Only the columns
// used for lookups are broken out.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/solatis/prospector/internal/core/db"
	"github.com/solatis/prospector/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const timeLayout = time.RFC3339Nano

// Store reads and writes workspace data through named queries.
type Store struct {
	q   *db.Queries
	now func() time.Time
}

// New returns a Store over loaded queries.
func New(q *db.Queries) *Store {
	return &Store{q: q, now: func() time.Time { return time.Now().UTC() }}
}

// ListLeads returns up to limit leads of a workspace ordered by id.
func (s *Store) ListLeads(ctx context.Context, workspaceID string, limit int) ([]*types.Lead, error) {
	var docs []string
	if err := s.q.Select(ctx, "list-leads", &docs, workspaceID, limit); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	leads := make([]*types.Lead, 0, len(docs))
	for _, doc := range docs {
		var lead types.Lead
		if err := json.UnmarshalFromString(doc, &lead); err != nil {
			return nil, fmt.Errorf("failed to decode lead: %w", err)
		}
		leads = append(leads, &lead)
	}
	return leads, nil
}

// ListCompanies returns up to limit companies of a workspace ordered by id.
func (s *Store) ListCompanies(ctx context.Context, workspaceID string, limit int) ([]*types.Company, error) {
	var docs []string
	if err := s.q.Select(ctx, "list-companies", &docs, workspaceID, limit); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	companies := make([]*types.Company, 0, len(docs))
	for _, doc := range docs {
		var company types.Company
		if err := json.UnmarshalFromString(doc, &company); err != nil {
			return nil, fmt.Errorf("failed to decode company: %w", err)
		}
		companies = append(companies, &company)
	}
	return companies, nil
}

// CountRecords returns the number of stored leads and companies.
func (s *Store) CountRecords(ctx context.Context, workspaceID string) (leads, companies int, err error) {
	if err := s.q.Get(ctx, "count-leads", &leads, workspaceID); err != nil {
		return 0, 0, fmt.Errorf("failed to count leads: %w", err)
	}
	if err := s.q.Get(ctx, "count-companies", &companies, workspaceID); err != nil {
		return 0, 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return leads, companies, nil
}

// GetLead returns one lead or types.ErrNotFound.
func (s *Store) GetLead(ctx context.Context, workspaceID, id string) (*types.Lead, error) {
	var doc string
	if err := s.q.Get(ctx, "get-lead", &doc, workspaceID, id); err != nil {
		return nil, notFound(err, "lead", id)
	}
	var lead types.Lead
	if err := json.UnmarshalFromString(doc, &lead); err != nil {
		return nil, fmt.Errorf("failed to decode lead %s: %w", id, err)
	}
	return &lead, nil
}

// GetCompany returns one company or types.ErrNotFound.
func (s *Store) GetCompany(ctx context.Context, workspaceID, id string) (*types.Company, error) {
	var doc string
	if err := s.q.Get(ctx, "get-company", &doc, workspaceID, id); err != nil {
		return nil, notFound(err, "company", id)
	}
	var company types.Company
	if err := json.UnmarshalFromString(doc, &company); err != nil {
		return nil, fmt.Errorf("failed to decode company %s: %w", id, err)
	}
	return &company, nil
}

// PutLead inserts or replaces a lead. Missing ids are generated and
// timestamps are maintained.
func (s *Store) PutLead(ctx context.Context, workspaceID string, lead *types.Lead) error {
	now := s.now()
	if lead.ID == "" {
		lead.ID = types.NewID()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	doc, err := json.MarshalToString(lead)
	if err != nil {
		return fmt.Errorf("failed to encode lead %s: %w", lead.ID, err)
	}
	_, err = s.q.Exec(ctx, "upsert-lead", workspaceID, lead.ID, lead.CompanyID, doc,
		lead.CreatedAt.Format(timeLayout), lead.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to store lead %s: %w", lead.ID, err)
	}
	return nil
}

// PutCompany inserts or replaces a company.
func (s *Store) PutCompany(ctx context.Context, workspaceID string, company *types.Company) error {
	now := s.now()
	if company.ID == "" {
		company.ID = types.NewID()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	doc, err := json.MarshalToString(company)
	if err != nil {
		return fmt.Errorf("failed to encode company %s: %w", company.ID, err)
	}
	_, err = s.q.Exec(ctx, "upsert-company", workspaceID, company.ID, company.Name, doc,
		company.CreatedAt.Format(timeLayout), company.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to store company %s: %w", company.ID, err)
	}
	return nil
}

// DeleteLead removes a lead; types.ErrNotFound when it did not exist.
func (s *Store) DeleteLead(ctx context.Context, workspaceID, id string) error {
	res, err := s.q.Exec(ctx, "delete-lead", workspaceID, id)
	return affected(res, err, "lead", id)
}

// DeleteCompany removes a company. Its leads keep their companyId.
func (s *Store) DeleteCompany(ctx context.Context, workspaceID, id string) error {
	res, err := s.q.Exec(ctx, "delete-company", workspaceID, id)
	return affected(res, err, "company", id)
}

// Import stores companies, then leads, then definitions in one transaction.
func (s *Store) Import(ctx context.Context, workspaceID string, leads []*types.Lead, companies []*types.Company, defs []types.FieldDefinition) error {
	return s.q.InTx(ctx, func(q *db.Queries) error {
		tx := &Store{q: q, now: s.now}
		for _, c := range companies {
			if err := tx.PutCompany(ctx, workspaceID, c); err != nil {
				return err
			}
		}
		for _, l := range leads {
			if err := tx.PutLead(ctx, workspaceID, l); err != nil {
				return err
			}
		}
		for _, d := range defs {
			if err := tx.PutFieldDefinition(ctx, workspaceID, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, types.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", kind, id, err)
}

func affected(res sql.Result, err error, kind, id string) error {
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, types.ErrNotFound)
	}
	return nil
}
