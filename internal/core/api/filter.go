package api

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/prospector/internal/rules"
	"github.com/solatis/prospector/internal/types"
)

// FilterLeads runs a chain over the workspace's leads.
func (s *FilterService) FilterLeads(ctx context.Context, req *FilterRequest) (*FilterLeadsResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}
	chain, err := s.resolveChain(ctx, ws, types.EntityLeads, req)
	if err != nil {
		return nil, err
	}

	recs, err := s.loadRecords(ctx, ws, true, usesSource(chain, types.SourceCompany))
	if err != nil {
		return nil, err
	}

	matched := s.engine.FilterLeads(recs.leads, recs.companies, chain)
	s.log.Infow("filtered leads", "workspace", ws, "rules", len(chain), "scanned", len(recs.leads), "matched", len(matched))
	return &FilterLeadsResponse{Leads: matched, Total: len(matched), Scanned: len(recs.leads)}, nil
}

// FilterCompanies runs a chain over the workspace's companies.
func (s *FilterService) FilterCompanies(ctx context.Context, req *FilterRequest) (*FilterCompaniesResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}
	chain, err := s.resolveChain(ctx, ws, types.EntityCompanies, req)
	if err != nil {
		return nil, err
	}

	recs, err := s.loadRecords(ctx, ws, usesSource(chain, types.SourceLeads), true)
	if err != nil {
		return nil, err
	}

	matched := s.engine.FilterCompanies(recs.companies, recs.leads, chain)
	s.log.Infow("filtered companies", "workspace", ws, "rules", len(chain), "scanned", len(recs.companies), "matched", len(matched))
	return &FilterCompaniesResponse{Companies: matched, Total: len(matched), Scanned: len(recs.companies)}, nil
}

// Explain reports per-rule results for one stored record.
func (s *FilterService) Explain(ctx context.Context, req *ExplainRequest) (*ExplainResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}
	entity, err := types.ParseEntityType(string(req.EntityType))
	if err != nil {
		return nil, statusError(err)
	}
	chain, err := s.resolveChain(ctx, ws, entity, &req.FilterRequest)
	if err != nil {
		return nil, err
	}

	var exp rules.Explanation
	switch entity {
	case types.EntityLeads:
		lead, err := s.store.GetLead(ctx, ws, req.RecordID)
		if err != nil {
			return nil, statusError(err)
		}
		recs, err := s.loadRecords(ctx, ws, false, usesSource(chain, types.SourceCompany))
		if err != nil {
			return nil, err
		}
		exp = s.engine.ExplainLead(lead, recs.companies, chain)
	case types.EntityCompanies:
		company, err := s.store.GetCompany(ctx, ws, req.RecordID)
		if err != nil {
			return nil, statusError(err)
		}
		recs, err := s.loadRecords(ctx, ws, usesSource(chain, types.SourceLeads), false)
		if err != nil {
			return nil, err
		}
		exp = s.engine.ExplainCompany(company, recs.leads, chain)
	}
	return &ExplainResponse{Explanation: exp}, nil
}

// resolveChain returns the request's chain, loading the preset when one is
// named, and validates it. The returned chain is a normalised copy.
func (s *FilterService) resolveChain(ctx context.Context, ws string, entity types.EntityType, req *FilterRequest) ([]types.FilterRule, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}

	chain := req.Rules
	if req.PresetID != "" {
		preset, err := s.store.GetPreset(ctx, ws, req.PresetID)
		if err != nil {
			return nil, statusError(err)
		}
		if preset.EntityType != entity {
			return nil, status.Errorf(codes.InvalidArgument, "preset %s filters %s, not %s", preset.ID, preset.EntityType, entity)
		}
		chain = preset.Rules
	}

	chain = append([]types.FilterRule(nil), chain...)
	for i := range chain {
		chain[i].Normalize()
	}
	if err := rules.ValidateChain(chain); err != nil {
		return nil, statusError(err)
	}
	return chain, nil
}

type recordSet struct {
	leads     []*types.Lead
	companies []*types.Company
}

// loadRecords fetches the requested collections concurrently after checking
// the configured record limit.
func (s *FilterService) loadRecords(ctx context.Context, ws string, wantLeads, wantCompanies bool) (*recordSet, error) {
	limit := s.cfg.API.MaxRecords
	nLeads, nCompanies, err := s.store.CountRecords(ctx, ws)
	if err != nil {
		return nil, statusError(err)
	}
	if total := lo.Ternary(wantLeads, nLeads, 0) + lo.Ternary(wantCompanies, nCompanies, 0); total > limit {
		return nil, statusError(fmt.Errorf("%w: %d records exceed limit %d", types.ErrTooManyRecords, total, limit))
	}

	var recs recordSet
	g, gctx := errgroup.WithContext(ctx)
	if wantLeads {
		g.Go(func() error {
			var err error
			recs.leads, err = s.store.ListLeads(gctx, ws, limit)
			return err
		})
	}
	if wantCompanies {
		g.Go(func() error {
			var err error
			recs.companies, err = s.store.ListCompanies(gctx, ws, limit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, statusError(err)
	}
	return &recs, nil
}

func usesSource(chain []types.FilterRule, source types.EntitySource) bool {
	return lo.SomeBy(chain, func(r types.FilterRule) bool { return r.EntitySource == source })
}
