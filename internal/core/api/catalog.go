package api

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/solatis/prospector/internal/catalog"
	"github.com/solatis/prospector/internal/types"
)

// FieldCatalog builds the field catalog from the workspace's records and
// field definitions.
func (s *FilterService) FieldCatalog(ctx context.Context, req *FieldCatalogRequest) (*FieldCatalogResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}
	entity, err := types.ParseEntityType(string(req.EntityType))
	if err != nil {
		return nil, statusError(err)
	}
	cross := s.cfg.Filter.CrossEntity
	if req.CrossEntity != nil {
		cross = *req.CrossEntity
	}

	var (
		defs []types.FieldDefinition
		recs *recordSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		defs, err = s.definitions.Get(gctx, ws)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = s.loadRecords(gctx, ws,
			entity == types.EntityLeads || cross,
			entity == types.EntityCompanies || cross)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, statusError(err)
	}

	fields := catalog.Build(catalog.Input{
		Entity:         entity,
		Leads:          recs.leads,
		Companies:      recs.companies,
		Definitions:    defs,
		PipelineStages: s.cfg.Filter.PipelineStages,
		CrossEntity:    cross,
	})
	return &FieldCatalogResponse{Fields: fields}, nil
}
