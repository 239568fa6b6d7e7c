package api

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/prospector/internal/ingest"
	"github.com/solatis/prospector/internal/types"
)

// ImportLeads parses a CSV or XLSX file into leads, companies and custom
// field definitions and stores them in one transaction.
func (s *FilterService) ImportLeads(ctx context.Context, req *ImportLeadsRequest) (*ImportLeadsResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}

	table, err := ingest.ReadTable(req.FileName, bytes.NewReader(req.Data))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if len(table.Rows) > s.cfg.Import.MaxRows {
		return nil, statusError(fmt.Errorf("%w: %d rows exceed import limit %d", types.ErrTooManyRecords, len(table.Rows), s.cfg.Import.MaxRows))
	}
	filled := ingest.ForwardFill(table, s.cfg.Import.ForwardFill...)

	mapping := ingest.SuggestMapping(table.Headers)
	for header, target := range req.Mapping {
		if _, ok := mapping[header]; ok {
			mapping[header] = target
		}
	}

	existing, err := s.store.ListCompanies(ctx, ws, s.cfg.API.MaxRecords)
	if err != nil {
		return nil, statusError(err)
	}

	res := ingest.BuildLeads(table, mapping, ingest.Options{ExistingCompanies: existing})
	if err := s.store.Import(ctx, ws, res.Leads, res.Companies, res.Definitions); err != nil {
		return nil, statusError(err)
	}
	s.definitions.Invalidate(ws)

	s.log.Infow("imported leads", "workspace", ws, "file", req.FileName,
		"leads", len(res.Leads), "companies", len(res.Companies), "skipped", res.Skipped)
	return &ImportLeadsResponse{
		Leads:            len(res.Leads),
		CompaniesCreated: len(res.Companies),
		Skipped:          res.Skipped,
		FilledCells:      filled,
		Mapping:          mapping,
		Definitions:      res.Definitions,
	}, nil
}
