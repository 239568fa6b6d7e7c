// Package api implements the filter API on top of the store, the rule engine
// and the field catalog. Handlers take the caller's workspace from the
// request context and return gRPC status errors.
package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/prospector/internal/catalog"
	"github.com/solatis/prospector/internal/core/auth"
	"github.com/solatis/prospector/internal/core/config"
	"github.com/solatis/prospector/internal/rules"
	"github.com/solatis/prospector/internal/types"
)

// Store is the persistence the service needs. Implemented by *store.Store.
type Store interface {
	ListLeads(ctx context.Context, workspaceID string, limit int) ([]*types.Lead, error)
	ListCompanies(ctx context.Context, workspaceID string, limit int) ([]*types.Company, error)
	CountRecords(ctx context.Context, workspaceID string) (leads, companies int, err error)
	GetLead(ctx context.Context, workspaceID, id string) (*types.Lead, error)
	GetCompany(ctx context.Context, workspaceID, id string) (*types.Company, error)
	ListFieldDefinitions(ctx context.Context, workspaceID string) ([]types.FieldDefinition, error)
	SavePreset(ctx context.Context, preset types.FilterPreset) (types.FilterPreset, error)
	GetPreset(ctx context.Context, workspaceID string, id types.PresetID) (types.FilterPreset, error)
	ListPresets(ctx context.Context, workspaceID string, entity types.EntityType) ([]types.FilterPreset, error)
	DeletePreset(ctx context.Context, workspaceID string, id types.PresetID) error
	Import(ctx context.Context, workspaceID string, leads []*types.Lead, companies []*types.Company, defs []types.FieldDefinition) error
}

// FilterService serves filtering, catalog, preset and import requests.
type FilterService struct {
	store       Store
	engine      *rules.Engine
	definitions *catalog.DefinitionCache
	cfg         *config.Config
	log         *zap.SugaredLogger
}

// NewFilterService wires the service. definitions caches the store's field
// definitions and is invalidated by imports.
func NewFilterService(store Store, engine *rules.Engine, definitions *catalog.DefinitionCache, cfg *config.Config, log *zap.SugaredLogger) (*FilterService, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if definitions == nil {
		return nil, fmt.Errorf("definitions cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &FilterService{
		store:       store,
		engine:      engine,
		definitions: definitions,
		cfg:         cfg,
		log:         log,
	}, nil
}

// workspace returns the authenticated workspace. The auth interceptor always
// sets it, so a missing value is a server bug.
func workspace(ctx context.Context) (string, error) {
	ws := auth.WorkspaceIDFromContext(ctx)
	if ws == "" {
		return "", status.Error(codes.Internal, "missing workspace_id in context")
	}
	return ws, nil
}
