package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"

	"github.com/solatis/prospector/internal/catalog"
	"github.com/solatis/prospector/internal/core/api"
	"github.com/solatis/prospector/internal/core/auth"
	"github.com/solatis/prospector/internal/core/config"
	"github.com/solatis/prospector/internal/core/db"
	"github.com/solatis/prospector/internal/logger"
	"github.com/solatis/prospector/internal/rules"
	"github.com/solatis/prospector/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// definitionTTL bounds how stale a served catalog can be after another
// process changes field definitions.
const definitionTTL = time.Minute

// runtime is the opened database with everything built on it.
type runtime struct {
	db      *sqlx.DB
	queries *db.Queries
	store   *store.Store
	service *api.FilterService
}

// openRuntime opens the configured database, refuses an outdated schema and
// builds the filter service.
func openRuntime(cfg *config.Config) (*runtime, error) {
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.RequireCurrent(conn); err != nil {
		conn.Close()
		return nil, err
	}
	queries, err := db.LoadQueries(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}

	st := store.New(queries)
	log := logger.Get()
	service, err := api.NewFilterService(st, rules.NewEngine(log), catalog.NewDefinitionCache(st, definitionTTL), cfg, log)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return &runtime{db: conn, queries: queries, store: st, service: service}, nil
}

func (r *runtime) Close() error {
	return r.db.Close()
}

// workspaceContext marks ctx as acting for the --workspace flag.
func workspaceContext(ctx context.Context) context.Context {
	return auth.WithWorkspaceID(ctx, workspace)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
