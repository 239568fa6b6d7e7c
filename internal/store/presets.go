package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/solatis/prospector/internal/types"
)

type presetRow struct {
	ID          string `db:"preset_id"`
	WorkspaceID string `db:"workspace_id"`
	Name        string `db:"name"`
	EntityType  string `db:"entity_type"`
	Rules       string `db:"rules"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r presetRow) preset() (types.FilterPreset, error) {
	p := types.FilterPreset{
		ID:          types.PresetID(r.ID),
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		EntityType:  types.EntityType(r.EntityType),
	}
	if err := json.UnmarshalFromString(r.Rules, &p.Rules); err != nil {
		return types.FilterPreset{}, fmt.Errorf("failed to decode rules of preset %s: %w", r.ID, err)
	}
	if p.Rules == nil {
		p.Rules = []types.FilterRule{}
	}
	p.CreatedAt, _ = time.Parse(timeLayout, r.CreatedAt)
	p.UpdatedAt, _ = time.Parse(timeLayout, r.UpdatedAt)
	return p, nil
}

// SavePreset stores a preset under its workspace, entity type and name.
// Saving an existing name replaces its rules and keeps its id.
func (s *Store) SavePreset(ctx context.Context, preset types.FilterPreset) (types.FilterPreset, error) {
	preset.Name = strings.TrimSpace(preset.Name)
	if preset.Name == "" {
		return types.FilterPreset{}, types.ErrPresetNameRequired
	}
	if _, err := types.ParseEntityType(string(preset.EntityType)); err != nil {
		return types.FilterPreset{}, fmt.Errorf("preset %q: %w", preset.Name, err)
	}
	if preset.ID == "" {
		preset.ID = types.NewPresetID()
	}
	rules := preset.Rules
	if rules == nil {
		rules = []types.FilterRule{}
	}
	encoded, err := json.MarshalToString(rules)
	if err != nil {
		return types.FilterPreset{}, fmt.Errorf("failed to encode rules of preset %q: %w", preset.Name, err)
	}

	now := s.now().Format(timeLayout)
	_, err = s.q.Exec(ctx, "upsert-preset", string(preset.ID), preset.WorkspaceID, preset.Name,
		string(preset.EntityType), encoded, now, now)
	if err != nil {
		return types.FilterPreset{}, fmt.Errorf("failed to store preset %q: %w", preset.Name, err)
	}

	var row presetRow
	if err := s.q.Get(ctx, "get-preset-by-name", &row, preset.WorkspaceID, string(preset.EntityType), preset.Name); err != nil {
		return types.FilterPreset{}, fmt.Errorf("failed to reload preset %q: %w", preset.Name, err)
	}
	return row.preset()
}

// GetPreset returns one preset or types.ErrNotFound.
func (s *Store) GetPreset(ctx context.Context, workspaceID string, id types.PresetID) (types.FilterPreset, error) {
	var row presetRow
	if err := s.q.Get(ctx, "get-preset", &row, workspaceID, string(id)); err != nil {
		return types.FilterPreset{}, notFound(err, "preset", string(id))
	}
	return row.preset()
}

// ListPresets returns the presets of a workspace. An empty entity lists both types.
func (s *Store) ListPresets(ctx context.Context, workspaceID string, entity types.EntityType) ([]types.FilterPreset, error) {
	var rows []presetRow
	if err := s.q.Select(ctx, "list-presets", &rows, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	presets := make([]types.FilterPreset, 0, len(rows))
	for _, r := range rows {
		if entity != "" && types.EntityType(r.EntityType) != entity {
			continue
		}
		p, err := r.preset()
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// DeletePreset removes a preset; types.ErrNotFound when it did not exist.
func (s *Store) DeletePreset(ctx context.Context, workspaceID string, id types.PresetID) error {
	res, err := s.q.Exec(ctx, "delete-preset", workspaceID, string(id))
	return affected(res, err, "preset", string(id))
}
