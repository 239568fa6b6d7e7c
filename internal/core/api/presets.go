package api

import (
	"context"

	"github.com/solatis/prospector/internal/rules"
	"github.com/solatis/prospector/internal/types"
)

// SavePreset validates and stores a named chain. Saving an existing name
// replaces its rules.
func (s *FilterService) SavePreset(ctx context.Context, req *SavePresetRequest) (*PresetResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := types.ParseEntityType(string(req.EntityType)); err != nil {
		return nil, statusError(err)
	}
	if err := rules.ValidateChain(req.Rules); err != nil {
		return nil, statusError(err)
	}

	preset, err := s.store.SavePreset(ctx, types.FilterPreset{
		WorkspaceID: ws,
		Name:        req.Name,
		EntityType:  req.EntityType,
		Rules:       req.Rules,
	})
	if err != nil {
		return nil, statusError(err)
	}
	s.log.Infow("saved preset", "workspace", ws, "preset", preset.ID, "rules", len(preset.Rules))
	return &PresetResponse{Preset: preset}, nil
}

// ListPresets lists the workspace's presets.
func (s *FilterService) ListPresets(ctx context.Context, req *ListPresetsRequest) (*ListPresetsResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}
	if req.EntityType != "" {
		if _, err := types.ParseEntityType(string(req.EntityType)); err != nil {
			return nil, statusError(err)
		}
	}
	presets, err := s.store.ListPresets(ctx, ws, req.EntityType)
	if err != nil {
		return nil, statusError(err)
	}
	return &ListPresetsResponse{Presets: presets}, nil
}

// DeletePreset removes a preset.
func (s *FilterService) DeletePreset(ctx context.Context, req *DeletePresetRequest) (*DeletePresetResponse, error) {
	ws, err := workspace(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := types.ParsePresetID(string(req.ID)); err != nil {
		return nil, statusError(types.ErrNotFound)
	}
	if err := s.store.DeletePreset(ctx, ws, req.ID); err != nil {
		return nil, statusError(err)
	}
	s.log.Infow("deleted preset", "workspace", ws, "preset", req.ID)
	return &DeletePresetResponse{}, nil
}
