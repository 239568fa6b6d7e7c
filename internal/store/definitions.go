package store

import (
	"context"
	"fmt"

	"github.com/solatis/prospector/internal/types"
)

type definitionRow struct {
	EntityType string `db:"entity_type"`
	Name       string `db:"name"`
	Label      string `db:"label"`
	FieldType  string `db:"field_type"`
	Options    string `db:"options"`
}

// ListFieldDefinitions returns the custom field definitions of a workspace
// for both entity types, ordered by entity type and name.
func (s *Store) ListFieldDefinitions(ctx context.Context, workspaceID string) ([]types.FieldDefinition, error) {
	var rows []definitionRow
	if err := s.q.Select(ctx, "list-field-definitions", &rows, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}

	defs := make([]types.FieldDefinition, 0, len(rows))
	for _, r := range rows {
		def := types.FieldDefinition{
			EntityType: types.EntityType(r.EntityType),
			Name:       r.Name,
			Label:      r.Label,
			FieldType:  r.FieldType,
		}
		if r.Options != "" {
			if err := json.UnmarshalFromString(r.Options, &def.Options); err != nil {
				return nil, fmt.Errorf("failed to decode options of field %s: %w", r.Name, err)
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// PutFieldDefinition inserts or replaces the definition keyed by entity type and name.
func (s *Store) PutFieldDefinition(ctx context.Context, workspaceID string, def types.FieldDefinition) error {
	if _, err := types.ParseEntityType(string(def.EntityType)); err != nil {
		return fmt.Errorf("field %s: %w", def.Name, err)
	}
	if def.Name == "" {
		return fmt.Errorf("field definition without name")
	}

	options := def.Options
	if options == nil {
		options = []string{}
	}
	encoded, err := json.MarshalToString(options)
	if err != nil {
		return fmt.Errorf("failed to encode options of field %s: %w", def.Name, err)
	}

	_, err = s.q.Exec(ctx, "upsert-field-definition", workspaceID, string(def.EntityType), def.Name, def.Label, def.FieldType, encoded)
	if err != nil {
		return fmt.Errorf("failed to store field definition %s: %w", def.Name, err)
	}
	return nil
}

// DeleteFieldDefinition removes a definition. Stored custom values are kept.
func (s *Store) DeleteFieldDefinition(ctx context.Context, workspaceID string, entity types.EntityType, name string) error {
	res, err := s.q.Exec(ctx, "delete-field-definition", workspaceID, string(entity), name)
	return affected(res, err, "field definition", name)
}
