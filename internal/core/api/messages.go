package api

import (
	"github.com/solatis/prospector/internal/rules"
	"github.com/solatis/prospector/internal/types"
)

// FilterRequest selects a rule chain inline or by preset id. A preset id
// wins over inline rules.
type FilterRequest struct {
	PresetID types.PresetID     `json:"presetId,omitempty"`
	Rules    []types.FilterRule `json:"rules,omitempty"`
}

// FilterLeadsResponse carries the matching leads in storage order.
type FilterLeadsResponse struct {
	Leads   []*types.Lead `json:"leads"`
	Total   int           `json:"total"`
	Scanned int           `json:"scanned"`
}

// FilterCompaniesResponse carries the matching companies in storage order.
type FilterCompaniesResponse struct {
	Companies []*types.Company `json:"companies"`
	Total     int              `json:"total"`
	Scanned   int              `json:"scanned"`
}

// ExplainRequest evaluates a chain against one stored record.
type ExplainRequest struct {
	FilterRequest
	EntityType types.EntityType `json:"entityType"`
	RecordID   string           `json:"recordId"`
}

// ExplainResponse wraps the per-rule outcome.
type ExplainResponse struct {
	Explanation rules.Explanation `json:"explanation"`
}

// FieldCatalogRequest asks for the catalog of one entity type. CrossEntity
// overrides the configured default when set.
type FieldCatalogRequest struct {
	EntityType  types.EntityType `json:"entityType"`
	CrossEntity *bool            `json:"crossEntity,omitempty"`
}

// FieldCatalogResponse is the ordered field catalog.
type FieldCatalogResponse struct {
	Fields []types.FilterableField `json:"fields"`
}

// SavePresetRequest stores a named chain.
type SavePresetRequest struct {
	Name       string             `json:"name"`
	EntityType types.EntityType   `json:"entityType"`
	Rules      []types.FilterRule `json:"rules"`
}

// PresetResponse wraps one preset.
type PresetResponse struct {
	Preset types.FilterPreset `json:"preset"`
}

// ListPresetsRequest optionally narrows the list to one entity type.
type ListPresetsRequest struct {
	EntityType types.EntityType `json:"entityType,omitempty"`
}

// ListPresetsResponse lists presets ordered by entity type and name.
type ListPresetsResponse struct {
	Presets []types.FilterPreset `json:"presets"`
}

// DeletePresetRequest names the preset to delete.
type DeletePresetRequest struct {
	ID types.PresetID `json:"id"`
}

// DeletePresetResponse is empty on success.
type DeletePresetResponse struct{}

// ImportLeadsRequest carries a CSV or XLSX file. Mapping entries override
// the suggested header mapping; an empty target ignores the column.
type ImportLeadsRequest struct {
	FileName string            `json:"fileName"`
	Data     []byte            `json:"data"`
	Mapping  map[string]string `json:"mapping,omitempty"`
}

// ImportLeadsResponse summarises a stored import.
type ImportLeadsResponse struct {
	Leads            int                     `json:"leads"`
	CompaniesCreated int                     `json:"companiesCreated"`
	Skipped          int                     `json:"skipped"`
	FilledCells      int                     `json:"filledCells"`
	Mapping          map[string]string       `json:"mapping"`
	Definitions      []types.FieldDefinition `json:"definitions"`
}
