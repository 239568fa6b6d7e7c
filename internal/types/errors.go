package types

import "errors"

// Sentinel errors for prospector operations.
var (
	// ErrNotFound indicates a record, preset or definition does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownEntityType indicates an entity type other than leads or companies.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrInvalidRule indicates a filter rule failed boundary validation.
	ErrInvalidRule = errors.New("invalid filter rule")

	// ErrInvalidOperator indicates an operator outside the fixed vocabulary.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrPresetNameRequired indicates a preset was saved without a name.
	ErrPresetNameRequired = errors.New("preset name is required")

	// ErrTooManyRecords indicates a filtering pass would exceed the configured record limit.
	ErrTooManyRecords = errors.New("too many records")

	// ErrUnsupportedFormat indicates an import file that is neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyImport indicates an import file without a header row.
	ErrEmptyImport = errors.New("import file has no header row")
)
