// Package migrations embeds the schema migrations for both supported dialects.
package migrations

import "embed"

// SqliteMigrations holds sqlite/NNN_*.sql, applied in filename order.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

// PostgresMigrations holds postgres/NNN_*.sql, applied in filename order.
//
//go:embed postgres/*.sql
var PostgresMigrations embed.FS
