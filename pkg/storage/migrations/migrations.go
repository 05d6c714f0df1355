// Package migrations embeds the schema of the SQL storage backends.
package migrations

import "embed"

// FS holds one goose migration directory per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Directories inside FS.
const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
