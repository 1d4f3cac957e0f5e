package db

import "embed"

// MigrationFS embebe los archivos SQL de internal/db/migrations para el
// runner de cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
