// Package migrations embeds the goose schema migrations of the local stores.
// The sqlite directory is applied to the SQLite cache database, the postgres
// directory to a shared PostgreSQL metadata database.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
