package database

import (
	"embed"
	"io/fs"
)

// MigrationsDir is the directory inside MigrationsFS holding the schema files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationsFS returns the compiled-in schema migrations. The SQL is portable
// across the sqlite and postgres drivers.
func MigrationsFS() fs.FS {
	return migrations
}
