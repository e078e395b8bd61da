package doctree

import (
	"io/fs"

	"github.com/goliatone/go-doctree/internal/migrations"
)

// GetMigrationsFS returns the embedded schema migrations for a dialect
// ("sqlite" or "postgres").
func GetMigrationsFS(dialect string) (fs.FS, error) {
	return migrations.FS(dialect)
}
