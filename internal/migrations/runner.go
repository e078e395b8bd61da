// Package migrations applies the embedded document tree schema with
// bun's migrator.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

//go:embed sql
var sqlFS embed.FS

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"

	tableName      = "doctree_migrations"
	locksTableName = "doctree_migration_locks"
)

// ErrUnsupportedDialect is returned for databases without an embedded schema.
var ErrUnsupportedDialect = errors.New("migrations: unsupported dialect")

// FS returns the migration files for a dialect.
func FS(name string) (fs.FS, error) {
	switch name {
	case DialectSQLite, DialectPostgres:
		return fs.Sub(sqlFS, "sql/"+name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, name)
	}
}

// DialectName maps a bun database to the schema directory it uses.
func DialectName(db *bun.DB) (string, error) {
	switch db.Dialect().Name() {
	case dialect.SQLite:
		return DialectSQLite, nil
	case dialect.PG:
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, db.Dialect().Name())
	}
}

// Status lists applied and pending migration names.
type Status struct {
	Applied []string
	Pending []string
}

// Runner applies and rolls back the embedded schema.
type Runner struct {
	migrator *migrate.Migrator
}

// NewRunner discovers the migrations matching db's dialect.
func NewRunner(db *bun.DB) (*Runner, error) {
	if db == nil {
		return nil, errors.New("migrations: database not configured")
	}
	name, err := DialectName(db)
	if err != nil {
		return nil, err
	}
	files, err := FS(name)
	if err != nil {
		return nil, err
	}
	set := migrate.NewMigrations()
	if err := set.Discover(files); err != nil {
		return nil, fmt.Errorf("migrations: discover %s: %w", name, err)
	}
	return &Runner{
		migrator: migrate.NewMigrator(db, set,
			migrate.WithTableName(tableName),
			migrate.WithLocksTableName(locksTableName),
		),
	}, nil
}

// Up applies every pending migration as one group. A nil group means the
// schema was already current.
func (r *Runner) Up(ctx context.Context) (*migrate.MigrationGroup, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("migrations: lock: %w", err)
	}
	defer r.migrator.Unlock(ctx) //nolint:errcheck

	group, err := r.migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: migrate: %w", err)
	}
	if group.IsZero() {
		return nil, nil
	}
	return group, nil
}

// Down rolls back the most recent migration group.
func (r *Runner) Down(ctx context.Context) (*migrate.MigrationGroup, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("migrations: lock: %w", err)
	}
	defer r.migrator.Unlock(ctx) //nolint:errcheck

	group, err := r.migrator.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: rollback: %w", err)
	}
	if group.IsZero() {
		return nil, nil
	}
	return group, nil
}

// Status reports which migrations have been applied.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	all, err := r.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: status: %w", err)
	}
	status := &Status{}
	for _, m := range all.Applied() {
		status.Applied = append(status.Applied, m.Name)
	}
	for _, m := range all.Unapplied() {
		status.Pending = append(status.Pending, m.Name)
	}
	return status, nil
}
