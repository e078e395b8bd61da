package di

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-doctree/internal/runtimeconfig"
)

// OpenDB opens a bun database for the configured driver. The caller owns the
// returned handle.
func OpenDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch driver := runtimeconfig.NormalizeDriver(cfg.Driver); driver {
	case runtimeconfig.DriverSQLite:
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		// sqlite serialises writers; one connection keeps in-memory DSNs
		// pointing at a single database.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case runtimeconfig.DriverPostgres:
		connCfg, err := pgx.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: parse postgres dsn: %w", err)
		}
		return bun.NewDB(stdlib.OpenDB(*connCfg), pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, driver)
	}
}
