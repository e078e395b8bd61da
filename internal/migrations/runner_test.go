package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestFSIncludesBothDialects(t *testing.T) {
	for _, name := range []string{DialectSQLite, DialectPostgres} {
		files, err := FS(name)
		if err != nil {
			t.Fatalf("FS(%s): %v", name, err)
		}
		matches, err := fs.Glob(files, "*.up.sql")
		if err != nil {
			t.Fatalf("glob: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("expected up migrations for %s", name)
		}
	}

	if _, err := FS("oracle"); !errors.Is(err, ErrUnsupportedDialect) {
		t.Fatalf("expected ErrUnsupportedDialect, got %v", err)
	}
}

func TestRunnerUpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, "migrations_up")

	runner, err := NewRunner(db)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	group, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if group == nil || len(group.Migrations) == 0 {
		t.Fatalf("expected first run to apply migrations")
	}

	again, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if again != nil {
		t.Fatalf("expected no pending migrations, got %s", again)
	}

	for _, table := range []string{"document_nodes", "document_tags"} {
		var count int
		if err := db.NewSelect().TableExpr(table).ColumnExpr("count(*)").Scan(ctx, &count); err != nil {
			t.Fatalf("query %s: %v", table, err)
		}
	}

	status, err := runner.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.Pending) != 0 || len(status.Applied) == 0 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestRunnerDownDropsTables(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, "migrations_down")

	runner, err := NewRunner(db)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if _, err := runner.Up(ctx); err != nil {
		t.Fatalf("up: %v", err)
	}
	if _, err := runner.Down(ctx); err != nil {
		t.Fatalf("down: %v", err)
	}

	var count int
	if err := db.NewSelect().TableExpr("document_nodes").ColumnExpr("count(*)").Scan(ctx, &count); err == nil {
		t.Fatalf("expected document_nodes to be dropped")
	}

	status, err := runner.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.Applied) != 0 {
		t.Fatalf("expected nothing applied after rollback, got %v", status.Applied)
	}
}
