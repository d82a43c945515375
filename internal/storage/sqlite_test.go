package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewSQLiteDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewSQLiteDB_CreatesTables(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"recipients", "schema_migrations"} {
		var name string
		err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestNewSQLiteDB_MigrationVersion(t *testing.T) {
	db := newTestDB(t)

	version, err := SchemaVersion(context.Background(), db)
	if err != nil {
		t.Fatalf("querying version: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("expected version %d, got %d", LatestSchemaVersion(), version)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "mailbatch.db")

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	applied, err := Migrate(ctx, db)
	if err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if len(applied) != len(migrations) {
		t.Errorf("expected %d migrations applied, got %v", len(migrations), applied)
	}

	applied, err = Migrate(ctx, db)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no migrations on second run, got %v", applied)
	}
}
