package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver.
)

// migration represents a single schema migration step.
type migration struct {
	version int
	sql     string
}

// migrations holds all schema migrations in order. Each migration is applied
// exactly once, tracked by the schema_migrations table.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE recipients (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    username   TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL COLLATE NOCASE UNIQUE,
    created_at DATETIME NOT NULL,
    is_active  INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX idx_recipients_active ON recipients(is_active, id);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE recipients ADD COLUMN name TEXT NOT NULL DEFAULT '';
ALTER TABLE recipients ADD COLUMN attributes TEXT NOT NULL DEFAULT '{}';
`,
	},
}

// NewSQLiteDB opens (or creates) the database at dbPath and applies any
// pending migrations.
func NewSQLiteDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(ctx, db); err != nil {
		closeQuietly(db, "migration")
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// Open opens (or creates) a SQLite database at dbPath and configures pragmas
// for WAL mode and foreign keys. No migrations are run.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite is single-writer; serialize all access through one connection
	// to avoid SQLITE_BUSY errors from concurrent goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, pragmaErr := db.ExecContext(ctx, p); pragmaErr != nil {
			closeQuietly(db, "pragma")
			return nil, fmt.Errorf("setting pragma %q: %w", p, pragmaErr)
		}
	}
	return db, nil
}

// memoryDSN opens a private in-memory database.
const memoryDSN = ":memory:"

// Migrate ensures the schema_migrations table exists and applies pending
// migrations in order. It returns the versions applied by this call.
func Migrate(ctx context.Context, db *sql.DB) ([]int, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return nil, err
	}

	var applied []int
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.version)
	}
	return applied, nil
}

// applyMigration runs a single schema migration inside a transaction.
func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		rollbackQuietly(tx, m.version)
		return fmt.Errorf("migration %d: %w", m.version, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UTC(),
	); err != nil {
		rollbackQuietly(tx, m.version)
		return fmt.Errorf("recording migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, or 0.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("querying current schema version: %w", err)
	}
	return v, nil
}

// LatestSchemaVersion is the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

func closeQuietly(db *sql.DB, stage string) {
	if cerr := db.Close(); cerr != nil {
		slog.Warn("failed to close database", "stage", stage, "error", cerr)
	}
}

func rollbackQuietly(tx *sql.Tx, version int) {
	if rbErr := tx.Rollback(); rbErr != nil {
		slog.Warn("failed to rollback migration", "version", version, "error", rbErr)
	}
}
