package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestDB returns a fully migrated in-memory database that is closed when
// the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_AppliesAllMigrations(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := db.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
	if dirty {
		t.Error("schema is dirty after a clean migration")
	}

	for _, table := range []string{"users", "water_intakes"} {
		var count int
		err := db.conn.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s missing after migration", table)
		}
	}
}

func TestMigrateUp_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
}

func TestMigrateDown_ThenUp(t *testing.T) {
	db := newTestDB(t)

	if err := db.MigrateDown(1); err != nil {
		t.Fatalf("MigrateDown(1) error = %v", err)
	}
	version, _, err := db.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if version != 1 {
		t.Errorf("version after rollback = %d, want 1", version)
	}

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	version, _, _ = db.MigrationVersion()
	if version != 2 {
		t.Errorf("version after re-apply = %d, want 2", version)
	}
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	db := newTestDB(t)

	if err := db.MigrateDown(0); err == nil {
		t.Fatal("MigrateDown(0) should return an error")
	}
}

func TestOpen_DoesNotMigrate(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	version, _, err := db.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0 for an unmigrated database", version)
	}
}

func TestNew_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening an existing file must find the schema already current.
	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing file error = %v", err)
	}
	defer reopened.Close()

	version, _, err := reopened.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}
