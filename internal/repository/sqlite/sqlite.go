// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// The whole application state is two small tables owned by one process. An
// embedded, file-based database needs no separate server, and ":memory:" gives
// every test its own fresh store.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without a C compiler (unlike github.com/mattn/go-sqlite3, which uses cgo).
//
// SCHEMA:
// Tables are created by versioned migrations under migrations/, embedded in the
// binary and applied with golang-migrate. New runs them on every start; the
// migrate command in cmd/migrate drives the same files by hand.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps a sql.DB connection pool and provides repository methods.
// It implements repository.UserRepository and repository.IntakeRepository.
type DB struct {
	conn *sql.DB
}

// Open connects to the database at dbPath and applies connection pragmas,
// without touching the schema. Most callers want New.
//
// dbPath examples:
//   - "data/water_tracker.db" → file-based database (persistent)
//   - ":memory:"              → in-memory database (tests)
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, pragmas are per connection, and each
	// connection to ":memory:" is a separate database. One connection keeps all
	// three consistent.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	return &DB{conn: conn}, nil
}

// New opens the database and migrates it to the latest schema version.
func New(dbPath string) (*DB, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// MigrateUp applies every pending migration. An up-to-date schema is not an error.
func (db *DB) MigrateUp() error {
	return db.withMigrator(func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// MigrateDown rolls back the given number of migrations.
func (db *DB) MigrateDown(steps int) error {
	if steps < 1 {
		return fmt.Errorf("sqlite: rollback steps must be positive, got %d", steps)
	}
	return db.withMigrator(func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// MigrationVersion returns the applied schema version and whether the last
// migration failed halfway. Version 0 means no migration has run.
func (db *DB) MigrationVersion() (version uint, dirty bool, err error) {
	err = db.withMigrator(func(m *migrate.Migrate) error {
		v, d, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		version, dirty = v, d
		return nil
	})
	return version, dirty, err
}

// ForceVersion records version as applied and clears the dirty flag.
func (db *DB) ForceVersion(version int) error {
	return db.withMigrator(func(m *migrate.Migrate) error {
		return m.Force(version)
	})
}

// withMigrator builds a golang-migrate instance over the shared connection
// pool and the embedded migration files.
func (db *DB) withMigrator(fn func(m *migrate.Migrate) error) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: loading embedded migrations: %w", err)
	}
	defer src.Close()

	driver, err := migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sqlite: creating migrator: %w", err)
	}
	// m.Close is not called: the database driver would close db.conn with it.

	if err := fn(m); err != nil {
		return fmt.Errorf("sqlite: migrating: %w", err)
	}
	return nil
}
