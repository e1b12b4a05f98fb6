// Package db provides the planner's store gateway and repositories.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DefaultFile is the database file name inside the data directory.
const DefaultFile = "content-manager.db"

// DB wraps the sql.DB with planner-specific configuration.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the planner database inside dataDir.
// The database is opened with:
// - a single connection, since SQLite has one writer
// - WAL mode
// - foreign key constraints enabled
func Open(dataDir, file string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if file == "" {
		file = DefaultFile
	}
	return OpenPath(filepath.Join(dataDir, file))
}

// OpenPath opens the database at path. ":memory:" gives a private
// in-memory store.
func OpenPath(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// In-memory databases are per connection, so one connection is also
	// what keeps ":memory:" coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Migrate brings the schema up to date using the embedded migrations.
func (db *DB) Migrate() error {
	m := NewMigrator(db.DB, Migrations())
	if err := m.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	return m.Up()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

var (
	defaultOnce sync.Once
	defaultDB   *DB
	defaultErr  error
)

// Default returns the process-wide handle, opening and migrating it on
// first use. Later calls ignore their arguments. The handle lives for the
// rest of the process.
func Default(dataDir, file string) (*DB, error) {
	defaultOnce.Do(func() {
		db, err := Open(dataDir, file)
		if err != nil {
			defaultErr = err
			return
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			defaultErr = err
			return
		}
		defaultDB = db
	})
	return defaultDB, defaultErr
}
