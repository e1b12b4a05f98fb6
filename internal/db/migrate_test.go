package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
)

func rawMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"V1__create_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
		"V1__create_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
		"V2__add_body.up.sql":       {Data: []byte("ALTER TABLE notes ADD COLUMN body TEXT;")},
		"V2__add_body.down.sql":     {Data: []byte("ALTER TABLE notes DROP COLUMN body;")},
		"README.md":                 {Data: []byte("not a migration")},
		"Vx__broken.up.sql":         {Data: []byte("SELECT 1;")},
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n))
	return n == 1
}

func TestMigrator_Initialize(t *testing.T) {
	db := rawMemoryDB(t)
	m := NewMigrator(db, testMigrations())

	require.NoError(t, m.Initialize())
	require.NoError(t, m.Initialize(), "Initialize must be repeatable")
	assert.True(t, tableExists(t, db, "schema_migrations"))

	v, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestMigrator_Up(t *testing.T) {
	db := rawMemoryDB(t)
	m := NewMigrator(db, testMigrations())
	require.NoError(t, m.Initialize())

	require.NoError(t, m.Up())

	v, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "create_notes", applied[0].Description)
	assert.Equal(t, "add_body", applied[1].Description)
	assert.Len(t, applied[0].Checksum, 64)

	_, err = db.Exec("INSERT INTO notes (id, body) VALUES ('n1', 'hello')")
	require.NoError(t, err)

	require.NoError(t, m.Up(), "Up with nothing pending is a no-op")
}

func TestMigrator_checksumMismatch(t *testing.T) {
	db := rawMemoryDB(t)
	source := testMigrations()
	m := NewMigrator(db, source)
	require.NoError(t, m.Initialize())
	require.NoError(t, m.Up())

	source["V1__create_notes.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE notes (id INTEGER);")}

	err := m.Up()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMigration))
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestMigrator_failedMigrationRollsBack(t *testing.T) {
	db := rawMemoryDB(t)
	m := NewMigrator(db, fstest.MapFS{
		"V1__ok.up.sql":  {Data: []byte("CREATE TABLE a (id TEXT);")},
		"V2__bad.up.sql": {Data: []byte("CREATE TABLE b (id TEXT); INSERT INTO missing VALUES (1);")},
	})
	require.NoError(t, m.Initialize())

	err := m.Up()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMigration))

	v, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, tableExists(t, db, "b"))
}

func TestMigrator_Down(t *testing.T) {
	db := rawMemoryDB(t)
	m := NewMigrator(db, testMigrations())
	require.NoError(t, m.Initialize())
	require.NoError(t, m.Up())

	require.NoError(t, m.Down())
	v, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, db, "notes"))

	err = m.Down()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMigration))
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"V1__initial_schema.up.sql", 1, true},
		{"V12__x.up.sql", 12, true},
		{"V0__zero.up.sql", 0, false},
		{"Vx__bad.up.sql", 0, false},
		{"initial.up.sql", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseVersion(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	db, err := OpenPath(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate(), "Migrate must be repeatable")

	for _, table := range []string{"idea_bank", "tags", "idea_tags", "videos", "settings"} {
		assert.True(t, tableExists(t, db.DB, table), table)
	}
}

func TestOpen_createsDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	db, err := Open(dir, "")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	assert.FileExists(t, filepath.Join(dir, DefaultFile))

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}
