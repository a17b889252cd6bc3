package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStateDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "state.db"),
		Name: "state",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_CreatesDirectoryAndDefaultsProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")
	db, err := New(Config{Path: path, Name: "state"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, "state", db.Name())
	assert.Equal(t, ProfileStandard, db.profile)
}

func TestMigrate_StateSchemaIsIdempotent(t *testing.T) {
	db := newStateDB(t)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	_, err := db.Conn().Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('k', 'v', 1)`)
	require.NoError(t, err)

	var value string
	require.NoError(t, db.Conn().QueryRow(`SELECT value FROM kv WHERE key = 'k'`).Scan(&value))
	assert.Equal(t, "v", value)
}

func TestMigrate_UnknownNameIsSkipped(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "other.db"), Name: "other"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db := newStateDB(t)
	require.NoError(t, db.Migrate())

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('a', '1', 1)`)
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM kv WHERE key = 'a'`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			if _, err := tx.Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('b', '1', 1)`); err != nil {
				return err
			}
			return sentinel
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)

		var count int
		require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM kv WHERE key = 'b'`).Scan(&count))
		assert.Equal(t, 0, count)
	})

	t.Run("recovers panics", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			panic("bad")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in transaction")
	})

	t.Run("nil connection", func(t *testing.T) {
		assert.Error(t, WithTransaction(nil, func(tx *sql.Tx) error { return nil }))
	})
}

func TestBuildConnectionString(t *testing.T) {
	standard := buildConnectionString("/tmp/x.db", ProfileStandard)
	assert.Contains(t, standard, "journal_mode(WAL)")
	assert.Contains(t, standard, "synchronous(NORMAL)")

	cache := buildConnectionString("/tmp/x.db", ProfileCache)
	assert.Contains(t, cache, "synchronous(OFF)")
}
