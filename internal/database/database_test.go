package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "storage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestItemLifecycle(t *testing.T) {
	db := newTestDB(t)
	assert.Equal(t, "SQLite", db.DatabaseType())

	_, err := db.GetItem("admin_token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SetItem("admin_token", "abc"))
	require.NoError(t, db.SetItem("admin_token", "def"))
	require.NoError(t, db.SetItem("admin_user", `{"id":1}`))

	val, err := db.GetItem("admin_token")
	require.NoError(t, err)
	assert.Equal(t, "def", val)

	require.NoError(t, db.RemoveItem("admin_token", "missing"))
	_, err = db.GetItem("admin_token")
	assert.ErrorIs(t, err, ErrNotFound)

	val, err = db.GetItem("admin_user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, val)

	require.NoError(t, db.Clear())
	_, err = db.GetItem("admin_user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.SetItem("k", "v"))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	val, err := db.GetItem("k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.Error(t, err)

	s, err := Open("sqlite", filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "SQLite", s.DatabaseType())
}
