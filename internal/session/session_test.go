package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/pressroom/internal/database"
	"github.com/bryan-buckman/pressroom/internal/model"
)

func newStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTokenLifecycle(t *testing.T) {
	s := New(newStore(t))
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.SetToken("x"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "x", s.Token())

	require.NoError(t, s.SetUser(model.User{ID: 7, Email: "a@b.c", Name: "Ann"}))
	require.NotNil(t, s.User())
	assert.Equal(t, int64(7), s.User().ID)

	require.NoError(t, s.RemoveToken())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User(), "user is cleared with the token")
}

func TestTokenReadThroughStorage(t *testing.T) {
	store := newStore(t)
	a, b := New(store), New(store)
	require.NoError(t, a.Start(model.AuthSession{Token: "t1", User: model.User{ID: 1}}))
	assert.Equal(t, "t1", b.Token())

	require.NoError(t, b.Logout())
	assert.Equal(t, "", a.Token())
}

func TestLogoutRunsHook(t *testing.T) {
	called := false
	s := New(newStore(t), OnLogout(func() { called = true }))
	require.NoError(t, s.SetToken("x"))
	require.NoError(t, s.Logout())
	assert.True(t, called)
	assert.False(t, s.IsAuthenticated())
}

func TestStartRequiresToken(t *testing.T) {
	s := New(newStore(t))
	assert.Error(t, s.Start(model.AuthSession{User: model.User{ID: 1}}))
	assert.False(t, s.IsAuthenticated())
}

func TestNoStorageIsNoop(t *testing.T) {
	var nilSession *Session
	for _, s := range []*Session{nilSession, New(nil)} {
		assert.NoError(t, s.SetToken("x"))
		assert.Equal(t, "", s.Token())
		assert.False(t, s.IsAuthenticated())
		assert.Nil(t, s.User())
		assert.NoError(t, s.RemoveToken())
		assert.NoError(t, s.Logout())
	}
}

type brokenStorage struct{ err error }

func (b brokenStorage) GetItem(string) (string, error) { return "", b.err }
func (b brokenStorage) SetItem(string, string) error { return b.err }
func (b brokenStorage) RemoveItem(...string) error { return b.err }

func TestStorageFailureIsNotLoggedOut(t *testing.T) {
	locked := errors.New("database is locked")
	s := New(brokenStorage{err: locked})
	_, err := s.LoadToken()
	assert.ErrorIs(t, err, locked)
	assert.False(t, s.IsAuthenticated())

	missing := New(brokenStorage{err: database.ErrNotFound})
	token, err := missing.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	var none *Session
	token, err = none.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}
