// Package session holds the admin bearer token and profile.
//
// A Session reads its storage on every call, so a logout performed through
// one Session is visible to the next request built from any other Session
// over the same storage. A nil Session, or one without storage, behaves as
// logged out and ignores writes.
package session

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/database"
	"github.com/bryan-buckman/pressroom/internal/model"
)

// Storage keys. Values are stored unencrypted.
const (
	TokenKey = "admin_token"
	UserKey  = "admin_user"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Storage is the subset of database.Store the session needs.
type Storage interface {
	GetItem(key string) (string, error)
	SetItem(key, value string) error
	RemoveItem(keys ...string) error
}

// Session is the admin auth state.
type Session struct {
	store    Storage
	onLogout func()
	log      *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// OnLogout sets a hook run after Logout clears the storage, typically to
// send the user back to the login screen.
func OnLogout(fn func()) Option {
	return func(s *Session) { s.onLogout = fn }
}

// WithLogger logs storage failures that are reported as logged out.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Session over store.
func New(store Storage, opts ...Option) *Session {
	s := &Session{store: store, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ok() bool {
	return s != nil && s.store != nil
}

// Token returns the stored bearer token, or "" when logged out or the
// storage cannot be read.
func (s *Session) Token() string {
	token, err := s.LoadToken()
	if err != nil {
		s.log.Warn("read session token", zap.Error(err))
		return ""
	}
	return token
}

// LoadToken is Token with storage failures surfaced. A missing token is ""
// and a nil error.
func (s *Session) LoadToken() (string, error) {
	if !s.ok() {
		return "", nil
	}
	token, err := s.store.GetItem(TokenKey)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("read %s: %w", TokenKey, err)
	}
	return token, nil
}

// SetToken stores the bearer token.
func (s *Session) SetToken(token string) error {
	if !s.ok() {
		return nil
	}
	return s.store.SetItem(TokenKey, token)
}

// RemoveToken clears the token and the user profile together.
func (s *Session) RemoveToken() error {
	if !s.ok() {
		return nil
	}
	return s.store.RemoveItem(TokenKey, UserKey)
}

// User returns the stored profile, or nil when none is stored or it cannot
// be decoded.
func (s *Session) User() *model.User {
	if !s.ok() {
		return nil
	}
	raw, err := s.store.GetItem(UserKey)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.log.Warn("read session user", zap.Error(err))
		}
		return nil
	}
	var u model.User
	if err := json.UnmarshalFromString(raw, &u); err != nil {
		return nil
	}
	return &u
}

// SetUser stores the profile.
func (s *Session) SetUser(u model.User) error {
	if !s.ok() {
		return nil
	}
	raw, err := json.MarshalToString(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.store.SetItem(UserKey, raw)
}

// IsAuthenticated reports whether a token is present. Validity is decided
// by the API, not here.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Start persists a login result.
func (s *Session) Start(auth model.AuthSession) error {
	if auth.Token == "" {
		return errors.New("login response carried no token")
	}
	if err := s.SetToken(auth.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.SetUser(auth.User); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// Logout clears the session and runs the logout hook.
func (s *Session) Logout() error {
	if s == nil {
		return nil
	}
	err := s.RemoveToken()
	if s.onLogout != nil {
		s.onLogout()
	}
	return err
}

// Ensure the database backends can back a Session.
var _ Storage = (database.Store)(nil)
