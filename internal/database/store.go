// Package database provides the local key/value storage that holds the
// admin session between commands.
package database

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetItem for a missing key.
var ErrNotFound = errors.New("database: key not found")

// Store defines the interface for storage operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	GetItem(key string) (string, error)
	SetItem(key, value string) error
	RemoveItem(keys ...string) error
	Clear() error
}

// Open opens the backend named by driver ("sqlite" or "postgres").
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return New(dsn)
	case "postgres":
		return NewPostgres(dsn)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}
