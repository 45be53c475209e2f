// Package storage is the key/value document store behind saved ABIs, call
// history and wallet authorization. Every key holds one string value, usually
// a JSON document, the way browser local storage does.
package storage

import (
	"errors"
	"fmt"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is a string key/value store.
type Store interface {
	// GetItem returns the value for key; ok is false when the key is absent.
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Close() error
}

// Drivers.
const (
	DriverFile    = "file"
	DriverLevelDB = "leveldb"
	DriverMemory  = "memory"
)

// Open returns a Store for driver rooted at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(path), nil
	case DriverLevelDB:
		return OpenLevelDB(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
