package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// BlobStore persists opaque values under a name. Implementations must make a
// Put visible to later Gets as a whole or not at all.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Timestamped is implemented by stores that know when a key was last written.
type Timestamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Open returns the store for driver rooted at path.
func Open(driver, path string) (BlobStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: path is required")
	}
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverFile:
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: key is required")
	}
	return nil
}
