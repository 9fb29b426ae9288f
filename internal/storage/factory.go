package storage

import (
	"fmt"
	"strings"

	"adhesim/internal/model"
)

// NewStore opens the backend named by kind. An empty kind selects the
// in-memory store; dbPath is only read by the sqlite backend.
func NewStore(kind, dbPath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if dbPath == "" {
			return nil, fmt.Errorf("%w: sqlite store requires a database path", model.ErrConfiguration)
		}
		return newSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("%w: unsupported store backend %q (want memory or sqlite)", model.ErrConfiguration, kind)
	}
}

// CloseIfSupported releases backends holding a database handle.
func CloseIfSupported(store Store) error {
	if c, ok := store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
