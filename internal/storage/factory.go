package storage

import (
	"fmt"
	"os"
	"strings"
)

// DefaultStoreKind honours GENETICS_STORE and falls back to the in-memory
// backend.
func DefaultStoreKind() string {
	if kind := strings.TrimSpace(os.Getenv("GENETICS_STORE")); kind != "" {
		return kind
	}
	return "memory"
}

func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
