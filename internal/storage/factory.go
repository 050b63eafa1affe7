package storage

import (
	"fmt"

	"foodlog/internal/config"
	"foodlog/internal/tracker"
)

// NewStoreFromConfig creates a Store implementation based on the storage config type.
func NewStoreFromConfig(cfg config.StorageConfig) (tracker.Store, error) {
	switch cfg.Type {
	case "json", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("json storage requires path to be set")
		}
		return NewJSONStore(cfg.Path), nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite storage requires path to be set")
		}
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
