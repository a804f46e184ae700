package mediastore

import (
	"fmt"

	"coursepack/internal/config"
)

// Open returns the catalog selected by the configured store backend.
func Open(cfg *config.Config) (Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	switch cfg.Store.Backend {
	case config.BackendDirectory:
		return OpenDirectory(cfg.Paths.MediaDir)
	case config.BackendSQLite, "":
		return OpenSQLite(cfg.Paths.MediaDB)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
