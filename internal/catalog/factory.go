package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"photofind/internal/catalog/migrations"
	"photofind/internal/config"
	"photofind/internal/gallery"
)

// NewCatalogFromConfig creates a Catalog implementation based on the
// database config type, with the schema migrated to the latest version.
func NewCatalogFromConfig(cfg config.DatabaseConfig) (gallery.Catalog, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return open(filepath.Join(cfg.DataDir, "gallery.db"))
	case "memory":
		return open(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func open(path string) (*SQLiteCatalog, error) {
	c, err := NewSQLiteCatalog(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(c.db); err != nil {
		c.Close()
		return nil, fmt.Errorf("migrating catalog schema: %w", err)
	}
	return c, nil
}
