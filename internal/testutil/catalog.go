package testutil

import (
	"testing"

	"photofind/internal/catalog"
	"photofind/internal/catalog/migrations"
	"photofind/internal/gallery"
)

// NewTestCatalog creates a new in-memory SQLite catalog with the schema
// migrated to the latest version. The catalog is automatically closed
// when the test completes.
func NewTestCatalog(t *testing.T) gallery.Catalog {
	t.Helper()

	sqlDB, err := catalog.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate schema: %v", err)
	}

	c := catalog.NewSQLiteCatalogFromDB(sqlDB)

	t.Cleanup(func() {
		c.Close()
	})

	return c
}
