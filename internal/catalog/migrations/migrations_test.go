package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"images", "index_runs", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckStatus(db)
	if err == nil {
		t.Error("CheckStatus() expected error for fresh database, got nil")
	}

	// Error should mention needing migration
	if err.Error() != "catalog has no schema version (needs migration)" {
		t.Errorf("CheckStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckStatus(db)
	if err != nil {
		t.Errorf("CheckStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after double migration returned error: %v", err)
	}
}

func TestSchema_ImagePathUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Insert first image
	_, err := db.Exec("INSERT INTO images (path, mtime) VALUES ('/photos/a.jpg', 100.5)")
	if err != nil {
		t.Fatalf("Failed to insert first image: %v", err)
	}

	// Try to insert duplicate path (should fail due to UNIQUE constraint)
	_, err = db.Exec("INSERT INTO images (path, mtime) VALUES ('/photos/a.jpg', 200.5)")
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate path, but insert succeeded")
	}
}

func TestSchema_TagColumnsNullable(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Rows created without tags must carry NULL, not a default value
	_, err := db.Exec("INSERT INTO images (path, mtime) VALUES ('/photos/old.jpg', 1)")
	if err != nil {
		t.Fatalf("Failed to insert image: %v", err)
	}

	var people sql.NullInt64
	err = db.QueryRow("SELECT has_people FROM images WHERE path = '/photos/old.jpg'").Scan(&people)
	if err != nil {
		t.Fatalf("Failed to read has_people: %v", err)
	}
	if people.Valid {
		t.Errorf("has_people = %d for an untagged row, want NULL", people.Int64)
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
