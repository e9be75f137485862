package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns a fresh in-memory inventory database with the schema
// applied, closed automatically when the test finishes. Every test gets its
// own database, so stock levels and movement logs never bleed between tests.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return database
}
