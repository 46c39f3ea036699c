package database

import (
	"context"
	"database/sql"
	"testing"
)

// TestDB wraps an in-memory SQLite database for tests
type TestDB struct {
	DB *Database
}

// WithTestDB runs fn against a fresh in-memory database
func WithTestDB(t *testing.T, fn func(tdb *TestDB)) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	// :memory: databases are per-connection
	sqlDB.SetMaxOpenConns(1)

	db := NewFromDB(sqlDB)
	if err := db.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	fn(&TestDB{DB: db})
}
