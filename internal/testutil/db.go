package testutil

import (
	"context"
	"testing"

	"github.com/thenoetrevino/groupboard/internal/database"
)

// SetupTestDB opens an in-memory database with the full schema and closes it
// when the test ends.
func SetupTestDB(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.Open(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	repo := database.NewRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}
