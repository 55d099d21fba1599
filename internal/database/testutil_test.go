package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

const owner types.UserID = "u-owner"

// setupTestRepo opens a migrated in-memory database.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	repo := NewRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// fixture is a small board: lists Todo and Done, two cards in Todo.
type fixture struct {
	project *models.ProjectSummary
	todo    *models.List
	done    *models.List
	first   *models.Card
	second  *models.Card
}

func newFixture(t *testing.T, repo *Repository) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.project, err = repo.CreateProject(ctx, owner, persistence.CreateProjectRequest{Title: "Capstone"})
	require.NoError(t, err)
	f.todo, err = repo.CreateList(ctx, persistence.CreateListRequest{ProjectID: f.project.ID, Title: "Todo"})
	require.NoError(t, err)
	f.done, err = repo.CreateList(ctx, persistence.CreateListRequest{ProjectID: f.project.ID, Title: "Done"})
	require.NoError(t, err)
	f.first, err = repo.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: f.project.ID, ListID: f.todo.ID, Title: "First"})
	require.NoError(t, err)
	f.second, err = repo.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: f.project.ID, ListID: f.todo.ID, Title: "Second"})
	require.NoError(t, err)
	return f
}

func board(t *testing.T, repo *Repository, id types.ProjectID) *models.Project {
	t.Helper()
	p, err := repo.GetBoard(context.Background(), id)
	require.NoError(t, err)
	return p
}
