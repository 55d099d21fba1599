package database

import (
	"context"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Store defines the data operations the REST server needs. Calls that act as
// a user take the caller's id explicitly.
type Store interface {
	// Projects
	ListProjects(ctx context.Context, userID types.UserID) ([]*models.ProjectSummary, error)
	CreateProject(ctx context.Context, userID types.UserID, req persistence.CreateProjectRequest) (*models.ProjectSummary, error)
	GetBoard(ctx context.Context, id types.ProjectID) (*models.Project, error)
	UpdateProject(ctx context.Context, id types.ProjectID, patch models.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id types.ProjectID) error
	IsCollaborator(ctx context.Context, projectID types.ProjectID, userID types.UserID) (bool, error)

	// Lists
	CreateList(ctx context.Context, req persistence.CreateListRequest) (*models.List, error)
	UpdateList(ctx context.Context, id types.ListID, patch models.ListPatch) (*models.List, error)
	DeleteList(ctx context.Context, id types.ListID) error

	// Cards
	CreateCard(ctx context.Context, req persistence.CreateCardRequest) (*models.Card, error)
	UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) (*models.Card, error)
	DeleteCard(ctx context.Context, id types.CardID) error

	// Checklists
	CreateChecklist(ctx context.Context, req persistence.CreateChecklistRequest) (*models.Checklist, error)
	UpdateChecklist(ctx context.Context, id types.ChecklistID, patch models.ChecklistPatch) (*models.Checklist, error)
	DeleteChecklist(ctx context.Context, id types.ChecklistID) error
	CreateChecklistItem(ctx context.Context, req persistence.CreateChecklistItemRequest) (*models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, id types.ItemID, patch models.ChecklistItemPatch) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, id types.ItemID) error

	// Comments
	CreateComment(ctx context.Context, userID types.UserID, req persistence.CreateCommentRequest) (*models.Activity, error)

	// Scope
	ProjectOfList(ctx context.Context, id types.ListID) (types.ProjectID, error)
	ProjectOfCard(ctx context.Context, id types.CardID) (types.ProjectID, error)
	ProjectOfChecklist(ctx context.Context, id types.ChecklistID) (types.ProjectID, error)
	ProjectOfItem(ctx context.Context, id types.ItemID) (types.ProjectID, error)
}

// Compile-time verification that *Repository implements Store
var _ Store = (*Repository)(nil)
