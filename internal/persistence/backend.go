// Package persistence defines the authoritative store the board synchronizes
// with, and an HTTP client for the REST rendition of it.
package persistence

import (
	"context"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Backend is the persistence contract. Calls that create return the
// authoritative record, with server-assigned id and position. Updates are
// partial: only fields present in the patch are written.
type Backend interface {
	// Board
	GetBoard(ctx context.Context, id types.ProjectID) (*models.Project, error)
	UpdateProject(ctx context.Context, id types.ProjectID, patch models.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id types.ProjectID) error

	// Lists
	CreateList(ctx context.Context, req CreateListRequest) (*models.List, error)
	UpdateList(ctx context.Context, id types.ListID, patch models.ListPatch) (*models.List, error)
	DeleteList(ctx context.Context, id types.ListID) error

	// Cards
	CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error)
	UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) (*models.Card, error)
	DeleteCard(ctx context.Context, id types.CardID) error

	// Checklists
	CreateChecklist(ctx context.Context, req CreateChecklistRequest) (*models.Checklist, error)
	UpdateChecklist(ctx context.Context, id types.ChecklistID, patch models.ChecklistPatch) (*models.Checklist, error)
	DeleteChecklist(ctx context.Context, id types.ChecklistID) error

	// Checklist items
	CreateChecklistItem(ctx context.Context, req CreateChecklistItemRequest) (*models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, id types.ItemID, patch models.ChecklistItemPatch) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, id types.ItemID) error

	// Comments
	CreateComment(ctx context.Context, req CreateCommentRequest) (*models.Activity, error)
}

// Directory lists and creates projects. It sits outside Backend because a
// board session never needs it.
type Directory interface {
	ListProjects(ctx context.Context) ([]*models.ProjectSummary, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*models.ProjectSummary, error)
}

// CreateProjectRequest creates a project owned by the caller.
type CreateProjectRequest struct {
	Title   string       `json:"title"`
	Course  *string      `json:"course,omitempty"`
	DueDate *models.Date `json:"due_date,omitempty"`
}

// CreateListRequest appends a list to a project.
type CreateListRequest struct {
	ProjectID types.ProjectID `json:"project_id"`
	Title     string          `json:"title"`
}

// CreateCardRequest appends a card to a list.
type CreateCardRequest struct {
	ProjectID   types.ProjectID  `json:"project_id"`
	ListID      types.ListID     `json:"list_id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	DueDate     *models.Date     `json:"due_date,omitempty"`
}

// CreateChecklistRequest appends a checklist to a card.
type CreateChecklistRequest struct {
	CardID types.CardID `json:"card_id"`
	Title  string       `json:"title"`
}

// CreateChecklistItemRequest appends an item to a checklist.
type CreateChecklistItemRequest struct {
	ChecklistID types.ChecklistID `json:"checklist_id"`
	Text        string            `json:"text"`
}

// CreateCommentRequest posts a comment as the authenticated user.
type CreateCommentRequest struct {
	CardID  types.CardID `json:"card_id"`
	Content string       `json:"content"`
}
