package testutil

import (
	"time"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Fixture ids used by SampleBoard.
const (
	ProjectID   types.ProjectID   = "p1"
	TodoListID  types.ListID      = "l1"
	DoneListID  types.ListID      = "l2"
	CardA       types.CardID      = "c1"
	CardB       types.CardID      = "c2"
	CardC       types.CardID      = "c3"
	ChecklistID types.ChecklistID = "k1"
	ItemOne     types.ItemID      = "i1"
	ItemTwo     types.ItemID      = "i2"
	CommentID   types.ActivityID  = "a1"
)

// SampleBoard returns a fresh board:
//
//	Todo (1): A (1), B (2), C (3)
//	Done (2): empty
//
// Card A carries checklist "Steps" with items at 1 and 2, and one comment.
func SampleBoard() *models.Project {
	course := "CS 410"
	high := models.PriorityHigh
	desc := "Outline the **report**"
	return &models.Project{
		ID:     ProjectID,
		Name:   "Capstone",
		Course: &course,
		Lists: []*models.List{
			{ID: TodoListID, Title: "Todo", Position: 1, Cards: []*models.Card{
				{
					ID: CardA, ListID: TodoListID, Title: "Draft outline", Position: 1,
					Description: &desc, Priority: &high,
					Assignees: []models.Assignee{{UserID: "u1", Username: "ana"}},
					Checklists: []*models.Checklist{{
						ID: ChecklistID, Title: "Steps", Position: 1,
						Items: []*models.ChecklistItem{
							{ID: ItemOne, Text: "Collect sources", Position: 1},
							{ID: ItemTwo, Text: "Write headings", Position: 2},
						},
					}},
					Activity: []*models.Activity{{
						ID: CommentID, UserID: "u1", Type: models.ActivityComment,
						Content: "started", Username: "ana",
						CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
					}},
				},
				{ID: CardB, ListID: TodoListID, Title: "Collect data", Position: 2},
				{ID: CardC, ListID: TodoListID, Title: "Book room", Position: 3},
			}},
			{ID: DoneListID, Title: "Done", Position: 2, Cards: []*models.Card{}},
		},
	}
}
