package models

import "github.com/thenoetrevino/groupboard/internal/types"

// Card is a unit of work on the board
type Card struct {
	ID          types.CardID `json:"id"`
	ListID      types.ListID `json:"list_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Priority    *Priority    `json:"priority"`
	DueDate     *Date        `json:"due_date"`
	Position    float64      `json:"position"`
	Assignees   []Assignee   `json:"assignees"`
	Checklists  []*Checklist `json:"checklists"`
	Activity    []*Activity  `json:"activity"`
}

// Assignee is read-only display data for a user assigned to a card
type Assignee struct {
	UserID    types.UserID `json:"user_id"`
	Username  string       `json:"username"`
	AvatarURL string       `json:"avatar_url"`
}

// DisplayPriority returns the card priority, or DefaultPriority when unset.
func (c *Card) DisplayPriority() Priority {
	if c.Priority == nil || !c.Priority.Valid() {
		return DefaultPriority
	}
	return *c.Priority
}

// Checklist returns the checklist with the given id, or nil.
func (c *Card) Checklist(id types.ChecklistID) *Checklist {
	for _, cl := range c.Checklists {
		if cl.ID == id {
			return cl
		}
	}
	return nil
}

// ChecklistPositions returns the positions of the card's checklists in order.
func (c *Card) ChecklistPositions() []float64 {
	out := make([]float64, 0, len(c.Checklists))
	for _, cl := range c.Checklists {
		out = append(out, cl.Position)
	}
	return out
}

// Normalize replaces nil collections with empty ones.
// Only call it on a freshly decoded card that no snapshot shares yet.
func (c *Card) Normalize() {
	if c.Assignees == nil {
		c.Assignees = []Assignee{}
	}
	if c.Checklists == nil {
		c.Checklists = []*Checklist{}
	}
	if c.Activity == nil {
		c.Activity = []*Activity{}
	}
	for _, cl := range c.Checklists {
		if cl.Items == nil {
			cl.Items = []*ChecklistItem{}
		}
	}
}
