package models

import "github.com/thenoetrevino/groupboard/internal/types"

// Project is the root of a board document.
// A *Project handed out by a board store is treated as immutable: edits build
// a new root and share every untouched subtree with the old one.
type Project struct {
	ID      types.ProjectID `json:"id"`
	Name    string          `json:"name"`
	Course  *string         `json:"course"`
	DueDate *Date           `json:"due_date"`
	Lists   []*List         `json:"lists"`
}

// ProjectSummary is a project without its lists, used for project listings
type ProjectSummary struct {
	ID      types.ProjectID `json:"id"`
	Name    string          `json:"name"`
	Course  *string         `json:"course"`
	DueDate *Date           `json:"due_date"`
	Role    string          `json:"role,omitempty"`
}

// List returns the list with the given id, or nil.
func (p *Project) List(id types.ListID) *List {
	if p == nil {
		return nil
	}
	for _, l := range p.Lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// ListPositions returns the positions of the project's lists in order.
func (p *Project) ListPositions() []float64 {
	out := make([]float64, 0, len(p.Lists))
	for _, l := range p.Lists {
		out = append(out, l.Position)
	}
	return out
}

// CardCount returns the number of cards across all lists.
func (p *Project) CardCount() int {
	n := 0
	for _, l := range p.Lists {
		n += len(l.Cards)
	}
	return n
}
