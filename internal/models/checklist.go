package models

import "github.com/thenoetrevino/groupboard/internal/types"

// Checklist is an ordered set of items on a card
type Checklist struct {
	ID       types.ChecklistID `json:"id"`
	Title    string            `json:"title"`
	Position float64           `json:"position"`
	Items    []*ChecklistItem  `json:"items"`
}

// ChecklistItem is a single checkbox line
type ChecklistItem struct {
	ID       types.ItemID `json:"id"`
	Text     string       `json:"text"`
	IsDone   bool         `json:"is_done"`
	Position float64      `json:"position"`
}

// Item returns the item with the given id, or nil.
func (cl *Checklist) Item(id types.ItemID) *ChecklistItem {
	for _, it := range cl.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// ItemPositions returns the positions of the items in order.
func (cl *Checklist) ItemPositions() []float64 {
	out := make([]float64, 0, len(cl.Items))
	for _, it := range cl.Items {
		out = append(out, it.Position)
	}
	return out
}

// Progress returns the number of completed items and the total.
func (cl *Checklist) Progress() (done, total int) {
	for _, it := range cl.Items {
		if it.IsDone {
			done++
		}
	}
	return done, len(cl.Items)
}
