package dnd

import (
	"context"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Kind is the type of entity being dragged.
type Kind string

const (
	KindCard Kind = "card"
	KindList Kind = "list"
)

// Location is a slot in a droppable container. For cards the container is a
// list id; for lists it is the project id.
type Location struct {
	ContainerID string `json:"droppable_id"`
	Index       int    `json:"index"`
}

// DragStart describes the beginning of a gesture.
type DragStart struct {
	DraggableID string   `json:"draggable_id"`
	Kind        Kind     `json:"type"`
	Source      Location `json:"source"`
}

// DropResult is what the drag layer reports when the pointer is released.
// A nil Destination means the entity was dropped outside any container.
type DropResult struct {
	DraggableID string    `json:"draggable_id"`
	Kind        Kind      `json:"type"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination,omitempty"`
}

// CardMove is a planned card reposition, possibly across lists.
// Index counts destination siblings with the card itself excluded.
type CardMove struct {
	CardID   types.CardID
	FromList types.ListID
	ToList   types.ListID
	Index    int
	Position float64
	// Renumber asks the mover to respace every card in ToList because the
	// computed position collapsed against a neighbor.
	Renumber bool
}

// CrossList reports whether the card changes lists.
func (m CardMove) CrossList() bool { return m.FromList != m.ToList }

// ListMove is a planned list reposition within the project.
type ListMove struct {
	ListID   types.ListID
	Index    int
	Position float64
	Renumber bool
}

// Mover applies planned moves. The local engine and the replica adapter both
// implement it.
type Mover interface {
	Board() *models.Project
	MoveCard(ctx context.Context, m CardMove) error
	MoveList(ctx context.Context, m ListMove) error
}
