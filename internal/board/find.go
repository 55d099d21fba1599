package board

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ErrNotFound is matched by every lookup failure in this package.
var ErrNotFound = errors.New("not found")

// NotFoundError names the entity that was missing from the tree.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound[T ~string](kind string, id T) error {
	return &NotFoundError{Kind: kind, ID: string(id)}
}

// CardLocation is where a card sits in a tree.
type CardLocation struct {
	ListIndex int
	CardIndex int
	List      *models.List
	Card      *models.Card
}

// FindList returns the index and list with the given id.
func FindList(p *models.Project, id types.ListID) (int, *models.List, bool) {
	if p == nil {
		return -1, nil, false
	}
	for i, l := range p.Lists {
		if l.ID == id {
			return i, l, true
		}
	}
	return -1, nil, false
}

// FindCard locates a card anywhere on the board.
func FindCard(p *models.Project, id types.CardID) (CardLocation, bool) {
	if p == nil {
		return CardLocation{}, false
	}
	for li, l := range p.Lists {
		for ci, c := range l.Cards {
			if c.ID == id {
				return CardLocation{ListIndex: li, CardIndex: ci, List: l, Card: c}, true
			}
		}
	}
	return CardLocation{}, false
}

// FindChecklist returns the checklist and its index on the card.
func FindChecklist(p *models.Project, cardID types.CardID, id types.ChecklistID) (*models.Card, int, *models.Checklist, bool) {
	loc, ok := FindCard(p, cardID)
	if !ok {
		return nil, -1, nil, false
	}
	for i, cl := range loc.Card.Checklists {
		if cl.ID == id {
			return loc.Card, i, cl, true
		}
	}
	return loc.Card, -1, nil, false
}

// FindItem returns the item and its index in the checklist.
func FindItem(p *models.Project, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID) (*models.Checklist, int, *models.ChecklistItem, bool) {
	_, _, cl, ok := FindChecklist(p, cardID, checklistID)
	if !ok {
		return nil, -1, nil, false
	}
	for i, it := range cl.Items {
		if it.ID == id {
			return cl, i, it, true
		}
	}
	return cl, -1, nil, false
}

// FindActivity returns the activity entry and its index on the card.
func FindActivity(p *models.Project, cardID types.CardID, id types.ActivityID) (int, *models.Activity, bool) {
	loc, ok := FindCard(p, cardID)
	if !ok {
		return -1, nil, false
	}
	for i, a := range loc.Card.Activity {
		if a.ID == id {
			return i, a, true
		}
	}
	return -1, nil, false
}
