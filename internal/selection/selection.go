// Package selection tracks which card is open in the detail view.
package selection

import (
	"sync"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// State is the open card, if any, and the title of the list it sits in.
// It only holds identifiers; the card itself is always read from the
// board passed to Current, so the view never shows stale data.
type State struct {
	mu        sync.RWMutex
	cardID    types.CardID
	listTitle string
	open      bool
}

// New returns a closed selection.
func New() *State {
	return &State{}
}

// Open selects a card.
func (s *State) Open(cardID types.CardID, listTitle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cardID = cardID
	s.listTitle = listTitle
	s.open = true
}

// Close clears the selection.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cardID = ""
	s.listTitle = ""
	s.open = false
}

// Selected returns the selected card id and list title.
func (s *State) Selected() (types.CardID, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cardID, s.listTitle, s.open
}

// IsSelected reports whether id is the open card.
func (s *State) IsSelected(id types.CardID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open && s.cardID == id
}

// Current resolves the selection against a board.
func (s *State) Current(p *models.Project) (*models.Card, string, bool) {
	id, title, open := s.Selected()
	if !open {
		return nil, "", false
	}
	loc, ok := board.FindCard(p, id)
	if !ok {
		return nil, "", false
	}
	if loc.List.Title != "" {
		title = loc.List.Title
	}
	return loc.Card, title, true
}

// Sync reconciles the selection with a new board: it clears the selection when
// the card is gone and follows the card when it has moved to another list.
// Returns true when the selection was cleared.
func (s *State) Sync(p *models.Project) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false
	}
	loc, ok := board.FindCard(p, s.cardID)
	if !ok {
		s.cardID = ""
		s.listTitle = ""
		s.open = false
		return true
	}
	s.listTitle = loc.List.Title
	return false
}

// Rebind retargets the selection when a placeholder id is confirmed.
func (s *State) Rebind(from, to types.CardID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open && s.cardID == from {
		s.cardID = to
	}
}
