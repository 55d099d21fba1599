package models

import "github.com/thenoetrevino/groupboard/internal/types"

// List is an ordered column of cards
type List struct {
	ID       types.ListID `json:"id"`
	Title    string       `json:"title"`
	Position float64      `json:"position"`
	Cards    []*Card      `json:"cards"`
}

// Card returns the card with the given id, or nil.
func (l *List) Card(id types.CardID) *Card {
	for _, c := range l.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CardIndex returns the index of the card in the list, or -1.
func (l *List) CardIndex(id types.CardID) int {
	for i, c := range l.Cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// CardPositions returns the positions of the list's cards in order.
func (l *List) CardPositions() []float64 {
	out := make([]float64, 0, len(l.Cards))
	for _, c := range l.Cards {
		out = append(out, c.Position)
	}
	return out
}
