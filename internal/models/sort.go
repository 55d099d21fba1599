package models

import (
	"cmp"
	"slices"
)

// byPosition orders siblings by position, breaking ties by id so every
// replica sees the same order.
func byPosition[ID ~string](ap, bp float64, a, b ID) int {
	if c := cmp.Compare(ap, bp); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// SortBoard orders every level of a freshly decoded tree in place:
// lists, cards, checklists and items by position, activity newest first.
// It also normalizes nil collections. Returns p for chaining.
func SortBoard(p *Project) *Project {
	if p == nil {
		return nil
	}
	if p.Lists == nil {
		p.Lists = []*List{}
	}
	slices.SortStableFunc(p.Lists, func(a, b *List) int {
		return byPosition(a.Position, b.Position, a.ID, b.ID)
	})
	for _, l := range p.Lists {
		if l.Cards == nil {
			l.Cards = []*Card{}
		}
		slices.SortStableFunc(l.Cards, func(a, b *Card) int {
			return byPosition(a.Position, b.Position, a.ID, b.ID)
		})
		for _, c := range l.Cards {
			c.Normalize()
			SortCard(c)
		}
	}
	return p
}

// SortCard orders a card's checklists, items and activity in place.
func SortCard(c *Card) {
	slices.SortStableFunc(c.Checklists, func(a, b *Checklist) int {
		return byPosition(a.Position, b.Position, a.ID, b.ID)
	})
	for _, cl := range c.Checklists {
		slices.SortStableFunc(cl.Items, func(a, b *ChecklistItem) int {
			return byPosition(a.Position, b.Position, a.ID, b.ID)
		})
	}
	slices.SortStableFunc(c.Activity, func(a, b *Activity) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
