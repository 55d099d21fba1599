package board

import (
	"cmp"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Edit derives a new board root from an old one without mutating it.
// Every edit copies only the path from the root to the changed node.
type Edit func(*models.Project) (*models.Project, error)

// Sorted as an insert index places the entity by (position, id).
const Sorted = -1

// Chain runs edits in order as one edit.
func Chain(edits ...Edit) Edit {
	return func(p *models.Project) (*models.Project, error) {
		var err error
		for _, e := range edits {
			if e == nil {
				continue
			}
			if p, err = e(p); err != nil {
				return nil, err
			}
		}
		return p, nil
	}
}

// ============================================================================
// SLICE HELPERS (always allocate; never write into a shared backing array)
// ============================================================================

func insertAt[T any](s []T, i int, v T) []T {
	if i < 0 || i > len(s) {
		i = len(s)
	}
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}

func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func replaceAt[T any](s []T, i int, v T) []T {
	out := make([]T, len(s))
	copy(out, s)
	out[i] = v
	return out
}

// sortedIndex returns the first index whose (position, id) sorts after the given key.
func sortedIndex[T any, ID ~string](s []T, pos float64, id ID, key func(T) (float64, ID)) int {
	for i, v := range s {
		p, vid := key(v)
		if c := cmp.Compare(pos, p); c < 0 || (c == 0 && id < vid) {
			return i
		}
	}
	return len(s)
}

func listKey(l *models.List) (float64, types.ListID)                { return l.Position, l.ID }
func cardKey(c *models.Card) (float64, types.CardID)                { return c.Position, c.ID }
func checklistKey(c *models.Checklist) (float64, types.ChecklistID) { return c.Position, c.ID }
func itemKey(i *models.ChecklistItem) (float64, types.ItemID)       { return i.Position, i.ID }

// ============================================================================
// PROJECT AND LISTS
// ============================================================================

// MapProject replaces the project's scalar fields; lists are carried over.
func MapProject(fn func(*models.Project) *models.Project) Edit {
	return func(p *models.Project) (*models.Project, error) {
		out := fn(p)
		if out == p {
			cp := *p
			out = &cp
		}
		return out, nil
	}
}

// InsertList adds l at index, or by position when index is Sorted.
func InsertList(l *models.List, index int) Edit {
	return func(p *models.Project) (*models.Project, error) {
		if index == Sorted {
			index = sortedIndex(p.Lists, l.Position, l.ID, listKey)
		}
		out := *p
		out.Lists = insertAt(p.Lists, index, l)
		return &out, nil
	}
}

// RemoveList detaches a list and all of its cards.
func RemoveList(id types.ListID) Edit {
	return func(p *models.Project) (*models.Project, error) {
		i, _, ok := FindList(p, id)
		if !ok {
			return nil, notFound("list", id)
		}
		out := *p
		out.Lists = removeAt(p.Lists, i)
		return &out, nil
	}
}

// MapList replaces one list with fn's result.
func MapList(id types.ListID, fn func(*models.List) (*models.List, error)) Edit {
	return func(p *models.Project) (*models.Project, error) {
		i, l, ok := FindList(p, id)
		if !ok {
			return nil, notFound("list", id)
		}
		nl, err := fn(l)
		if err != nil {
			return nil, err
		}
		out := *p
		out.Lists = replaceAt(p.Lists, i, nl)
		return &out, nil
	}
}

// PatchList applies a typed list patch.
func PatchList(id types.ListID, patch models.ListPatch) Edit {
	return MapList(id, func(l *models.List) (*models.List, error) {
		return patch.Apply(l), nil
	})
}

// ReplaceList swaps the list identified by id for l, re-sorting it among its siblings.
func ReplaceList(id types.ListID, l *models.List) Edit {
	return Chain(RemoveList(id), InsertList(l, Sorted))
}

// MoveList repositions a list. index refers to the list's siblings with the
// list itself excluded.
func MoveList(id types.ListID, index int, pos float64) Edit {
	return func(p *models.Project) (*models.Project, error) {
		i, l, ok := FindList(p, id)
		if !ok {
			return nil, notFound("list", id)
		}
		moved := *l
		moved.Position = pos
		rest := removeAt(p.Lists, i)
		if index == Sorted {
			index = sortedIndex(rest, pos, id, listKey)
		}
		out := *p
		out.Lists = insertAt(rest, index, &moved)
		return &out, nil
	}
}

// ============================================================================
// CARDS
// ============================================================================

// InsertCard attaches card to a list at index, or by position when index is
// Sorted. The inserted card's ListID is forced to the containing list.
func InsertCard(listID types.ListID, card *models.Card, index int) Edit {
	return MapList(listID, func(l *models.List) (*models.List, error) {
		c := card
		if c.ListID != listID {
			cp := *card
			cp.ListID = listID
			c = &cp
		}
		if index == Sorted {
			index = sortedIndex(l.Cards, c.Position, c.ID, cardKey)
		}
		nl := *l
		nl.Cards = insertAt(l.Cards, index, c)
		return &nl, nil
	})
}

// RemoveCard detaches a card from whichever list holds it.
func RemoveCard(id types.CardID) Edit {
	return func(p *models.Project) (*models.Project, error) {
		loc, ok := FindCard(p, id)
		if !ok {
			return nil, notFound("card", id)
		}
		nl := *loc.List
		nl.Cards = removeAt(loc.List.Cards, loc.CardIndex)
		out := *p
		out.Lists = replaceAt(p.Lists, loc.ListIndex, &nl)
		return &out, nil
	}
}

// MapCard replaces one card with fn's result, in place.
func MapCard(id types.CardID, fn func(*models.Card) (*models.Card, error)) Edit {
	return func(p *models.Project) (*models.Project, error) {
		loc, ok := FindCard(p, id)
		if !ok {
			return nil, notFound("card", id)
		}
		nc, err := fn(loc.Card)
		if err != nil {
			return nil, err
		}
		nl := *loc.List
		nl.Cards = replaceAt(loc.List.Cards, loc.CardIndex, nc)
		out := *p
		out.Lists = replaceAt(p.Lists, loc.ListIndex, &nl)
		return &out, nil
	}
}

// PatchCard applies a typed card patch in place. It does not move the card
// between lists; use MoveCard for that.
func PatchCard(id types.CardID, patch models.CardPatch) Edit {
	patch.ListID = models.Optional[types.ListID]{}
	return MapCard(id, func(c *models.Card) (*models.Card, error) {
		return patch.Apply(c), nil
	})
}

// ReplaceCard swaps the card identified by id for card, keeping it in card.ListID
// and re-sorting it there.
func ReplaceCard(id types.CardID, card *models.Card) Edit {
	return Chain(RemoveCard(id), InsertCard(card.ListID, card, Sorted))
}

// MoveCard detaches a card and reattaches it to toList at index with a new
// position. index refers to the destination siblings with the card excluded.
// The card's ListID follows the destination.
func MoveCard(id types.CardID, toList types.ListID, index int, pos float64) Edit {
	return func(p *models.Project) (*models.Project, error) {
		loc, ok := FindCard(p, id)
		if !ok {
			return nil, notFound("card", id)
		}
		if _, _, ok := FindList(p, toList); !ok {
			return nil, notFound("list", toList)
		}
		moved := *loc.Card
		moved.Position = pos
		moved.ListID = toList
		detached, err := RemoveCard(id)(p)
		if err != nil {
			return nil, err
		}
		return InsertCard(toList, &moved, index)(detached)
	}
}

// SetCardPositions assigns new positions to the cards of a list without reordering.
func SetCardPositions(listID types.ListID, positions map[types.CardID]float64) Edit {
	return MapList(listID, func(l *models.List) (*models.List, error) {
		nl := *l
		nl.Cards = make([]*models.Card, len(l.Cards))
		for i, c := range l.Cards {
			if pos, ok := positions[c.ID]; ok {
				cp := *c
				cp.Position = pos
				c = &cp
			}
			nl.Cards[i] = c
		}
		return &nl, nil
	})
}

// SetListPositions assigns new positions to lists without reordering.
func SetListPositions(positions map[types.ListID]float64) Edit {
	return func(p *models.Project) (*models.Project, error) {
		out := *p
		out.Lists = make([]*models.List, len(p.Lists))
		for i, l := range p.Lists {
			if pos, ok := positions[l.ID]; ok {
				cp := *l
				cp.Position = pos
				l = &cp
			}
			out.Lists[i] = l
		}
		return &out, nil
	}
}

// ============================================================================
// CHECKLISTS AND ITEMS
// ============================================================================

// InsertChecklist attaches a checklist to a card.
func InsertChecklist(cardID types.CardID, cl *models.Checklist, index int) Edit {
	return MapCard(cardID, func(c *models.Card) (*models.Card, error) {
		if index == Sorted {
			index = sortedIndex(c.Checklists, cl.Position, cl.ID, checklistKey)
		}
		nc := *c
		nc.Checklists = insertAt(c.Checklists, index, cl)
		return &nc, nil
	})
}

// RemoveChecklist detaches a checklist and its items from a card.
func RemoveChecklist(cardID types.CardID, id types.ChecklistID) Edit {
	return MapCard(cardID, func(c *models.Card) (*models.Card, error) {
		for i, cl := range c.Checklists {
			if cl.ID == id {
				nc := *c
				nc.Checklists = removeAt(c.Checklists, i)
				return &nc, nil
			}
		}
		return nil, notFound("checklist", id)
	})
}

// MapChecklist replaces one checklist with fn's result.
func MapChecklist(cardID types.CardID, id types.ChecklistID, fn func(*models.Checklist) (*models.Checklist, error)) Edit {
	return MapCard(cardID, func(c *models.Card) (*models.Card, error) {
		for i, cl := range c.Checklists {
			if cl.ID == id {
				ncl, err := fn(cl)
				if err != nil {
					return nil, err
				}
				nc := *c
				nc.Checklists = replaceAt(c.Checklists, i, ncl)
				return &nc, nil
			}
		}
		return nil, notFound("checklist", id)
	})
}

// ReplaceChecklist swaps a checklist for another, re-sorting it on the card.
func ReplaceChecklist(cardID types.CardID, id types.ChecklistID, cl *models.Checklist) Edit {
	return Chain(RemoveChecklist(cardID, id), InsertChecklist(cardID, cl, Sorted))
}

// InsertItem adds an item to a checklist.
func InsertItem(cardID types.CardID, checklistID types.ChecklistID, it *models.ChecklistItem, index int) Edit {
	return MapChecklist(cardID, checklistID, func(cl *models.Checklist) (*models.Checklist, error) {
		if index == Sorted {
			index = sortedIndex(cl.Items, it.Position, it.ID, itemKey)
		}
		ncl := *cl
		ncl.Items = insertAt(cl.Items, index, it)
		return &ncl, nil
	})
}

// RemoveItem detaches an item from a checklist.
func RemoveItem(cardID types.CardID, checklistID types.ChecklistID, id types.ItemID) Edit {
	return MapChecklist(cardID, checklistID, func(cl *models.Checklist) (*models.Checklist, error) {
		for i, it := range cl.Items {
			if it.ID == id {
				ncl := *cl
				ncl.Items = removeAt(cl.Items, i)
				return &ncl, nil
			}
		}
		return nil, notFound("checklist item", id)
	})
}

// MapItem replaces one item with fn's result.
func MapItem(cardID types.CardID, checklistID types.ChecklistID, id types.ItemID, fn func(*models.ChecklistItem) (*models.ChecklistItem, error)) Edit {
	return MapChecklist(cardID, checklistID, func(cl *models.Checklist) (*models.Checklist, error) {
		for i, it := range cl.Items {
			if it.ID == id {
				nit, err := fn(it)
				if err != nil {
					return nil, err
				}
				ncl := *cl
				ncl.Items = replaceAt(cl.Items, i, nit)
				return &ncl, nil
			}
		}
		return nil, notFound("checklist item", id)
	})
}

// ReplaceItem swaps an item for another, re-sorting it in the checklist.
func ReplaceItem(cardID types.CardID, checklistID types.ChecklistID, id types.ItemID, it *models.ChecklistItem) Edit {
	return Chain(RemoveItem(cardID, checklistID, id), InsertItem(cardID, checklistID, it, Sorted))
}

// ============================================================================
// ACTIVITY
// ============================================================================

// InsertActivity adds an activity entry at index; 0 is newest.
func InsertActivity(cardID types.CardID, a *models.Activity, index int) Edit {
	return MapCard(cardID, func(c *models.Card) (*models.Card, error) {
		nc := *c
		nc.Activity = insertAt(c.Activity, index, a)
		return &nc, nil
	})
}

// PrependActivity adds an entry as the newest.
func PrependActivity(cardID types.CardID, a *models.Activity) Edit {
	return InsertActivity(cardID, a, 0)
}

// RemoveActivity deletes an entry from a card's activity.
func RemoveActivity(cardID types.CardID, id types.ActivityID) Edit {
	return MapCard(cardID, func(c *models.Card) (*models.Card, error) {
		for i, a := range c.Activity {
			if a.ID == id {
				nc := *c
				nc.Activity = removeAt(c.Activity, i)
				return &nc, nil
			}
		}
		return nil, notFound("activity", id)
	})
}

// MapActivity replaces one entry, keeping its place in the feed.
func MapActivity(cardID types.CardID, id types.ActivityID, fn func(*models.Activity) *models.Activity) Edit {
	return MapCard(cardID, func(c *models.Card) (*models.Card, error) {
		for i, a := range c.Activity {
			if a.ID == id {
				nc := *c
				nc.Activity = replaceAt(c.Activity, i, fn(a))
				return &nc, nil
			}
		}
		return nil, notFound("activity", id)
	})
}
