package engine

import (
	"context"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/notify"
	"github.com/thenoetrevino/groupboard/internal/types"
)

const moveFailedNotice = "Failed to move, order may need a refresh"

// MoveCard repositions a card, within its list or into another one.
func (e *Engine) MoveCard(ctx context.Context, m dnd.CardMove) error {
	if err := pending("card_id", m.CardID); err != nil {
		return err
	}
	if err := pending("list_id", m.ToList); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	loc, err := e.findCard(p, m.CardID)
	if err != nil {
		return err
	}
	_, dest, ok := board.FindList(p, m.ToList)
	if !ok {
		return &board.NotFoundError{Kind: "list", ID: string(m.ToList)}
	}

	from := loc.List.ID
	crossList := from != m.ToList
	pos := m.Position
	var renumbered map[types.CardID]float64
	if m.Renumber {
		renumbered = dnd.Respace(cardIDs(dest), dest.CardPositions(), m.CardID, m.Index)
		pos = renumbered[m.CardID]
		delete(renumbered, m.CardID)
	}

	// The undo restores sibling positions before reinserting by position, so
	// it stays ordered when other commits landed in between.
	apply := board.MoveCard(m.CardID, m.ToList, m.Index, pos)
	undo := board.MoveCard(m.CardID, from, board.Sorted, loc.Card.Position)
	if len(renumbered) > 0 {
		apply = board.Chain(apply, board.SetCardPositions(m.ToList, renumbered))
		undo = board.Chain(board.SetCardPositions(m.ToList, cardPositions(dest, renumbered)), undo)
	}

	patch := models.CardPatch{Position: models.Some(pos)}
	if crossList {
		patch.ListID = models.Some(m.ToList)
	}
	return e.run(ctx, mutation{
		op:     "move card",
		level:  notify.LevelWarning,
		notice: moveFailedNotice,
		apply:  apply,
		undo:   undo,
		persist: func(ctx context.Context) (board.Edit, error) {
			if _, err := e.backend.UpdateCard(ctx, m.CardID, patch); err != nil {
				return nil, err
			}
			for id, p := range renumbered {
				if _, err := e.backend.UpdateCard(ctx, id, models.CardPatch{Position: models.Some(p)}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		},
	})
}

// MoveList repositions a list among its siblings.
func (e *Engine) MoveList(ctx context.Context, m dnd.ListMove) error {
	if err := pending("list_id", m.ListID); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	_, list, ok := board.FindList(p, m.ListID)
	if !ok {
		return &board.NotFoundError{Kind: "list", ID: string(m.ListID)}
	}

	pos := m.Position
	var renumbered map[types.ListID]float64
	if m.Renumber {
		renumbered = dnd.Respace(listIDs(p), p.ListPositions(), m.ListID, m.Index)
		pos = renumbered[m.ListID]
		delete(renumbered, m.ListID)
	}

	apply := board.MoveList(m.ListID, m.Index, pos)
	undo := board.MoveList(m.ListID, board.Sorted, list.Position)
	if len(renumbered) > 0 {
		apply = board.Chain(apply, board.SetListPositions(renumbered))
		undo = board.Chain(board.SetListPositions(listPositions(p, renumbered)), undo)
	}

	return e.run(ctx, mutation{
		op:     "move list",
		level:  notify.LevelWarning,
		notice: moveFailedNotice,
		apply:  apply,
		undo:   undo,
		persist: func(ctx context.Context) (board.Edit, error) {
			if _, err := e.backend.UpdateList(ctx, m.ListID, models.ListPatch{Position: models.Some(pos)}); err != nil {
				return nil, err
			}
			for id, p := range renumbered {
				if _, err := e.backend.UpdateList(ctx, id, models.ListPatch{Position: models.Some(p)}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		},
	})
}

// cardPositions returns the current positions in l of the cards named in ids.
func cardPositions(l *models.List, ids map[types.CardID]float64) map[types.CardID]float64 {
	out := make(map[types.CardID]float64, len(ids))
	for _, c := range l.Cards {
		if _, ok := ids[c.ID]; ok {
			out[c.ID] = c.Position
		}
	}
	return out
}

func listPositions(p *models.Project, ids map[types.ListID]float64) map[types.ListID]float64 {
	out := make(map[types.ListID]float64, len(ids))
	for _, l := range p.Lists {
		if _, ok := ids[l.ID]; ok {
			out[l.ID] = l.Position
		}
	}
	return out
}

func cardIDs(l *models.List) []types.CardID {
	out := make([]types.CardID, len(l.Cards))
	for i, c := range l.Cards {
		out[i] = c.ID
	}
	return out
}

func listIDs(p *models.Project) []types.ListID {
	out := make([]types.ListID, len(p.Lists))
	for i, l := range p.Lists {
		out[i] = l.ID
	}
	return out
}
