package engine

import (
	"context"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/position"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// NewCard holds the fields a card can be created with.
type NewCard struct {
	Title       string
	Description *string
	Priority    *models.Priority
	DueDate     *models.Date
}

// Validate checks the fields before anything is sent.
func (n NewCard) Validate() error {
	if err := models.ValidateTitle("title", n.Title); err != nil {
		return err
	}
	if n.Priority != nil && !n.Priority.Valid() {
		return &ValidationError{Field: "priority", Err: ErrInvalidPriority}
	}
	if n.DueDate != nil && !n.DueDate.Valid() {
		return &ValidationError{Field: "due_date", Err: ErrInvalidDate}
	}
	return nil
}

// CreateCard appends a card to a list. The returned card is the server record.
func (e *Engine) CreateCard(ctx context.Context, listID types.ListID, in NewCard) (*models.Card, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := pending("list_id", listID); err != nil {
		return nil, err
	}
	p, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	_, list, ok := board.FindList(p, listID)
	if !ok {
		return nil, &board.NotFoundError{Kind: "list", ID: string(listID)}
	}

	title := strings.TrimSpace(in.Title)
	tmp := &models.Card{
		ID:          types.CardID(types.NewTempID()),
		ListID:      listID,
		Title:       title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Position:    position.Append(list.CardPositions()),
	}
	tmp.Normalize()

	var created *models.Card
	err = e.run(ctx, mutation{
		op:    "create card",
		apply: board.InsertCard(listID, tmp, board.Sorted),
		undo:  board.RemoveCard(tmp.ID),
		persist: func(ctx context.Context) (board.Edit, error) {
			c, err := e.backend.CreateCard(ctx, persistence.CreateCardRequest{
				ProjectID:   p.ID,
				ListID:      listID,
				Title:       title,
				Description: in.Description,
				Priority:    in.Priority,
				DueDate:     in.DueDate,
			})
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, errUnexpected("create card")
			}
			c.Normalize()
			created = c
			return board.ReplaceCard(tmp.ID, c), nil
		},
		confirmed: func() { e.selection.Rebind(tmp.ID, created.ID) },
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCard writes scalar card fields. Changing a card's list goes through MoveCard.
func (e *Engine) UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) error {
	if patch.ListID.Set {
		return &ValidationError{Field: "list_id", Err: ErrListChangeRequiresMove}
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := pending("card_id", id); err != nil {
		return err
	}
	if patch.Title.Set {
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	loc, err := e.findCard(p, id)
	if err != nil {
		return err
	}

	return e.run(ctx, mutation{
		op:    "update card",
		apply: board.PatchCard(id, patch),
		undo:  board.PatchCard(id, patch.Inverse(loc.Card)),
		persist: func(ctx context.Context) (board.Edit, error) {
			_, err := e.backend.UpdateCard(ctx, id, patch)
			return nil, err
		},
	})
}

// DeleteCard removes a card with its checklists, items and activity.
func (e *Engine) DeleteCard(ctx context.Context, id types.CardID) error {
	if err := pending("card_id", id); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	loc, err := e.findCard(p, id)
	if err != nil {
		return err
	}

	return e.run(ctx, mutation{
		op:    "delete card",
		apply: board.RemoveCard(id),
		undo:  board.InsertCard(loc.List.ID, loc.Card, board.Sorted),
		persist: func(ctx context.Context) (board.Edit, error) {
			return nil, e.backend.DeleteCard(ctx, id)
		},
	})
}
