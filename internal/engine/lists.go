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

// CreateList appends a list to the board.
func (e *Engine) CreateList(ctx context.Context, title string) (*models.List, error) {
	if err := models.ValidateTitle("title", title); err != nil {
		return nil, err
	}
	p, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	tmp := &models.List{
		ID:       types.ListID(types.NewTempID()),
		Title:    title,
		Position: position.Append(p.ListPositions()),
		Cards:    []*models.Card{},
	}

	var created *models.List
	err = e.run(ctx, mutation{
		op:    "create list",
		apply: board.InsertList(tmp, board.Sorted),
		undo:  board.RemoveList(tmp.ID),
		persist: func(ctx context.Context) (board.Edit, error) {
			l, err := e.backend.CreateList(ctx, persistence.CreateListRequest{ProjectID: p.ID, Title: title})
			if err != nil {
				return nil, err
			}
			if l == nil {
				return nil, errUnexpected("create list")
			}
			if l.Cards == nil {
				l.Cards = []*models.Card{}
			}
			created = l
			return board.ReplaceList(tmp.ID, l), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenameList changes a list's title.
func (e *Engine) RenameList(ctx context.Context, id types.ListID, title string) error {
	if err := models.ValidateTitle("title", title); err != nil {
		return err
	}
	if err := pending("list_id", id); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	_, list, ok := board.FindList(p, id)
	if !ok {
		return &board.NotFoundError{Kind: "list", ID: string(id)}
	}

	patch := models.ListPatch{Title: models.Some(strings.TrimSpace(title))}
	return e.run(ctx, mutation{
		op:    "rename list",
		apply: board.PatchList(id, patch),
		undo:  board.PatchList(id, patch.Inverse(list)),
		persist: func(ctx context.Context) (board.Edit, error) {
			_, err := e.backend.UpdateList(ctx, id, patch)
			return nil, err
		},
	})
}

// DeleteList removes a list and every card in it.
func (e *Engine) DeleteList(ctx context.Context, id types.ListID) error {
	if err := pending("list_id", id); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	_, list, ok := board.FindList(p, id)
	if !ok {
		return &board.NotFoundError{Kind: "list", ID: string(id)}
	}

	return e.run(ctx, mutation{
		op:    "delete list",
		apply: board.RemoveList(id),
		undo:  board.InsertList(list, board.Sorted),
		persist: func(ctx context.Context) (board.Edit, error) {
			return nil, e.backend.DeleteList(ctx, id)
		},
	})
}
