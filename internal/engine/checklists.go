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

// ============================================================================
// CHECKLISTS
// ============================================================================

// CreateChecklist appends a checklist to a card.
func (e *Engine) CreateChecklist(ctx context.Context, cardID types.CardID, title string) (*models.Checklist, error) {
	if err := models.ValidateTitle("title", title); err != nil {
		return nil, err
	}
	if err := pending("card_id", cardID); err != nil {
		return nil, err
	}
	p, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	loc, err := e.findCard(p, cardID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	tmp := &models.Checklist{
		ID:       types.ChecklistID(types.NewTempID()),
		Title:    title,
		Position: position.Append(loc.Card.ChecklistPositions()),
		Items:    []*models.ChecklistItem{},
	}

	var created *models.Checklist
	err = e.run(ctx, mutation{
		op:    "create checklist",
		apply: board.InsertChecklist(cardID, tmp, board.Sorted),
		undo:  board.RemoveChecklist(cardID, tmp.ID),
		persist: func(ctx context.Context) (board.Edit, error) {
			cl, err := e.backend.CreateChecklist(ctx, persistence.CreateChecklistRequest{CardID: cardID, Title: title})
			if err != nil {
				return nil, err
			}
			if cl == nil {
				return nil, errUnexpected("create checklist")
			}
			if cl.Items == nil {
				cl.Items = []*models.ChecklistItem{}
			}
			created = cl
			return board.ReplaceChecklist(cardID, tmp.ID, cl), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenameChecklist changes a checklist's title.
func (e *Engine) RenameChecklist(ctx context.Context, cardID types.CardID, id types.ChecklistID, title string) error {
	if err := models.ValidateTitle("title", title); err != nil {
		return err
	}
	if err := pending("checklist_id", id); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	_, cl, err := e.findChecklist(p, cardID, id)
	if err != nil {
		return err
	}

	patch := models.ChecklistPatch{Title: models.Some(strings.TrimSpace(title))}
	return e.run(ctx, mutation{
		op:    "rename checklist",
		apply: board.MapChecklist(cardID, id, applyChecklist(patch)),
		undo:  board.MapChecklist(cardID, id, applyChecklist(patch.Inverse(cl))),
		persist: func(ctx context.Context) (board.Edit, error) {
			_, err := e.backend.UpdateChecklist(ctx, id, patch)
			return nil, err
		},
	})
}

// DeleteChecklist removes a checklist and its items.
func (e *Engine) DeleteChecklist(ctx context.Context, cardID types.CardID, id types.ChecklistID) error {
	if err := pending("checklist_id", id); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	_, cl, err := e.findChecklist(p, cardID, id)
	if err != nil {
		return err
	}

	return e.run(ctx, mutation{
		op:    "delete checklist",
		apply: board.RemoveChecklist(cardID, id),
		undo:  board.InsertChecklist(cardID, cl, board.Sorted),
		persist: func(ctx context.Context) (board.Edit, error) {
			return nil, e.backend.DeleteChecklist(ctx, id)
		},
	})
}

func applyChecklist(patch models.ChecklistPatch) func(*models.Checklist) (*models.Checklist, error) {
	return func(cl *models.Checklist) (*models.Checklist, error) { return patch.Apply(cl), nil }
}

// ============================================================================
// CHECKLIST ITEMS
// ============================================================================

// AddChecklistItem appends an item to a checklist.
func (e *Engine) AddChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, text string) (*models.ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Err: ErrEmptyText}
	}
	if err := pending("checklist_id", checklistID); err != nil {
		return nil, err
	}
	p, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	_, cl, err := e.findChecklist(p, cardID, checklistID)
	if err != nil {
		return nil, err
	}
	tmp := &models.ChecklistItem{
		ID:       types.ItemID(types.NewTempID()),
		Text:     text,
		Position: position.Append(cl.ItemPositions()),
	}

	var created *models.ChecklistItem
	err = e.run(ctx, mutation{
		op:    "add checklist item",
		apply: board.InsertItem(cardID, checklistID, tmp, board.Sorted),
		undo:  board.RemoveItem(cardID, checklistID, tmp.ID),
		persist: func(ctx context.Context) (board.Edit, error) {
			it, err := e.backend.CreateChecklistItem(ctx, persistence.CreateChecklistItemRequest{ChecklistID: checklistID, Text: text})
			if err != nil {
				return nil, err
			}
			if it == nil {
				return nil, errUnexpected("add checklist item")
			}
			created = it
			return board.ReplaceItem(cardID, checklistID, tmp.ID, it), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateChecklistItem toggles or edits an item.
func (e *Engine) UpdateChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID, patch models.ChecklistItemPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := pending("item_id", id); err != nil {
		return err
	}
	if patch.Text.Set {
		patch.Text.Value = strings.TrimSpace(patch.Text.Value)
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	it, err := e.findItem(p, cardID, checklistID, id)
	if err != nil {
		return err
	}

	return e.run(ctx, mutation{
		op:    "update checklist item",
		apply: board.MapItem(cardID, checklistID, id, applyItem(patch)),
		undo:  board.MapItem(cardID, checklistID, id, applyItem(patch.Inverse(it))),
		persist: func(ctx context.Context) (board.Edit, error) {
			_, err := e.backend.UpdateChecklistItem(ctx, id, patch)
			return nil, err
		},
	})
}

// DeleteChecklistItem removes an item.
func (e *Engine) DeleteChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID) error {
	if err := pending("item_id", id); err != nil {
		return err
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	it, err := e.findItem(p, cardID, checklistID, id)
	if err != nil {
		return err
	}

	return e.run(ctx, mutation{
		op:    "delete checklist item",
		apply: board.RemoveItem(cardID, checklistID, id),
		undo:  board.InsertItem(cardID, checklistID, it, board.Sorted),
		persist: func(ctx context.Context) (board.Edit, error) {
			return nil, e.backend.DeleteChecklistItem(ctx, id)
		},
	})
}

func (e *Engine) findItem(p *models.Project, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID) (*models.ChecklistItem, error) {
	if _, _, err := e.findChecklist(p, cardID, checklistID); err != nil {
		return nil, err
	}
	_, _, it, ok := board.FindItem(p, cardID, checklistID, id)
	if !ok {
		return nil, &board.NotFoundError{Kind: "checklist item", ID: string(id)}
	}
	return it, nil
}

func applyItem(patch models.ChecklistItemPatch) func(*models.ChecklistItem) (*models.ChecklistItem, error) {
	return func(it *models.ChecklistItem) (*models.ChecklistItem, error) { return patch.Apply(it), nil }
}
