package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ChecklistRepo handles checklists and their items.
type ChecklistRepo struct {
	db *sql.DB
}

func exists(ctx context.Context, q querier, table, what, id string) error {
	var n int
	if err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), id).Scan(&n); err != nil {
		return fmt.Errorf("failed to check %s %s: %w", what, id, err)
	}
	if n == 0 {
		return notFound(what)
	}
	return nil
}

// ============================================================================
// CHECKLISTS
// ============================================================================

// CreateChecklist appends a checklist to a card.
func (r *ChecklistRepo) CreateChecklist(ctx context.Context, req persistence.CreateChecklistRequest) (*models.Checklist, error) {
	cl := &models.Checklist{
		ID:    types.ChecklistID(newID()),
		Title: strings.TrimSpace(req.Title),
		Items: []*models.ChecklistItem{},
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "cards", "card", string(req.CardID)); err != nil {
			return err
		}
		pos, err := nextPosition(ctx, tx, "checklists", "card_id", req.CardID)
		if err != nil {
			return err
		}
		cl.Position = pos
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO checklists (id, card_id, title, position) VALUES (?, ?, ?, ?)`,
			cl.ID, req.CardID, cl.Title, cl.Position,
		); err != nil {
			return fmt.Errorf("failed to insert checklist '%s': %w", cl.Title, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cl, nil
}

// UpdateChecklist renames and/or repositions a checklist.
func (r *ChecklistRepo) UpdateChecklist(ctx context.Context, id types.ChecklistID, patch models.ChecklistPatch) (*models.Checklist, error) {
	var u update
	if v, ok := patch.Title.Get(); ok {
		u.set("title", strings.TrimSpace(v))
	}
	if v, ok := patch.Position.Get(); ok {
		u.set("position", v)
	}
	if err := u.exec(ctx, r.db, "checklists", "checklist", string(id)); err != nil {
		return nil, err
	}

	cl := &models.Checklist{Items: []*models.ChecklistItem{}}
	err := r.db.QueryRowContext(ctx, `SELECT id, title, position FROM checklists WHERE id = ?`, id).
		Scan(&cl.ID, &cl.Title, &cl.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("checklist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist %s: %w", id, err)
	}
	return cl, nil
}

// DeleteChecklist removes the checklist and its items.
func (r *ChecklistRepo) DeleteChecklist(ctx context.Context, id types.ChecklistID) error {
	return deleteByID(ctx, r.db, "checklists", "checklist", string(id))
}

// ============================================================================
// ITEMS
// ============================================================================

// CreateChecklistItem appends an unchecked item.
func (r *ChecklistRepo) CreateChecklistItem(ctx context.Context, req persistence.CreateChecklistItemRequest) (*models.ChecklistItem, error) {
	it := &models.ChecklistItem{
		ID:   types.ItemID(newID()),
		Text: strings.TrimSpace(req.Text),
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "checklists", "checklist", string(req.ChecklistID)); err != nil {
			return err
		}
		pos, err := nextPosition(ctx, tx, "checklist_items", "checklist_id", req.ChecklistID)
		if err != nil {
			return err
		}
		it.Position = pos
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO checklist_items (id, checklist_id, text, is_done, position) VALUES (?, ?, ?, 0, ?)`,
			it.ID, req.ChecklistID, it.Text, it.Position,
		); err != nil {
			return fmt.Errorf("failed to insert checklist item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

// UpdateChecklistItem applies a partial update to an item.
func (r *ChecklistRepo) UpdateChecklistItem(ctx context.Context, id types.ItemID, patch models.ChecklistItemPatch) (*models.ChecklistItem, error) {
	var u update
	if v, ok := patch.Text.Get(); ok {
		u.set("text", strings.TrimSpace(v))
	}
	if v, ok := patch.IsDone.Get(); ok {
		u.set("is_done", v)
	}
	if v, ok := patch.Position.Get(); ok {
		u.set("position", v)
	}
	if err := u.exec(ctx, r.db, "checklist_items", "checklist item", string(id)); err != nil {
		return nil, err
	}

	it := &models.ChecklistItem{}
	err := r.db.QueryRowContext(ctx, `SELECT id, text, is_done, position FROM checklist_items WHERE id = ?`, id).
		Scan(&it.ID, &it.Text, &it.IsDone, &it.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("checklist item")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist item %s: %w", id, err)
	}
	return it, nil
}

// DeleteChecklistItem removes one item.
func (r *ChecklistRepo) DeleteChecklistItem(ctx context.Context, id types.ItemID) error {
	return deleteByID(ctx, r.db, "checklist_items", "checklist item", string(id))
}
