package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/groupboard/internal/types"
)

// ScopeRepo resolves the project an entity belongs to, for membership checks.
type ScopeRepo struct {
	db *sql.DB
}

func (r *ScopeRepo) projectOf(ctx context.Context, what, query, id string) (types.ProjectID, error) {
	var projectID types.ProjectID
	err := r.db.QueryRowContext(ctx, query, id).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound(what)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get project of %s %s: %w", what, id, err)
	}
	return projectID, nil
}

// ProjectOfList returns the project that owns a list.
func (r *ScopeRepo) ProjectOfList(ctx context.Context, id types.ListID) (types.ProjectID, error) {
	return r.projectOf(ctx, "list", `SELECT project_id FROM lists WHERE id = ?`, string(id))
}

// ProjectOfCard returns the project that owns a card.
func (r *ScopeRepo) ProjectOfCard(ctx context.Context, id types.CardID) (types.ProjectID, error) {
	return r.projectOf(ctx, "card", `SELECT project_id FROM cards WHERE id = ?`, string(id))
}

// ProjectOfChecklist returns the project that owns a checklist.
func (r *ScopeRepo) ProjectOfChecklist(ctx context.Context, id types.ChecklistID) (types.ProjectID, error) {
	return r.projectOf(ctx, "checklist", `
		SELECT c.project_id FROM checklists k JOIN cards c ON c.id = k.card_id
		WHERE k.id = ?`, string(id))
}

// ProjectOfItem returns the project that owns a checklist item.
func (r *ScopeRepo) ProjectOfItem(ctx context.Context, id types.ItemID) (types.ProjectID, error) {
	return r.projectOf(ctx, "checklist item", `
		SELECT c.project_id FROM checklist_items i
		JOIN checklists k ON k.id = i.checklist_id
		JOIN cards c ON c.id = k.card_id
		WHERE i.id = ?`, string(id))
}
