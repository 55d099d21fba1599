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

// ListRepo handles all list-related database operations.
type ListRepo struct {
	db *sql.DB
}

// CreateList appends a list to the end of the project's board.
func (r *ListRepo) CreateList(ctx context.Context, req persistence.CreateListRequest) (*models.List, error) {
	l := &models.List{
		ID:    types.ListID(newID()),
		Title: strings.TrimSpace(req.Title),
		Cards: []*models.Card{},
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, req.ProjectID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check project %s: %w", req.ProjectID, err)
		}
		if exists == 0 {
			return notFound("project")
		}
		pos, err := nextPosition(ctx, tx, "lists", "project_id", req.ProjectID)
		if err != nil {
			return err
		}
		l.Position = pos
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lists (id, project_id, title, position) VALUES (?, ?, ?, ?)`,
			l.ID, req.ProjectID, l.Title, l.Position,
		); err != nil {
			return fmt.Errorf("failed to insert list '%s': %w", l.Title, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ListRepo) getList(ctx context.Context, q querier, id types.ListID) (*models.List, error) {
	l := &models.List{Cards: []*models.Card{}}
	err := q.QueryRowContext(ctx, `SELECT id, title, position FROM lists WHERE id = ?`, id).
		Scan(&l.ID, &l.Title, &l.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("list")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read list %s: %w", id, err)
	}
	return l, nil
}

// UpdateList renames and/or repositions a list. Titles are trimmed.
func (r *ListRepo) UpdateList(ctx context.Context, id types.ListID, patch models.ListPatch) (*models.List, error) {
	var u update
	if v, ok := patch.Title.Get(); ok {
		u.set("title", strings.TrimSpace(v))
	}
	if v, ok := patch.Position.Get(); ok {
		u.set("position", v)
	}
	if err := u.exec(ctx, r.db, "lists", "list", string(id)); err != nil {
		return nil, err
	}
	return r.getList(ctx, r.db, id)
}

// DeleteList removes the list and, by cascade, its cards.
func (r *ListRepo) DeleteList(ctx context.Context, id types.ListID) error {
	return deleteByID(ctx, r.db, "lists", "list", string(id))
}
