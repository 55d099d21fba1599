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

// CardRepo handles all card-related database operations.
type CardRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const cardColumns = `id, list_id, title, description, priority, due_date, position`

func scanCard(row rowScanner) (*models.Card, error) {
	var (
		c                   models.Card
		desc, prio, dueDate sql.NullString
	)
	if err := row.Scan(&c.ID, &c.ListID, &c.Title, &desc, &prio, &dueDate, &c.Position); err != nil {
		return nil, err
	}
	c.Description = stringPtr(desc)
	c.Priority = priorityPtr(prio)
	c.DueDate = datePtr(dueDate)
	c.Normalize()
	return &c, nil
}

func (r *CardRepo) getCard(ctx context.Context, q querier, id types.CardID) (*models.Card, error) {
	c, err := scanCard(q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("card")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read card %s: %w", id, err)
	}
	return c, nil
}

// listProject returns the project that owns a list.
func listProject(ctx context.Context, q querier, id types.ListID) (types.ProjectID, error) {
	var projectID types.ProjectID
	err := q.QueryRowContext(ctx, `SELECT project_id FROM lists WHERE id = ?`, id).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound("list")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get project of list %s: %w", id, err)
	}
	return projectID, nil
}

// CreateCard appends a card to the end of its list.
func (r *CardRepo) CreateCard(ctx context.Context, req persistence.CreateCardRequest) (*models.Card, error) {
	title := strings.TrimSpace(req.Title)
	card := &models.Card{
		ID:          types.CardID(newID()),
		ListID:      req.ListID,
		Title:       title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		projectID, err := listProject(ctx, tx, req.ListID)
		if err != nil {
			return err
		}
		if req.ProjectID != "" && req.ProjectID != projectID {
			return notFound("list")
		}
		if card.Position, err = nextPosition(ctx, tx, "cards", "list_id", req.ListID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cards (id, list_id, project_id, title, description, priority, due_date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			card.ID, card.ListID, projectID, card.Title,
			nullString(card.Description), nullPriority(card.Priority), nullDate(card.DueDate), card.Position)
		if err != nil {
			return fmt.Errorf("failed to insert card '%s': %w", title, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	card.Normalize()
	return card, nil
}

// UpdateCard applies a partial update. A list change must stay inside the
// card's project.
func (r *CardRepo) UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) (*models.Card, error) {
	var out *models.Card
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var u update
		if v, ok := patch.Title.Get(); ok {
			u.set("title", strings.TrimSpace(v))
		}
		if v, ok := patch.Description.Get(); ok {
			u.set("description", nullString(v))
		}
		if v, ok := patch.Priority.Get(); ok {
			u.set("priority", nullPriority(v))
		}
		if v, ok := patch.DueDate.Get(); ok {
			u.set("due_date", nullDate(v))
		}
		if v, ok := patch.Position.Get(); ok {
			u.set("position", v)
		}
		if v, ok := patch.ListID.Get(); ok {
			var current types.ProjectID
			err := tx.QueryRowContext(ctx, `SELECT project_id FROM cards WHERE id = ?`, id).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("card")
			}
			if err != nil {
				return fmt.Errorf("failed to get project of card %s: %w", id, err)
			}
			target, err := listProject(ctx, tx, v)
			if err != nil {
				return err
			}
			if target != current {
				return notFound("list")
			}
			u.set("list_id", v)
		}
		if err := u.exec(ctx, tx, "cards", "card", string(id)); err != nil {
			return err
		}
		c, err := r.getCard(ctx, tx, id)
		out = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCard removes the card with its checklists, assignees and activity.
func (r *CardRepo) DeleteCard(ctx context.Context, id types.CardID) error {
	return deleteByID(ctx, r.db, "cards", "card", string(id))
}

// AssignCard adds userID to the card's assignees.
func (r *CardRepo) AssignCard(ctx context.Context, id types.CardID, userID types.UserID) error {
	if _, err := r.getCard(ctx, r.db, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO card_assignees (card_id, user_id) VALUES (?, ?)`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to assign %s to card %s: %w", userID, id, err)
	}
	return nil
}
