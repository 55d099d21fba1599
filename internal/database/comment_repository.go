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

// CommentRepo handles card activity and the profiles that author it.
type CommentRepo struct {
	db *sql.DB
}

// activityColumns expects card_activity as a and profiles as pr.
const activityColumns = `a.id, a.user_id, a.type, a.content, a.created_at,
	COALESCE(pr.username, ''), COALESCE(pr.avatar_url, '')`

func scanActivity(row rowScanner, prefix ...any) (*models.Activity, error) {
	var (
		a       models.Activity
		created string
	)
	dest := append(prefix, &a.ID, &a.UserID, &a.Type, &a.Content, &created, &a.Username, &a.AvatarURL)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.CreatedAt = parseTime(created)
	if a.Username == "" {
		a.Username = models.GuestName
	}
	return &a, nil
}

// CreateComment records a comment by userID. Authors without a profile are
// shown as Guest.
func (r *CommentRepo) CreateComment(ctx context.Context, userID types.UserID, req persistence.CreateCommentRequest) (*models.Activity, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, models.ErrEmptyContent
	}
	id := types.ActivityID(newID())

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "cards", "card", string(req.CardID)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO card_activity (id, card_id, user_id, type, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, req.CardID, userID, models.ActivityComment, content, now())
		if err != nil {
			return fmt.Errorf("failed to insert comment on card %s: %w", req.CardID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a, err := scanActivity(r.db.QueryRowContext(ctx, `
		SELECT `+activityColumns+`
		FROM card_activity a LEFT JOIN profiles pr ON pr.id = a.user_id
		WHERE a.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to read comment %s: %w", id, err)
	}
	return a, nil
}

// UpsertProfile creates or updates a user's display profile.
func (r *CommentRepo) UpsertProfile(ctx context.Context, userID types.UserID, username, avatarURL string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, avatar_url) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, avatar_url = excluded.avatar_url`,
		userID, username, avatarURL)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", userID, err)
	}
	return nil
}

// Profile returns the stored display name and avatar. A missing profile
// returns Guest.
func (r *CommentRepo) Profile(ctx context.Context, userID types.UserID) (models.Assignee, error) {
	out := models.Assignee{UserID: userID}
	err := r.db.QueryRowContext(ctx, `SELECT username, avatar_url FROM profiles WHERE id = ?`, userID).
		Scan(&out.Username, &out.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		out.Username = models.GuestName
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to read profile %s: %w", userID, err)
	}
	return out, nil
}
