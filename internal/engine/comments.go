package engine

import (
	"context"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// AddComment posts a comment on a card. It shows up at the top of the feed
// immediately, attributed to the configured author.
func (e *Engine) AddComment(ctx context.Context, cardID types.CardID, content string) (*models.Activity, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Err: ErrEmptyContent}
	}
	if err := pending("card_id", cardID); err != nil {
		return nil, err
	}
	p, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if _, err := e.findCard(p, cardID); err != nil {
		return nil, err
	}

	name := e.author.Username
	if name == "" {
		name = models.GuestName
	}
	tmp := &models.Activity{
		ID:        types.ActivityID(types.NewTempID()),
		UserID:    e.author.UserID,
		Type:      models.ActivityComment,
		Content:   content,
		CreatedAt: e.now().UTC(),
		Username:  name,
		AvatarURL: e.author.AvatarURL,
	}

	var created *models.Activity
	err = e.run(ctx, mutation{
		op:    "add comment",
		apply: board.PrependActivity(cardID, tmp),
		undo:  board.RemoveActivity(cardID, tmp.ID),
		persist: func(ctx context.Context) (board.Edit, error) {
			a, err := e.backend.CreateComment(ctx, persistence.CreateCommentRequest{CardID: cardID, Content: content})
			if err != nil {
				return nil, err
			}
			if a == nil {
				return nil, errUnexpected("add comment")
			}
			if a.Username == "" {
				a.Username = models.GuestName
			}
			created = a
			return board.MapActivity(cardID, tmp.ID, func(*models.Activity) *models.Activity { return a }), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
