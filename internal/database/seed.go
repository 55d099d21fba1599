package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Seed creates a sample project owned by owner, for trying the board out.
func Seed(ctx context.Context, repo *Repository, owner types.UserID, ownerName string) (*models.ProjectSummary, error) {
	if err := repo.UpsertProfile(ctx, owner, ownerName, ""); err != nil {
		return nil, err
	}
	course := "CS 410"
	project, err := repo.CreateProject(ctx, owner, persistence.CreateProjectRequest{Title: "Sample project", Course: &course})
	if err != nil {
		return nil, err
	}

	columns := []struct {
		title string
		cards []string
	}{
		{"Todo", []string{"Write proposal", "Pick a dataset", "Set up repo"}},
		{"In Progress", []string{"Literature review"}},
		{"Done", []string{"Form group"}},
	}

	var first *models.Card
	for _, col := range columns {
		l, err := repo.CreateList(ctx, persistence.CreateListRequest{ProjectID: project.ID, Title: col.title})
		if err != nil {
			return nil, fmt.Errorf("seed list %q: %w", col.title, err)
		}
		for _, title := range col.cards {
			c, err := repo.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: project.ID, ListID: l.ID, Title: title})
			if err != nil {
				return nil, fmt.Errorf("seed card %q: %w", title, err)
			}
			if first == nil {
				first = c
			}
			slog.Debug("seeded card", "card_id", c.ID, "title", title)
		}
	}

	cl, err := repo.CreateChecklist(ctx, persistence.CreateChecklistRequest{CardID: first.ID, Title: "Sections"})
	if err != nil {
		return nil, err
	}
	for _, text := range []string{"Abstract", "Motivation", "Timeline"} {
		if _, err := repo.CreateChecklistItem(ctx, persistence.CreateChecklistItemRequest{ChecklistID: cl.ID, Text: text}); err != nil {
			return nil, err
		}
	}
	if err := repo.AssignCard(ctx, first.ID, owner); err != nil {
		return nil, err
	}
	if _, err := repo.CreateComment(ctx, owner, persistence.CreateCommentRequest{CardID: first.ID, Content: "Draft due Friday"}); err != nil {
		return nil, err
	}

	return project, nil
}
