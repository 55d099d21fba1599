package engine

import (
	"context"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/models"
)

// UpdateProject writes project metadata.
func (e *Engine) UpdateProject(ctx context.Context, patch models.ProjectPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.Name.Set {
		patch.Name.Value = strings.TrimSpace(patch.Name.Value)
	}
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	inverse := patch.Inverse(p)

	return e.run(ctx, mutation{
		op:    "update project",
		apply: board.MapProject(patch.Apply),
		undo:  board.MapProject(inverse.Apply),
		persist: func(ctx context.Context) (board.Edit, error) {
			_, err := e.backend.UpdateProject(ctx, p.ID, patch)
			return nil, err
		},
	})
}

// DeleteProject removes the project on the server and ends the session.
// Nothing is removed locally until the server confirms.
func (e *Engine) DeleteProject(ctx context.Context) error {
	p, err := e.snapshot()
	if err != nil {
		return err
	}
	pctx, cancel := e.persistContext(ctx)
	err = e.backend.DeleteProject(pctx, p.ID)
	cancel()
	if err != nil {
		e.notices.Error("Failed to delete project")
		e.logger.Warn("project delete failed", "project_id", p.ID, "error", err)
		return &MutationError{Op: "delete project", Err: err}
	}
	e.logger.Info("project deleted", "project_id", p.ID)
	e.Close()
	return nil
}
