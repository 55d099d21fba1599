package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ============================================================================
// CHECKLISTS
// ============================================================================

func (s *Server) createChecklist(w http.ResponseWriter, r *http.Request) {
	var req persistence.CreateChecklistRequest
	if !decode(w, r, &req) {
		return
	}
	if err := models.ValidateTitle("title", req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.authorizeVia(w, r, "create checklist", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfCard(ctx, req.CardID)
	}) {
		return
	}
	cl, err := s.store.CreateChecklist(r.Context(), req)
	if err != nil {
		s.fail(w, r, "create checklist", err)
		return
	}
	writeJSON(w, http.StatusCreated, cl)
}

func (s *Server) updateChecklist(w http.ResponseWriter, r *http.Request) {
	id := types.ChecklistID(pathID(r))
	if !s.authorizeVia(w, r, "update checklist", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfChecklist(ctx, id)
	}) {
		return
	}
	var patch models.ChecklistPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	cl, err := s.store.UpdateChecklist(r.Context(), id, patch)
	if err != nil {
		s.fail(w, r, "update checklist", err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

func (s *Server) deleteChecklist(w http.ResponseWriter, r *http.Request) {
	id := types.ChecklistID(pathID(r))
	if !s.authorizeVia(w, r, "delete checklist", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfChecklist(ctx, id)
	}) {
		return
	}
	if err := s.store.DeleteChecklist(r.Context(), id); err != nil {
		s.fail(w, r, "delete checklist", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// ITEMS
// ============================================================================

func (s *Server) createChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req persistence.CreateChecklistItemRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, models.ErrEmptyText.Error())
		return
	}
	if !s.authorizeVia(w, r, "create checklist item", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfChecklist(ctx, req.ChecklistID)
	}) {
		return
	}
	it, err := s.store.CreateChecklistItem(r.Context(), req)
	if err != nil {
		s.fail(w, r, "create checklist item", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) updateChecklistItem(w http.ResponseWriter, r *http.Request) {
	id := types.ItemID(pathID(r))
	if !s.authorizeVia(w, r, "update checklist item", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfItem(ctx, id)
	}) {
		return
	}
	var patch models.ChecklistItemPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	it, err := s.store.UpdateChecklistItem(r.Context(), id, patch)
	if err != nil {
		s.fail(w, r, "update checklist item", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) deleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	id := types.ItemID(pathID(r))
	if !s.authorizeVia(w, r, "delete checklist item", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfItem(ctx, id)
	}) {
		return
	}
	if err := s.store.DeleteChecklistItem(r.Context(), id); err != nil {
		s.fail(w, r, "delete checklist item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// COMMENTS
// ============================================================================

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req persistence.CreateCommentRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, models.ErrEmptyContent.Error())
		return
	}
	if !s.authorizeVia(w, r, "post comment", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfCard(ctx, req.CardID)
	}) {
		return
	}
	a, err := s.store.CreateComment(r.Context(), caller(r.Context()), req)
	if err != nil {
		s.fail(w, r, "post comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
