package api

import (
	"context"
	"net/http"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ============================================================================
// LISTS
// ============================================================================

func (s *Server) createList(w http.ResponseWriter, r *http.Request) {
	var req persistence.CreateListRequest
	if !decode(w, r, &req) {
		return
	}
	if err := models.ValidateTitle("title", req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.authorize(w, r, req.ProjectID) {
		return
	}
	l, err := s.store.CreateList(r.Context(), req)
	if err != nil {
		s.fail(w, r, "create list", err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) updateList(w http.ResponseWriter, r *http.Request) {
	id := types.ListID(pathID(r))
	if !s.authorizeVia(w, r, "update list", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfList(ctx, id)
	}) {
		return
	}
	var patch models.ListPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	l, err := s.store.UpdateList(r.Context(), id, patch)
	if err != nil {
		s.fail(w, r, "update list", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) deleteList(w http.ResponseWriter, r *http.Request) {
	id := types.ListID(pathID(r))
	if !s.authorizeVia(w, r, "delete list", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfList(ctx, id)
	}) {
		return
	}
	if err := s.store.DeleteList(r.Context(), id); err != nil {
		s.fail(w, r, "delete list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// CARDS
// ============================================================================

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	var req persistence.CreateCardRequest
	if !decode(w, r, &req) {
		return
	}
	if err := models.ValidateTitle("title", req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Priority != nil && !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, models.ErrInvalidPriority.Error())
		return
	}
	if req.DueDate != nil && !req.DueDate.Valid() {
		writeError(w, http.StatusBadRequest, models.ErrInvalidDate.Error())
		return
	}
	if !s.authorizeVia(w, r, "create card", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfList(ctx, req.ListID)
	}) {
		return
	}
	c, err := s.store.CreateCard(r.Context(), req)
	if err != nil {
		s.fail(w, r, "create card", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCard(w http.ResponseWriter, r *http.Request) {
	id := types.CardID(pathID(r))
	if !s.authorizeVia(w, r, "update card", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfCard(ctx, id)
	}) {
		return
	}
	var patch models.CardPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	c, err := s.store.UpdateCard(r.Context(), id, patch)
	if err != nil {
		s.fail(w, r, "update card", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
	id := types.CardID(pathID(r))
	if !s.authorizeVia(w, r, "delete card", func(ctx context.Context) (types.ProjectID, error) {
		return s.store.ProjectOfCard(ctx, id)
	}) {
		return
	}
	if err := s.store.DeleteCard(r.Context(), id); err != nil {
		s.fail(w, r, "delete card", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
