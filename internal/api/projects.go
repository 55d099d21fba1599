package api

import (
	"net/http"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context(), caller(r.Context()))
	if err != nil {
		s.fail(w, r, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req persistence.CreateProjectRequest
	if !decode(w, r, &req) {
		return
	}
	if req.DueDate != nil && !req.DueDate.Valid() {
		writeError(w, http.StatusBadRequest, models.ErrInvalidDate.Error())
		return
	}
	p, err := s.store.CreateProject(r.Context(), caller(r.Context()), req)
	if err != nil {
		s.fail(w, r, "create project", err)
		return
	}
	s.logger.Info("project created", "project_id", p.ID, "user_id", caller(r.Context()))
	writeJSON(w, http.StatusCreated, p)
}

// getBoard returns the nested board. Sibling order is not guaranteed.
func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	id := types.ProjectID(pathID(r))
	if !s.authorize(w, r, id) {
		return
	}
	p, err := s.store.GetBoard(r.Context(), id)
	if err != nil {
		s.fail(w, r, "load board", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id := types.ProjectID(pathID(r))
	if !s.authorize(w, r, id) {
		return
	}
	var patch models.ProjectPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	p, err := s.store.UpdateProject(r.Context(), id, patch)
	if err != nil {
		s.fail(w, r, "update project", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := types.ProjectID(pathID(r))
	if !s.authorize(w, r, id) {
		return
	}
	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		s.fail(w, r, "delete project", err)
		return
	}
	s.logger.Info("project deleted", "project_id", id, "user_id", caller(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
