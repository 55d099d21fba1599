package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/database"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

const maxBodySize = 1 << 20

// errNoFields is the message for an empty PATCH.
const errNoFields = "No valid fields to update"

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// validationErrors are the input errors reported as 400.
var validationErrors = []error{
	models.ErrEmptyTitle,
	models.ErrEmptyName,
	models.ErrEmptyText,
	models.ErrEmptyContent,
	models.ErrInvalidPriority,
	models.ErrInvalidDate,
	models.ErrEmptyPatch,
	models.ErrTitleTooLong,
}

// fail writes the response for a store or validation error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	s.logger.Error("request failed", "op", op, "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// decode reads a JSON body into dst. It reports a 400 itself and returns
// false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// patchable is satisfied by every typed patch.
type patchable interface {
	Empty() bool
	Validate() error
}

// decodePatch reads and validates a PATCH body. It reports a 400 itself and
// returns false on failure.
func decodePatch(w http.ResponseWriter, r *http.Request, p patchable) bool {
	if !decode(w, r, p) {
		return false
	}
	if p.Empty() {
		writeError(w, http.StatusBadRequest, errNoFields)
		return false
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func pathID(r *http.Request) string { return mux.Vars(r)["id"] }

// ============================================================================
// AUTHORIZATION
// ============================================================================

// authenticate rejects requests without a valid bearer token and puts the
// caller's claims on the context.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.issuer.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	}
}

func caller(ctx context.Context) types.UserID {
	if c, ok := auth.FromContext(ctx); ok {
		return c.UserID
	}
	return ""
}

// authorize reports whether the caller collaborates on projectID, writing
// 403 or 500 when not.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, projectID types.ProjectID) bool {
	ok, err := s.store.IsCollaborator(r.Context(), projectID, caller(r.Context()))
	if err != nil {
		s.fail(w, r, "authorize", err)
		return false
	}
	if !ok {
		writeError(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

// authorizeVia resolves the owning project with lookup, then authorizes it.
func (s *Server) authorizeVia(w http.ResponseWriter, r *http.Request, op string, lookup func(ctx context.Context) (types.ProjectID, error)) bool {
	projectID, err := lookup(r.Context())
	if err != nil {
		s.fail(w, r, op, err)
		return false
	}
	return s.authorize(w, r, projectID)
}
