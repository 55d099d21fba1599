// Package api is the REST server for boards: projects, lists, cards,
// checklists and comments, backed by the sqlite store.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/database"
)

// Server holds the REST handlers.
type Server struct {
	store  database.Store
	issuer *auth.Issuer
	logger *slog.Logger
}

// NewServer creates the REST server.
func NewServer(store database.Store, issuer *auth.Issuer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, issuer: issuer, logger: logger}
}

// Register mounts every REST route on r. Each route requires a bearer token.
func (s *Server) Register(r *mux.Router) {
	// Projects
	r.HandleFunc("/api/projects", s.authenticate(s.listProjects)).Methods(http.MethodGet)
	r.HandleFunc("/api/projects", s.authenticate(s.createProject)).Methods(http.MethodPost)
	r.HandleFunc("/api/projects/{id}", s.authenticate(s.getBoard)).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{id}", s.authenticate(s.updateProject)).Methods(http.MethodPatch)
	r.HandleFunc("/api/projects/{id}", s.authenticate(s.deleteProject)).Methods(http.MethodDelete)

	// Lists
	r.HandleFunc("/api/lists", s.authenticate(s.createList)).Methods(http.MethodPost)
	r.HandleFunc("/api/lists/{id}", s.authenticate(s.updateList)).Methods(http.MethodPatch)
	r.HandleFunc("/api/lists/{id}", s.authenticate(s.deleteList)).Methods(http.MethodDelete)

	// Cards
	r.HandleFunc("/api/cards", s.authenticate(s.createCard)).Methods(http.MethodPost)
	r.HandleFunc("/api/cards/{id}", s.authenticate(s.updateCard)).Methods(http.MethodPatch)
	r.HandleFunc("/api/cards/{id}", s.authenticate(s.deleteCard)).Methods(http.MethodDelete)

	// Checklists
	r.HandleFunc("/api/checklists", s.authenticate(s.createChecklist)).Methods(http.MethodPost)
	r.HandleFunc("/api/checklists/{id}", s.authenticate(s.updateChecklist)).Methods(http.MethodPatch)
	r.HandleFunc("/api/checklists/{id}", s.authenticate(s.deleteChecklist)).Methods(http.MethodDelete)
	r.HandleFunc("/api/checklist-items", s.authenticate(s.createChecklistItem)).Methods(http.MethodPost)
	r.HandleFunc("/api/checklist-items/{id}", s.authenticate(s.updateChecklistItem)).Methods(http.MethodPatch)
	r.HandleFunc("/api/checklist-items/{id}", s.authenticate(s.deleteChecklistItem)).Methods(http.MethodDelete)

	// Comments
	r.HandleFunc("/api/comments", s.authenticate(s.createComment)).Methods(http.MethodPost)

	r.HandleFunc("/api/health", s.health).Methods(http.MethodGet)
}

// Handler returns a router serving only the REST routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.Register(r)
	return r
}

// WithCORS wraps h with the CORS policy. No origins allows any.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(h)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
