package database

import (
	"database/sql"
)

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	*ProjectRepo
	*ListRepo
	*CardRepo
	*ChecklistRepo
	*CommentRepo
	*ScopeRepo

	db *sql.DB
}

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ProjectRepo:   &ProjectRepo{db: db},
		ListRepo:      &ListRepo{db: db},
		CardRepo:      &CardRepo{db: db},
		ChecklistRepo: &ChecklistRepo{db: db},
		CommentRepo:   &CommentRepo{db: db},
		ScopeRepo:     &ScopeRepo{db: db},
		db:            db,
	}
}

// DB returns the underlying connection pool.
func (r *Repository) DB() *sql.DB { return r.db }

// Close closes the database.
func (r *Repository) Close() error { return r.db.Close() }
