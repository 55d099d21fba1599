package engine

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Validation errors
var (
	ErrEmptyTitle      = models.ErrEmptyTitle
	ErrEmptyName       = models.ErrEmptyName
	ErrEmptyText       = models.ErrEmptyText
	ErrEmptyContent    = models.ErrEmptyContent
	ErrInvalidPriority = models.ErrInvalidPriority
	ErrInvalidDate     = models.ErrInvalidDate
	ErrEmptyPatch      = models.ErrEmptyPatch

	// ErrPendingEntity rejects mutations that target a placeholder the
	// server has not confirmed yet.
	ErrPendingEntity = errors.New("entity is still being created")

	// ErrListChangeRequiresMove rejects list_id in an update; use MoveCard.
	ErrListChangeRequiresMove = errors.New("changing a card's list requires a move")
)

// Session errors
var (
	ErrNotLoaded = errors.New("no board loaded")
)

// ValidationError names the field that failed validation.
type ValidationError = models.FieldError

// IsValidation reports whether err was raised before any state changed.
func IsValidation(err error) bool {
	var fe *models.FieldError
	if errors.As(err, &fe) {
		return true
	}
	for _, target := range []error{ErrEmptyPatch, ErrPendingEntity, ErrListChangeRequiresMove} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func pending[T ~string](field string, id T) error {
	if types.IsTemp(id) {
		return &ValidationError{Field: field, Err: ErrPendingEntity}
	}
	return nil
}

// MutationError is a persistence failure that has been rolled back.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string { return fmt.Sprintf("failed to %s: %v", e.Op, e.Err) }
func (e *MutationError) Unwrap() error { return e.Err }

// HydrationKind classifies why a board could not be loaded.
type HydrationKind int

const (
	HydrationFailed HydrationKind = iota
	HydrationUnauthorized
	HydrationNotFound
)

func (k HydrationKind) String() string {
	switch k {
	case HydrationUnauthorized:
		return "unauthorized"
	case HydrationNotFound:
		return "not found"
	default:
		return "failed"
	}
}

// Redirect reports whether the caller should leave the board view instead
// of offering a retry.
func (k HydrationKind) Redirect() bool {
	return k == HydrationUnauthorized || k == HydrationNotFound
}

// HydrationError is a failed board load.
type HydrationError struct {
	Kind      HydrationKind
	ProjectID types.ProjectID
	Err       error
}

func (e *HydrationError) Error() string {
	return fmt.Sprintf("failed to load board %s (%s): %v", e.ProjectID, e.Kind, e.Err)
}

func (e *HydrationError) Unwrap() error { return e.Err }

// HydrationFailure classifies a failed board fetch.
func HydrationFailure(id types.ProjectID, err error) *HydrationError {
	kind := HydrationFailed
	switch {
	case persistence.IsAuth(err):
		kind = HydrationUnauthorized
	case errors.Is(err, persistence.ErrNotFound):
		kind = HydrationNotFound
	}
	return &HydrationError{Kind: kind, ProjectID: id, Err: err}
}
