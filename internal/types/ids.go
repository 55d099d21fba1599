package types

import (
	"strings"

	"github.com/google/uuid"
)

// ID types give each string identifier its domain meaning.
// Identifiers are assigned by the persistence layer; the client only ever
// mints temporary placeholders (see NewTempID).

// ProjectID identifies a project (the root of a board)
type ProjectID string

// ListID identifies a list within a project
type ListID string

// CardID identifies a card within a list
type CardID string

// ChecklistID identifies a checklist on a card
type ChecklistID string

// ItemID identifies a checklist item
type ItemID string

// ActivityID identifies a comment or action entry on a card
type ActivityID string

// UserID identifies an authenticated user
type UserID string

// TempPrefix marks identifiers minted locally for optimistic placeholders.
const TempPrefix = "tmp-"

// NewTempID returns a fresh placeholder identifier.
func NewTempID() string {
	return TempPrefix + uuid.NewString()
}

// IsTemp reports whether id is a local placeholder that the server has not confirmed.
func IsTemp[T ~string](id T) bool {
	return strings.HasPrefix(string(id), TempPrefix)
}

func (id ProjectID) String() string   { return string(id) }
func (id ListID) String() string      { return string(id) }
func (id CardID) String() string      { return string(id) }
func (id ChecklistID) String() string { return string(id) }
func (id ItemID) String() string      { return string(id) }
func (id ActivityID) String() string  { return string(id) }
func (id UserID) String() string      { return string(id) }
