// Package board holds the local board document: an immutable project tree
// with copy-on-write edits, owned by a Store for the duration of a session.
package board

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/groupboard/internal/models"
)

var (
	ErrClosed    = errors.New("board session is closed")
	ErrNotLoaded = errors.New("board is not loaded")
)

// Change records one commit: the roots on either side of it.
type Change struct {
	Before   *models.Project
	After    *models.Project
	Revision uint64
}

// Store owns the current board root for one session.
// Commits are serialized; snapshots are immutable and safe to share.
type Store struct {
	mu        sync.RWMutex
	root      *models.Project
	revision  uint64
	closed    bool
	observers map[int]func(*models.Project)
	nextObsID int
}

// NewStore creates an empty, unloaded store.
func NewStore() *Store {
	return &Store{observers: make(map[int]func(*models.Project))}
}

// Load installs a freshly fetched tree as the session's document, sorting
// every level by position first.
func (s *Store) Load(p *models.Project) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.root = models.SortBoard(p)
	s.revision++
	root := s.root
	s.mu.Unlock()

	s.notify(root)
	return nil
}

// Snapshot returns the current root, or nil before Load.
func (s *Store) Snapshot() *models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Revision counts commits since the store was created.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Loaded reports whether a board has been installed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root != nil
}

// Apply commits edit against the current root.
// On error nothing is committed.
func (s *Store) Apply(edit Edit) (Change, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Change{}, ErrClosed
	}
	if s.root == nil {
		s.mu.Unlock()
		return Change{}, ErrNotLoaded
	}
	next, err := edit(s.root)
	if err != nil {
		s.mu.Unlock()
		return Change{}, err
	}
	ch := Change{Before: s.root}
	s.root = next
	s.revision++
	ch.After = next
	ch.Revision = s.revision
	s.mu.Unlock()

	s.notify(next)
	return ch, nil
}

// Revert undoes a change. When nothing has been committed since the change,
// the previous root is restored exactly. Otherwise undo is applied to the
// current root so that later commits survive.
func (s *Store) Revert(ch Change, undo Edit) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	var next *models.Project
	if s.revision == ch.Revision && s.root == ch.After {
		next = ch.Before
	} else {
		if undo == nil {
			s.mu.Unlock()
			return fmt.Errorf("cannot revert revision %d: board moved on to %d", ch.Revision, s.revision)
		}
		var err error
		next, err = undo(s.root)
		if err != nil {
			s.mu.Unlock()
			slog.Warn("compensating edit failed", "revision", ch.Revision, "error", err)
			return fmt.Errorf("failed to revert change: %w", err)
		}
	}
	s.root = next
	s.revision++
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// Subscribe registers fn to be called with the new root after every commit.
// The returned function removes the observer.
func (s *Store) Subscribe(fn func(*models.Project)) (cancel func()) {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close ends the session. Later commits fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.root = nil
	s.observers = make(map[int]func(*models.Project))
	s.mu.Unlock()
}

func (s *Store) notify(root *models.Project) {
	s.mu.RLock()
	fns := make([]func(*models.Project), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(root)
	}
}
