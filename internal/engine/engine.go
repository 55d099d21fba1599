// Package engine applies board mutations optimistically and reconciles them
// with the persistence backend.
//
// Every operation follows the same protocol: validate the input, commit the
// change to the local board, send a partial write to the backend, then
// either fold the server's answer back in or roll the local commit back.
// Rollbacks raise a notice; validation failures never reach the network.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/notify"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/selection"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// DefaultTimeout bounds each persistence call.
const DefaultTimeout = 10 * time.Second

// LoadState is the hydration status of the session.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Engine is the local, optimistic variant of the board core.
type Engine struct {
	store     *board.Store
	backend   persistence.Backend
	selection *selection.State
	notices   *notify.Center
	timeout   time.Duration
	author    models.Assignee
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	projectID types.ProjectID
	state     LoadState
	loadErr   *HydrationError
}

// Compile-time verification that *Engine can serve the drag-and-drop reconciler
var _ dnd.Mover = (*Engine)(nil)

// New creates an engine over store and backend.
func New(store *board.Store, backend persistence.Backend, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		backend:   backend,
		selection: selection.New(),
		notices:   notify.NewCenter(notify.DefaultTTL),
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Board returns the current board snapshot, or nil before Load.
func (e *Engine) Board() *models.Project { return e.store.Snapshot() }

// Store returns the session's board store.
func (e *Engine) Store() *board.Store { return e.store }

// Selection returns the view-selection state kept in sync with the board.
func (e *Engine) Selection() *selection.State { return e.selection }

// Notices returns the shared last-error holder.
func (e *Engine) Notices() *notify.Center { return e.notices }

// ProjectID returns the loaded project's id.
func (e *Engine) ProjectID() types.ProjectID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.projectID
}

// State returns the hydration status and, when failed, the reason.
func (e *Engine) State() (LoadState, *HydrationError) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.loadErr
}

// Load fetches the board and installs it as the session document.
func (e *Engine) Load(ctx context.Context, id types.ProjectID) error {
	e.mu.Lock()
	e.state = StateLoading
	e.loadErr = nil
	e.mu.Unlock()

	pctx, cancel := e.persistContext(ctx)
	p, err := e.backend.GetBoard(pctx, id)
	cancel()
	if err == nil {
		err = e.store.Load(p)
	}
	if err != nil {
		herr := HydrationFailure(id, err)
		e.mu.Lock()
		e.state = StateFailed
		e.loadErr = herr
		e.mu.Unlock()
		e.logger.Warn("board load failed", "project_id", id, "kind", herr.Kind, "error", err)
		return herr
	}

	e.mu.Lock()
	e.projectID = id
	e.state = StateReady
	e.mu.Unlock()
	e.syncSelection()
	e.logger.Debug("board loaded", "project_id", id, "lists", len(p.Lists), "cards", p.CardCount())
	return nil
}

// Close ends the session.
func (e *Engine) Close() {
	e.store.Close()
	e.selection.Close()
	e.mu.Lock()
	e.state = StateIdle
	e.mu.Unlock()
}

// ============================================================================
// MUTATION PROTOCOL
// ============================================================================

// mutation is one optimistic operation.
type mutation struct {
	op      string // human phrase: "update card"
	level   notify.Level
	notice  string // overrides "Failed to <op>"
	apply   board.Edit
	undo    board.Edit
	persist func(ctx context.Context) (reconcile board.Edit, err error)
	// confirmed runs after a successful reconcile
	confirmed func()
}

func (e *Engine) run(ctx context.Context, m mutation) error {
	ch, err := e.store.Apply(m.apply)
	if err != nil {
		return err
	}
	e.syncSelection()

	pctx, cancel := e.persistContext(ctx)
	reconcile, err := m.persist(pctx)
	cancel()

	if err != nil {
		if rerr := e.store.Revert(ch, m.undo); rerr != nil {
			e.logger.Error("rollback failed", "op", m.op, "error", rerr)
		}
		e.syncSelection()
		e.raise(m, err)
		return &MutationError{Op: m.op, Err: err}
	}

	if reconcile != nil {
		if _, err := e.store.Apply(reconcile); err != nil {
			e.logger.Debug("reconcile skipped", "op", m.op, "error", err)
		}
	}
	if m.confirmed != nil {
		m.confirmed()
	}
	e.syncSelection()
	return nil
}

func (e *Engine) raise(m mutation, err error) {
	msg := m.notice
	if msg == "" {
		msg = "Failed to " + m.op
	}
	level := m.level
	if level == notify.LevelInfo {
		level = notify.LevelError
	}
	e.notices.Set(level, msg)
	e.logger.Warn("mutation rolled back", "op", m.op, "error", err)
}

func (e *Engine) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) syncSelection() {
	if p := e.store.Snapshot(); p != nil {
		e.selection.Sync(p)
	}
}

// snapshot returns the current board or ErrNotLoaded.
func (e *Engine) snapshot() (*models.Project, error) {
	p := e.store.Snapshot()
	if p == nil {
		return nil, ErrNotLoaded
	}
	return p, nil
}

func (e *Engine) findCard(p *models.Project, id types.CardID) (board.CardLocation, error) {
	loc, ok := board.FindCard(p, id)
	if !ok {
		return board.CardLocation{}, &board.NotFoundError{Kind: "card", ID: string(id)}
	}
	return loc, nil
}

func (e *Engine) findChecklist(p *models.Project, cardID types.CardID, id types.ChecklistID) (*models.Card, *models.Checklist, error) {
	card, _, cl, ok := board.FindChecklist(p, cardID, id)
	if card == nil {
		return nil, nil, &board.NotFoundError{Kind: "card", ID: string(cardID)}
	}
	if !ok {
		return nil, nil, &board.NotFoundError{Kind: "checklist", ID: string(id)}
	}
	return card, cl, nil
}

func errUnexpected(op string) error {
	return fmt.Errorf("%s: backend returned no record", op)
}
