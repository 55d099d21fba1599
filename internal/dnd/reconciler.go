// Package dnd turns drag-and-drop gestures into position writes.
//
// Planning is pure: given a board and a drop result it decides whether the
// drop is a no-op, a reorder inside one container, or a reparent into
// another, and computes the fractional position. Applying the plan is left
// to a Mover.
package dnd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/position"
	"github.com/thenoetrevino/groupboard/internal/types"
)

var (
	ErrUnknownKind    = errors.New("unknown draggable type")
	ErrUnknownEntity  = errors.New("dragged entity is not on the board")
	ErrUnknownTarget  = errors.New("drop target is not on the board")
	ErrNotDragging    = errors.New("no drag in progress")
	ErrAlreadyDragged = errors.New("a drag is already in progress")
)

// OutcomeKind classifies a drop.
type OutcomeKind int

const (
	NoOp OutcomeKind = iota
	Reorder
	Reparent
	Invalid
)

func (k OutcomeKind) String() string {
	switch k {
	case Reorder:
		return "reorder"
	case Reparent:
		return "reparent"
	case Invalid:
		return "invalid"
	default:
		return "no-op"
	}
}

// Outcome is the result of one drop.
type Outcome struct {
	Kind     OutcomeKind
	Position float64
	// Failed is set when the mover rejected or rolled back the move.
	Failed bool
	Err    error
}

// Plan is a planned move: exactly one of Card or List is set unless the
// outcome is NoOp or Invalid.
type Plan struct {
	Card *CardMove
	List *ListMove
}

// PlanDrop decides what a drop does to p.
func PlanDrop(p *models.Project, r DropResult) (Plan, Outcome) {
	if r.Destination == nil {
		return Plan{}, Outcome{Kind: NoOp}
	}
	switch r.Kind {
	case KindCard:
		m, out := PlanCard(p, r)
		if m == nil {
			return Plan{}, out
		}
		return Plan{Card: m}, out
	case KindList:
		m, out := PlanList(p, r)
		if m == nil {
			return Plan{}, out
		}
		return Plan{List: m}, out
	default:
		return Plan{}, Outcome{Kind: Invalid, Err: fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)}
	}
}

// PlanCard plans a card drop. The dragged id is authoritative: when the
// reported source disagrees with where the card actually is, the board wins.
func PlanCard(p *models.Project, r DropResult) (*CardMove, Outcome) {
	if r.Destination == nil {
		return nil, Outcome{Kind: NoOp}
	}
	id := types.CardID(r.DraggableID)
	loc, ok := board.FindCard(p, id)
	if !ok {
		return nil, Outcome{Kind: Invalid, Err: fmt.Errorf("%w: card %s", ErrUnknownEntity, id)}
	}
	toID := types.ListID(r.Destination.ContainerID)
	_, dest, ok := board.FindList(p, toID)
	if !ok {
		return nil, Outcome{Kind: Invalid, Err: fmt.Errorf("%w: list %s", ErrUnknownTarget, toID)}
	}

	from := loc.List.ID
	if from == toID && loc.CardIndex == r.Destination.Index {
		return nil, Outcome{Kind: NoOp}
	}

	siblings := make([]float64, 0, len(dest.Cards))
	for _, c := range dest.Cards {
		if c.ID != id {
			siblings = append(siblings, c.Position)
		}
	}
	index := clamp(r.Destination.Index, len(siblings))
	if from == toID && index == loc.CardIndex {
		return nil, Outcome{Kind: NoOp}
	}

	pos := position.Compute(siblings, index)
	m := &CardMove{
		CardID:   id,
		FromList: from,
		ToList:   toID,
		Index:    index,
		Position: pos,
		Renumber: position.Collapsed(siblings, index, pos),
	}
	kind := Reorder
	if m.CrossList() {
		kind = Reparent
	}
	return m, Outcome{Kind: kind, Position: pos}
}

// PlanList plans a list drop within the project.
func PlanList(p *models.Project, r DropResult) (*ListMove, Outcome) {
	if r.Destination == nil {
		return nil, Outcome{Kind: NoOp}
	}
	id := types.ListID(r.DraggableID)
	current, _, ok := board.FindList(p, id)
	if !ok {
		return nil, Outcome{Kind: Invalid, Err: fmt.Errorf("%w: list %s", ErrUnknownEntity, id)}
	}

	siblings := make([]float64, 0, len(p.Lists))
	for _, l := range p.Lists {
		if l.ID != id {
			siblings = append(siblings, l.Position)
		}
	}
	index := clamp(r.Destination.Index, len(siblings))
	if index == current {
		return nil, Outcome{Kind: NoOp}
	}

	pos := position.Compute(siblings, index)
	return &ListMove{
		ListID:   id,
		Index:    index,
		Position: pos,
		Renumber: position.Collapsed(siblings, index, pos),
	}, Outcome{Kind: Reorder, Position: pos}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// ============================================================================
// RECONCILER
// ============================================================================

// Phase is the gesture state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseDropped
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseDropped:
		return "dropped"
	default:
		return "idle"
	}
}

// Reconciler drives one gesture at a time against a Mover.
type Reconciler struct {
	mover  Mover
	logger *slog.Logger

	mu     sync.Mutex
	phase  Phase
	active *DragStart
	last   Outcome
}

// NewReconciler creates a reconciler over m.
func NewReconciler(m Mover) *Reconciler {
	return &Reconciler{mover: m, logger: slog.Default()}
}

// Begin starts a gesture.
func (r *Reconciler) Begin(start DragStart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseDragging {
		return ErrAlreadyDragged
	}
	r.phase = PhaseDragging
	r.active = &start
	return nil
}

// Cancel abandons the current gesture.
func (r *Reconciler) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = PhaseIdle
	r.active = nil
}

// Phase returns the gesture state.
func (r *Reconciler) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Last returns the outcome of the most recent drop.
func (r *Reconciler) Last() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Drop finishes the gesture and applies it. Drops are accepted without a
// preceding Begin. Mover failures are reported in the outcome, not returned:
// the mover has already rolled back and raised a notice.
func (r *Reconciler) Drop(ctx context.Context, result DropResult) Outcome {
	r.mu.Lock()
	r.phase = PhaseDropped
	r.active = nil
	r.mu.Unlock()

	plan, out := PlanDrop(r.mover.Board(), result)
	var err error
	switch {
	case plan.Card != nil:
		err = r.mover.MoveCard(ctx, *plan.Card)
	case plan.List != nil:
		err = r.mover.MoveList(ctx, *plan.List)
	}
	if err != nil {
		out.Failed = true
		out.Err = err
		r.logger.Warn("drop failed", "draggable_id", result.DraggableID, "type", result.Kind, "error", err)
	} else if out.Kind == Invalid {
		r.logger.Debug("drop ignored", "draggable_id", result.DraggableID, "error", out.Err)
	}

	r.mu.Lock()
	r.last = out
	r.phase = PhaseIdle
	r.mu.Unlock()
	return out
}
