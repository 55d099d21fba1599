package replica

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/engine"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/notify"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/selection"
	"github.com/thenoetrevino/groupboard/internal/types"
)

const (
	DefaultRetries = 3
	DefaultBackoff = 200 * time.Millisecond
)

// Adapter is the board core for a shared session. Writes land in the shared
// tree at once and are visible to every peer; persistence follows. A failed
// write is retried, then reported, but never reverted: peers may already
// have built on it.
type Adapter struct {
	doc       *Doc
	transport Transport
	backend   persistence.Backend
	projectID types.ProjectID

	selection *selection.State
	notices   *notify.Center
	logger    *slog.Logger
	retries   int
	backoff   time.Duration
	timeout   time.Duration
}

var _ dnd.Mover = (*Adapter)(nil)

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithRetries sets how many times a failed write is retried.
func WithRetries(n int) AdapterOption { return func(a *Adapter) { a.retries = n } }

// WithBackoff sets the delay before the first retry; it doubles after each.
func WithBackoff(d time.Duration) AdapterOption { return func(a *Adapter) { a.backoff = d } }

// WithTimeout bounds each persistence call.
func WithTimeout(d time.Duration) AdapterOption { return func(a *Adapter) { a.timeout = d } }

func WithNotices(c *notify.Center) AdapterOption     { return func(a *Adapter) { a.notices = c } }
func WithSelection(s *selection.State) AdapterOption { return func(a *Adapter) { a.selection = s } }
func WithLogger(l *slog.Logger) AdapterOption        { return func(a *Adapter) { a.logger = l } }

// NewAdapter creates an adapter for one project's room.
func NewAdapter(doc *Doc, t Transport, backend persistence.Backend, projectID types.ProjectID, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		doc:       doc,
		transport: t,
		backend:   backend,
		projectID: projectID,
		selection: selection.New(),
		notices:   notify.NewCenter(notify.DefaultTTL),
		logger:    slog.Default(),
		retries:   DefaultRetries,
		backoff:   DefaultBackoff,
		timeout:   engine.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Doc returns the local replica.
func (a *Adapter) Doc() *Doc { return a.doc }

// Selection returns the view-selection state.
func (a *Adapter) Selection() *selection.State { return a.selection }

// Notices returns the shared last-error holder.
func (a *Adapter) Notices() *notify.Center { return a.notices }

// Board materializes the shared tree, or returns nil before Join.
func (a *Adapter) Board() *models.Project {
	p, _ := Materialize(a.doc)
	return p
}

// Join merges the room's snapshot and, when the room holds no board yet,
// hydrates it from the backend. Concurrent hydrations by several peers
// converge on one of them.
func (a *Adapter) Join(ctx context.Context) error {
	snap, err := a.transport.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("join room %s: %w", a.projectID, err)
	}
	a.doc.Apply(snap...)
	if !a.doc.Empty() {
		a.logger.Debug("joined room", "project_id", a.projectID, "ops", len(snap))
		a.syncSelection()
		return nil
	}

	pctx, cancel := a.persistContext(ctx)
	p, err := a.backend.GetBoard(pctx, a.projectID)
	cancel()
	if err != nil {
		herr := engine.HydrationFailure(a.projectID, err)
		a.logger.Warn("room hydration failed", "project_id", a.projectID, "kind", herr.Kind, "error", err)
		return herr
	}
	models.SortBoard(p)
	ops, err := a.doc.Batch(func(tx *Tx) error { return Hydrate(tx, p) })
	if err != nil {
		return fmt.Errorf("hydrate room %s: %w", a.projectID, err)
	}
	a.logger.Info("hydrated room", "project_id", a.projectID, "ops", len(ops))
	return a.publish(ctx, ops)
}

// Run merges peer updates until ctx ends or the transport closes.
func (a *Adapter) Run(ctx context.Context) error {
	updates := a.transport.Updates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ops, ok := <-updates:
			if !ok {
				return nil
			}
			if a.doc.Apply(ops...) > 0 {
				a.syncSelection()
			}
		}
	}
}

// ============================================================================
// PLUMBING
// ============================================================================

func (a *Adapter) publish(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	if err := a.transport.Send(ctx, ops); err != nil {
		a.logger.Error("failed to share changes", "ops", len(ops), "error", err)
		a.notices.Warn("Changes could not be shared with collaborators")
		return fmt.Errorf("send %d ops: %w", len(ops), err)
	}
	return nil
}

func (a *Adapter) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func retryable(err error) bool {
	return errors.Is(err, persistence.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// persist runs fn with the retry policy. On final failure it logs and
// raises a notice; the shared tree keeps the write.
func (a *Adapter) persist(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	delay := a.backoff
	for attempt := 0; ; attempt++ {
		pctx, cancel := a.persistContext(ctx)
		err = fn(pctx)
		cancel()
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= a.retries {
			break
		}
		a.logger.Debug("retrying write", "op", op, "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(delay):
			delay *= 2
			continue
		}
		break
	}
	a.logger.Error("write not saved", "op", op, "project_id", a.projectID, "error", err)
	a.notices.Error("Failed to save " + op)
	return &engine.MutationError{Op: op, Err: err}
}

// create persists first; peers must only ever see authoritative ids.
func (a *Adapter) create(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	pctx, cancel := a.persistContext(ctx)
	err := fn(pctx)
	cancel()
	if err != nil {
		a.logger.Warn("create failed", "op", op, "error", err)
		a.notices.Error("Failed to " + op)
		return &engine.MutationError{Op: op, Err: err}
	}
	return nil
}

func (a *Adapter) view() (*models.Project, *Index, error) {
	p, idx := Materialize(a.doc)
	if p == nil {
		return nil, nil, engine.ErrNotLoaded
	}
	return p, idx, nil
}

// write commits fn to the shared tree and publishes the ops.
func (a *Adapter) write(ctx context.Context, fn func(tx *Tx) error) error {
	ops, err := a.doc.Batch(fn)
	perr := a.publish(ctx, ops)
	a.syncSelection()
	if err != nil {
		return err
	}
	if perr != nil {
		a.logger.Debug("write kept locally, queued for the room", "error", perr)
	}
	return nil
}

func (a *Adapter) syncSelection() {
	if p := a.Board(); p != nil {
		a.selection.Sync(p)
	}
}

// errNoRecord fails a create whose backend call returned neither a record
// nor an error.
var errNoRecord = errors.New("backend returned no record")

func missing[T ~string](kind string, id T) error {
	return &board.NotFoundError{Kind: kind, ID: string(id)}
}

// ============================================================================
// CARDS
// ============================================================================

// CreateCard creates a card on the server, then adds it to the shared tree.
func (a *Adapter) CreateCard(ctx context.Context, listID types.ListID, in engine.NewCard) (*models.Card, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	_, idx, err := a.view()
	if err != nil {
		return nil, err
	}
	if _, ok := idx.Cards[listID]; !ok {
		return nil, missing("list", listID)
	}

	var c *models.Card
	err = a.create(ctx, "create card", func(ctx context.Context) error {
		var err error
		c, err = a.backend.CreateCard(ctx, persistence.CreateCardRequest{
			ProjectID: a.projectID, ListID: listID, Title: strings.TrimSpace(in.Title),
			Description: in.Description, Priority: in.Priority, DueDate: in.DueDate,
		})
		if err == nil && c == nil {
			err = errNoRecord
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return c, a.write(ctx, func(tx *Tx) error {
		_, err := PutCard(tx, idx.Cards[listID], c)
		return err
	})
}

// UpdateCard writes scalar card fields.
func (a *Adapter) UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) error {
	if patch.ListID.Set {
		return &engine.ValidationError{Field: "list_id", Err: engine.ErrListChangeRequiresMove}
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.Title.Set {
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
	}
	p, idx, err := a.view()
	if err != nil {
		return err
	}
	loc, ok := board.FindCard(p, id)
	if !ok {
		return missing("card", id)
	}
	n := idx.Card[id]

	err = a.write(ctx, func(tx *Tx) error {
		if v, ok := patch.Title.Get(); ok {
			if err := tx.Set(n, "title", v); err != nil {
				return err
			}
		}
		if v, ok := patch.Description.Get(); ok {
			if err := tx.Set(n, "description", v); err != nil {
				return err
			}
		}
		if v, ok := patch.Priority.Get(); ok {
			if err := tx.Set(n, "priority", v); err != nil {
				return err
			}
		}
		if v, ok := patch.DueDate.Get(); ok {
			if err := tx.Set(n, "due_date", v); err != nil {
				return err
			}
		}
		if v, ok := patch.Position.Get(); ok {
			return tx.Move(n, idx.Cards[loc.List.ID], v)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return a.persist(ctx, "card", func(ctx context.Context) error {
		_, err := a.backend.UpdateCard(ctx, id, patch)
		return err
	})
}

// DeleteCard removes a card.
func (a *Adapter) DeleteCard(ctx context.Context, id types.CardID) error {
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	if _, ok := idx.Card[id]; !ok {
		return missing("card", id)
	}
	if err := a.write(ctx, func(tx *Tx) error { return DeleteCard(tx, idx, id) }); err != nil {
		return err
	}
	return a.persist(ctx, "card deletion", func(ctx context.Context) error {
		return a.backend.DeleteCard(ctx, id)
	})
}

// MoveCard repositions a card. A move into another list clones the card
// subtree under the destination and deletes the original.
func (a *Adapter) MoveCard(ctx context.Context, m dnd.CardMove) error {
	p, idx, err := a.view()
	if err != nil {
		return err
	}
	loc, ok := board.FindCard(p, m.CardID)
	if !ok {
		return missing("card", m.CardID)
	}
	_, dest, ok := board.FindList(p, m.ToList)
	if !ok {
		return missing("list", m.ToList)
	}

	pos := m.Position
	var respaced map[types.CardID]float64
	if m.Renumber {
		ids := make([]types.CardID, len(dest.Cards))
		for i, c := range dest.Cards {
			ids[i] = c.ID
		}
		respaced = dnd.Respace(ids, dest.CardPositions(), m.CardID, m.Index)
		pos = respaced[m.CardID]
		delete(respaced, m.CardID)
	}
	cross := loc.List.ID != m.ToList

	err = a.write(ctx, func(tx *Tx) error {
		if cross {
			if _, err := ReparentCard(tx, idx, loc.Card, m.ToList, pos); err != nil {
				return err
			}
		} else if err := tx.Move(idx.Card[m.CardID], idx.Cards[m.ToList], pos); err != nil {
			return err
		}
		for id, p := range respaced {
			if err := tx.Move(idx.Card[id], idx.Cards[m.ToList], p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	patch := models.CardPatch{Position: models.Some(pos)}
	if cross {
		patch.ListID = models.Some(m.ToList)
	}
	return a.persist(ctx, "card order", func(ctx context.Context) error {
		if _, err := a.backend.UpdateCard(ctx, m.CardID, patch); err != nil {
			return err
		}
		for id, p := range respaced {
			if _, err := a.backend.UpdateCard(ctx, id, models.CardPatch{Position: models.Some(p)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ============================================================================
// LISTS
// ============================================================================

// CreateList creates a list on the server, then adds it to the shared tree.
func (a *Adapter) CreateList(ctx context.Context, title string) (*models.List, error) {
	if err := models.ValidateTitle("title", title); err != nil {
		return nil, err
	}
	_, idx, err := a.view()
	if err != nil {
		return nil, err
	}
	var l *models.List
	err = a.create(ctx, "create list", func(ctx context.Context) error {
		var err error
		l, err = a.backend.CreateList(ctx, persistence.CreateListRequest{ProjectID: a.projectID, Title: strings.TrimSpace(title)})
		if err == nil && l == nil {
			err = errNoRecord
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if l.Cards == nil {
		l.Cards = []*models.Card{}
	}
	return l, a.write(ctx, func(tx *Tx) error {
		_, err := PutList(tx, idx.Lists, l)
		return err
	})
}

// RenameList changes a list's title.
func (a *Adapter) RenameList(ctx context.Context, id types.ListID, title string) error {
	if err := models.ValidateTitle("title", title); err != nil {
		return err
	}
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	n, ok := idx.List[id]
	if !ok {
		return missing("list", id)
	}
	title = strings.TrimSpace(title)
	if err := a.write(ctx, func(tx *Tx) error { return tx.Set(n, "title", title) }); err != nil {
		return err
	}
	return a.persist(ctx, "list title", func(ctx context.Context) error {
		_, err := a.backend.UpdateList(ctx, id, models.ListPatch{Title: models.Some(title)})
		return err
	})
}

// DeleteList removes a list and its cards.
func (a *Adapter) DeleteList(ctx context.Context, id types.ListID) error {
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	n, ok := idx.List[id]
	if !ok {
		return missing("list", id)
	}
	if err := a.write(ctx, func(tx *Tx) error { return tx.Delete(n) }); err != nil {
		return err
	}
	return a.persist(ctx, "list deletion", func(ctx context.Context) error {
		return a.backend.DeleteList(ctx, id)
	})
}

// MoveList repositions a list.
func (a *Adapter) MoveList(ctx context.Context, m dnd.ListMove) error {
	p, idx, err := a.view()
	if err != nil {
		return err
	}
	if _, ok := idx.List[m.ListID]; !ok {
		return missing("list", m.ListID)
	}
	pos := m.Position
	var respaced map[types.ListID]float64
	if m.Renumber {
		ids := make([]types.ListID, len(p.Lists))
		for i, l := range p.Lists {
			ids[i] = l.ID
		}
		respaced = dnd.Respace(ids, p.ListPositions(), m.ListID, m.Index)
		pos = respaced[m.ListID]
		delete(respaced, m.ListID)
	}

	err = a.write(ctx, func(tx *Tx) error {
		if err := tx.Move(idx.List[m.ListID], idx.Lists, pos); err != nil {
			return err
		}
		for id, p := range respaced {
			if err := tx.Move(idx.List[id], idx.Lists, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return a.persist(ctx, "list order", func(ctx context.Context) error {
		if _, err := a.backend.UpdateList(ctx, m.ListID, models.ListPatch{Position: models.Some(pos)}); err != nil {
			return err
		}
		for id, p := range respaced {
			if _, err := a.backend.UpdateList(ctx, id, models.ListPatch{Position: models.Some(p)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ============================================================================
// CHECKLISTS
// ============================================================================

// CreateChecklist creates a checklist on the server, then adds it to the tree.
func (a *Adapter) CreateChecklist(ctx context.Context, cardID types.CardID, title string) (*models.Checklist, error) {
	if err := models.ValidateTitle("title", title); err != nil {
		return nil, err
	}
	_, idx, err := a.view()
	if err != nil {
		return nil, err
	}
	parent, ok := idx.Checklists[cardID]
	if !ok {
		return nil, missing("card", cardID)
	}
	var cl *models.Checklist
	err = a.create(ctx, "create checklist", func(ctx context.Context) error {
		var err error
		cl, err = a.backend.CreateChecklist(ctx, persistence.CreateChecklistRequest{CardID: cardID, Title: strings.TrimSpace(title)})
		if err == nil && cl == nil {
			err = errNoRecord
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if cl.Items == nil {
		cl.Items = []*models.ChecklistItem{}
	}
	return cl, a.write(ctx, func(tx *Tx) error {
		_, err := PutChecklist(tx, parent, cl)
		return err
	})
}

// RenameChecklist changes a checklist's title.
func (a *Adapter) RenameChecklist(ctx context.Context, cardID types.CardID, id types.ChecklistID, title string) error {
	if err := models.ValidateTitle("title", title); err != nil {
		return err
	}
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	n, ok := idx.Checklist[id]
	if !ok {
		return missing("checklist", id)
	}
	title = strings.TrimSpace(title)
	if err := a.write(ctx, func(tx *Tx) error { return tx.Set(n, "title", title) }); err != nil {
		return err
	}
	return a.persist(ctx, "checklist title", func(ctx context.Context) error {
		_, err := a.backend.UpdateChecklist(ctx, id, models.ChecklistPatch{Title: models.Some(title)})
		return err
	})
}

// DeleteChecklist removes a checklist and its items.
func (a *Adapter) DeleteChecklist(ctx context.Context, cardID types.CardID, id types.ChecklistID) error {
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	n, ok := idx.Checklist[id]
	if !ok {
		return missing("checklist", id)
	}
	if err := a.write(ctx, func(tx *Tx) error { return tx.Delete(n) }); err != nil {
		return err
	}
	return a.persist(ctx, "checklist deletion", func(ctx context.Context) error {
		return a.backend.DeleteChecklist(ctx, id)
	})
}

// AddChecklistItem creates an item on the server, then adds it to the tree.
func (a *Adapter) AddChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, text string) (*models.ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &engine.ValidationError{Field: "text", Err: engine.ErrEmptyText}
	}
	_, idx, err := a.view()
	if err != nil {
		return nil, err
	}
	parent, ok := idx.Items[checklistID]
	if !ok {
		return nil, missing("checklist", checklistID)
	}
	var it *models.ChecklistItem
	err = a.create(ctx, "add checklist item", func(ctx context.Context) error {
		var err error
		it, err = a.backend.CreateChecklistItem(ctx, persistence.CreateChecklistItemRequest{ChecklistID: checklistID, Text: text})
		if err == nil && it == nil {
			err = errNoRecord
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return it, a.write(ctx, func(tx *Tx) error {
		_, err := PutItem(tx, parent, it)
		return err
	})
}

// UpdateChecklistItem toggles or edits an item.
func (a *Adapter) UpdateChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID, patch models.ChecklistItemPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	n, ok := idx.Item[id]
	if !ok {
		return missing("checklist item", id)
	}
	if patch.Text.Set {
		patch.Text.Value = strings.TrimSpace(patch.Text.Value)
	}
	err = a.write(ctx, func(tx *Tx) error {
		if v, ok := patch.Text.Get(); ok {
			if err := tx.Set(n, "text", v); err != nil {
				return err
			}
		}
		if v, ok := patch.IsDone.Get(); ok {
			if err := tx.Set(n, "is_done", v); err != nil {
				return err
			}
		}
		if v, ok := patch.Position.Get(); ok {
			return tx.Move(n, idx.Items[checklistID], v)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return a.persist(ctx, "checklist item", func(ctx context.Context) error {
		_, err := a.backend.UpdateChecklistItem(ctx, id, patch)
		return err
	})
}

// DeleteChecklistItem removes an item.
func (a *Adapter) DeleteChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID) error {
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	n, ok := idx.Item[id]
	if !ok {
		return missing("checklist item", id)
	}
	if err := a.write(ctx, func(tx *Tx) error { return tx.Delete(n) }); err != nil {
		return err
	}
	return a.persist(ctx, "checklist item deletion", func(ctx context.Context) error {
		return a.backend.DeleteChecklistItem(ctx, id)
	})
}

// ============================================================================
// COMMENTS AND PROJECT
// ============================================================================

// AddComment posts a comment, then prepends the server record to the feed.
func (a *Adapter) AddComment(ctx context.Context, cardID types.CardID, content string) (*models.Activity, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &engine.ValidationError{Field: "content", Err: engine.ErrEmptyContent}
	}
	_, idx, err := a.view()
	if err != nil {
		return nil, err
	}
	feed, ok := idx.Activity[cardID]
	if !ok {
		return nil, missing("card", cardID)
	}
	var act *models.Activity
	err = a.create(ctx, "add comment", func(ctx context.Context) error {
		var err error
		act, err = a.backend.CreateComment(ctx, persistence.CreateCommentRequest{CardID: cardID, Content: content})
		if err == nil && act == nil {
			err = errNoRecord
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if act.Username == "" {
		act.Username = models.GuestName
	}
	pos := headPos(a.doc, feed)
	return act, a.write(ctx, func(tx *Tx) error {
		_, err := PutActivity(tx, feed, act, pos)
		return err
	})
}

// UpdateProject writes project metadata.
func (a *Adapter) UpdateProject(ctx context.Context, patch models.ProjectPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.Name.Set {
		patch.Name.Value = strings.TrimSpace(patch.Name.Value)
	}
	_, idx, err := a.view()
	if err != nil {
		return err
	}
	err = a.write(ctx, func(tx *Tx) error {
		if v, ok := patch.Name.Get(); ok {
			if err := tx.Set(idx.Meta, "name", v); err != nil {
				return err
			}
		}
		if v, ok := patch.Course.Get(); ok {
			if err := tx.Set(idx.Meta, "course", v); err != nil {
				return err
			}
		}
		if v, ok := patch.DueDate.Get(); ok {
			return tx.Set(idx.Meta, "due_date", v)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return a.persist(ctx, "project", func(ctx context.Context) error {
		_, err := a.backend.UpdateProject(ctx, a.projectID, patch)
		return err
	})
}
