package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/position"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// FakeBackend is an in-memory persistence.Backend with the reference
// server's semantics (server ids, max+1 positions, cascading deletes) plus
// failure injection and call recording.
type FakeBackend struct {
	mu       sync.Mutex
	boards   map[types.ProjectID]*models.Project
	calls    []string
	failNext map[string]error
	failAll  map[string]error
	delays   map[string]time.Duration

	// Author is stamped on posted comments. Zero value posts as Guest.
	Author models.Assignee
	// Clock stamps comment times; defaults to time.Now.
	Clock func() time.Time
}

var (
	_ persistence.Backend   = (*FakeBackend)(nil)
	_ persistence.Directory = (*FakeBackend)(nil)
)

// NewFakeBackend returns a backend holding deep copies of the given boards.
func NewFakeBackend(boards ...*models.Project) *FakeBackend {
	f := &FakeBackend{
		boards:   make(map[types.ProjectID]*models.Project),
		failNext: make(map[string]error),
		failAll:  make(map[string]error),
		delays:   make(map[string]time.Duration),
		Clock:    time.Now,
	}
	for _, b := range boards {
		f.boards[b.ID] = Clone(b)
	}
	return f
}

// ErrInjected is the default failure returned by FailNext/FailAlways.
var ErrInjected = &persistence.Error{Op: "injected", Status: http.StatusInternalServerError, Message: "injected failure"}

// FailNext makes the next call to op fail with err (ErrInjected when nil).
// op is the method name, e.g. "UpdateCard".
func (f *FakeBackend) FailNext(op string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext[op] = err
}

// FailAlways makes every call to op fail until Reset.
func (f *FakeBackend) FailAlways(op string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll[op] = err
}

// Delay makes op wait d (or until its context ends) before running.
func (f *FakeBackend) Delay(op string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[op] = d
}

// Reset clears injected failures and delays.
func (f *FakeBackend) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = make(map[string]error)
	f.failAll = make(map[string]error)
	f.delays = make(map[string]time.Duration)
}

// Calls returns the recorded method names in call order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times op was called.
func (f *FakeBackend) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Board returns a deep copy of the stored board.
func (f *FakeBackend) Board(id types.ProjectID) *models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return nil
	}
	return Clone(b)
}

// enter records the call and applies injected faults. On success it returns
// with f.mu held; the caller must unlock.
func (f *FakeBackend) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	delay := f.delays[op]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &persistence.Error{Op: op, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	if err, ok := f.failNext[op]; ok {
		delete(f.failNext, op)
		f.mu.Unlock()
		return err
	}
	if err, ok := f.failAll[op]; ok {
		f.mu.Unlock()
		return err
	}
	return nil
}

func notFound(op, what string) error {
	return &persistence.Error{Op: op, Status: http.StatusNotFound, Message: what + " not found"}
}

func invalid(op string, err error) error {
	return &persistence.Error{Op: op, Status: http.StatusBadRequest, Message: err.Error()}
}

func newID() string { return uuid.NewString() }

// ============================================================================
// LOOKUPS (f.mu held)
// ============================================================================

func (f *FakeBackend) findList(id types.ListID) (*models.Project, int, *models.List) {
	for _, b := range f.boards {
		for i, l := range b.Lists {
			if l.ID == id {
				return b, i, l
			}
		}
	}
	return nil, -1, nil
}

func (f *FakeBackend) findCard(id types.CardID) (*models.List, int, *models.Card) {
	for _, b := range f.boards {
		for _, l := range b.Lists {
			for i, c := range l.Cards {
				if c.ID == id {
					return l, i, c
				}
			}
		}
	}
	return nil, -1, nil
}

func (f *FakeBackend) findChecklist(id types.ChecklistID) (*models.Card, int, *models.Checklist) {
	for _, b := range f.boards {
		for _, l := range b.Lists {
			for _, c := range l.Cards {
				for i, cl := range c.Checklists {
					if cl.ID == id {
						return c, i, cl
					}
				}
			}
		}
	}
	return nil, -1, nil
}

func (f *FakeBackend) findItem(id types.ItemID) (*models.Checklist, int, *models.ChecklistItem) {
	for _, b := range f.boards {
		for _, l := range b.Lists {
			for _, c := range l.Cards {
				for _, cl := range c.Checklists {
					for i, it := range cl.Items {
						if it.ID == id {
							return cl, i, it
						}
					}
				}
			}
		}
	}
	return nil, -1, nil
}

// ============================================================================
// PROJECTS
// ============================================================================

func (f *FakeBackend) ListProjects(ctx context.Context) ([]*models.ProjectSummary, error) {
	if err := f.enter(ctx, "ListProjects"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	out := make([]*models.ProjectSummary, 0, len(f.boards))
	for _, b := range f.boards {
		out = append(out, &models.ProjectSummary{ID: b.ID, Name: b.Name, Course: b.Course, DueDate: b.DueDate, Role: "owner"})
	}
	return out, nil
}

func (f *FakeBackend) CreateProject(ctx context.Context, req persistence.CreateProjectRequest) (*models.ProjectSummary, error) {
	if err := f.enter(ctx, "CreateProject"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("create project", models.ErrEmptyName)
	}
	p := &models.Project{ID: types.ProjectID(newID()), Name: req.Title, Course: req.Course, DueDate: req.DueDate, Lists: []*models.List{}}
	f.boards[p.ID] = p
	return &models.ProjectSummary{ID: p.ID, Name: p.Name, Course: p.Course, DueDate: p.DueDate, Role: "owner"}, nil
}

func (f *FakeBackend) GetBoard(ctx context.Context, id types.ProjectID) (*models.Project, error) {
	if err := f.enter(ctx, "GetBoard"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return nil, notFound("load board", "project")
	}
	return Clone(b), nil
}

func (f *FakeBackend) UpdateProject(ctx context.Context, id types.ProjectID, patch models.ProjectPatch) (*models.Project, error) {
	if err := f.enter(ctx, "UpdateProject"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return nil, notFound("update project", "project")
	}
	if err := patch.Validate(); err != nil {
		return nil, invalid("update project", err)
	}
	updated := patch.Apply(b)
	f.boards[id] = updated
	out := Clone(updated)
	out.Lists = nil
	return out, nil
}

func (f *FakeBackend) DeleteProject(ctx context.Context, id types.ProjectID) error {
	if err := f.enter(ctx, "DeleteProject"); err != nil {
		return err
	}
	defer f.mu.Unlock()
	if _, ok := f.boards[id]; !ok {
		return notFound("delete project", "project")
	}
	delete(f.boards, id)
	return nil
}

// ============================================================================
// LISTS
// ============================================================================

func (f *FakeBackend) CreateList(ctx context.Context, req persistence.CreateListRequest) (*models.List, error) {
	if err := f.enter(ctx, "CreateList"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	b, ok := f.boards[req.ProjectID]
	if !ok {
		return nil, notFound("create list", "project")
	}
	if err := models.ValidateTitle("title", req.Title); err != nil {
		return nil, invalid("create list", err)
	}
	l := &models.List{
		ID:       types.ListID(newID()),
		Title:    strings.TrimSpace(req.Title),
		Position: position.Append(b.ListPositions()),
		Cards:    []*models.Card{},
	}
	b.Lists = append(b.Lists, l)
	return cloneJSON(l), nil
}

func (f *FakeBackend) UpdateList(ctx context.Context, id types.ListID, patch models.ListPatch) (*models.List, error) {
	if err := f.enter(ctx, "UpdateList"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	b, i, l := f.findList(id)
	if l == nil {
		return nil, notFound("update list", "list")
	}
	if err := patch.Validate(); err != nil {
		return nil, invalid("update list", err)
	}
	b.Lists[i] = patch.Apply(l)
	out := cloneJSON(b.Lists[i])
	out.Cards = nil
	return out, nil
}

func (f *FakeBackend) DeleteList(ctx context.Context, id types.ListID) error {
	if err := f.enter(ctx, "DeleteList"); err != nil {
		return err
	}
	defer f.mu.Unlock()
	b, i, _ := f.findList(id)
	if b == nil {
		return notFound("delete list", "list")
	}
	b.Lists = append(b.Lists[:i], b.Lists[i+1:]...)
	return nil
}

// ============================================================================
// CARDS
// ============================================================================

func (f *FakeBackend) CreateCard(ctx context.Context, req persistence.CreateCardRequest) (*models.Card, error) {
	if err := f.enter(ctx, "CreateCard"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	_, _, l := f.findList(req.ListID)
	if l == nil {
		return nil, notFound("create card", "list")
	}
	if err := models.ValidateTitle("title", req.Title); err != nil {
		return nil, invalid("create card", err)
	}
	c := &models.Card{
		ID:          types.CardID(newID()),
		ListID:      req.ListID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Position:    position.Append(l.CardPositions()),
	}
	c.Normalize()
	l.Cards = append(l.Cards, c)
	return cloneJSON(c), nil
}

func (f *FakeBackend) UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) (*models.Card, error) {
	if err := f.enter(ctx, "UpdateCard"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	l, i, c := f.findCard(id)
	if c == nil {
		return nil, notFound("update card", "card")
	}
	if err := patch.Validate(); err != nil {
		return nil, invalid("update card", err)
	}
	updated := patch.Apply(c)
	if updated.ListID != l.ID {
		_, _, dest := f.findList(updated.ListID)
		if dest == nil {
			return nil, notFound("update card", "list")
		}
		l.Cards = append(l.Cards[:i], l.Cards[i+1:]...)
		dest.Cards = append(dest.Cards, updated)
	} else {
		l.Cards[i] = updated
	}
	return cloneJSON(updated), nil
}

func (f *FakeBackend) DeleteCard(ctx context.Context, id types.CardID) error {
	if err := f.enter(ctx, "DeleteCard"); err != nil {
		return err
	}
	defer f.mu.Unlock()
	l, i, _ := f.findCard(id)
	if l == nil {
		return notFound("delete card", "card")
	}
	l.Cards = append(l.Cards[:i], l.Cards[i+1:]...)
	return nil
}

// ============================================================================
// CHECKLISTS
// ============================================================================

func (f *FakeBackend) CreateChecklist(ctx context.Context, req persistence.CreateChecklistRequest) (*models.Checklist, error) {
	if err := f.enter(ctx, "CreateChecklist"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	_, _, c := f.findCard(req.CardID)
	if c == nil {
		return nil, notFound("create checklist", "card")
	}
	cl := &models.Checklist{
		ID:       types.ChecklistID(newID()),
		Title:    req.Title,
		Position: position.Append(c.ChecklistPositions()),
		Items:    []*models.ChecklistItem{},
	}
	c.Checklists = append(c.Checklists, cl)
	return cloneJSON(cl), nil
}

func (f *FakeBackend) UpdateChecklist(ctx context.Context, id types.ChecklistID, patch models.ChecklistPatch) (*models.Checklist, error) {
	if err := f.enter(ctx, "UpdateChecklist"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	c, i, cl := f.findChecklist(id)
	if cl == nil {
		return nil, notFound("update checklist", "checklist")
	}
	c.Checklists[i] = patch.Apply(cl)
	return cloneJSON(c.Checklists[i]), nil
}

func (f *FakeBackend) DeleteChecklist(ctx context.Context, id types.ChecklistID) error {
	if err := f.enter(ctx, "DeleteChecklist"); err != nil {
		return err
	}
	defer f.mu.Unlock()
	c, i, _ := f.findChecklist(id)
	if c == nil {
		return notFound("delete checklist", "checklist")
	}
	c.Checklists = append(c.Checklists[:i], c.Checklists[i+1:]...)
	return nil
}

func (f *FakeBackend) CreateChecklistItem(ctx context.Context, req persistence.CreateChecklistItemRequest) (*models.ChecklistItem, error) {
	if err := f.enter(ctx, "CreateChecklistItem"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	_, _, cl := f.findChecklist(req.ChecklistID)
	if cl == nil {
		return nil, notFound("create checklist item", "checklist")
	}
	it := &models.ChecklistItem{
		ID:       types.ItemID(newID()),
		Text:     req.Text,
		Position: position.Append(cl.ItemPositions()),
	}
	cl.Items = append(cl.Items, it)
	return cloneJSON(it), nil
}

func (f *FakeBackend) UpdateChecklistItem(ctx context.Context, id types.ItemID, patch models.ChecklistItemPatch) (*models.ChecklistItem, error) {
	if err := f.enter(ctx, "UpdateChecklistItem"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	cl, i, it := f.findItem(id)
	if it == nil {
		return nil, notFound("update checklist item", "item")
	}
	cl.Items[i] = patch.Apply(it)
	return cloneJSON(cl.Items[i]), nil
}

func (f *FakeBackend) DeleteChecklistItem(ctx context.Context, id types.ItemID) error {
	if err := f.enter(ctx, "DeleteChecklistItem"); err != nil {
		return err
	}
	defer f.mu.Unlock()
	cl, i, _ := f.findItem(id)
	if cl == nil {
		return notFound("delete checklist item", "item")
	}
	cl.Items = append(cl.Items[:i], cl.Items[i+1:]...)
	return nil
}

// ============================================================================
// COMMENTS
// ============================================================================

func (f *FakeBackend) CreateComment(ctx context.Context, req persistence.CreateCommentRequest) (*models.Activity, error) {
	if err := f.enter(ctx, "CreateComment"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	_, _, c := f.findCard(req.CardID)
	if c == nil {
		return nil, notFound("post comment", "card")
	}
	name := f.Author.Username
	if name == "" {
		name = models.GuestName
	}
	a := &models.Activity{
		ID:        types.ActivityID(newID()),
		UserID:    f.Author.UserID,
		Type:      models.ActivityComment,
		Content:   req.Content,
		CreatedAt: f.Clock().UTC(),
		Username:  name,
		AvatarURL: f.Author.AvatarURL,
	}
	c.Activity = append([]*models.Activity{a}, c.Activity...)
	return cloneJSON(a), nil
}

// ============================================================================
// CLONING
// ============================================================================

// Clone deep-copies a board through its JSON form.
func Clone(p *models.Project) *models.Project {
	return cloneJSON(p)
}

func cloneJSON[T any](v *T) *T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: clone marshal: %v", err))
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("testutil: clone unmarshal: %v", err))
	}
	return &out
}

// IsInjected reports whether err is the default injected failure.
func IsInjected(err error) bool {
	return errors.Is(err, ErrInjected)
}
