package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/notify"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func setup(t *testing.T, opts ...Option) (*Engine, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend(testutil.SampleBoard())
	e := New(board.NewStore(), backend, opts...)
	require.NoError(t, e.Load(context.Background(), testutil.ProjectID))
	return e, backend
}

func card(t *testing.T, e *Engine, id types.CardID) *models.Card {
	t.Helper()
	loc, ok := board.FindCard(e.Board(), id)
	require.True(t, ok, "card %s not on board", id)
	return loc.Card
}

// peek is safe to call from Eventually conditions.
func peek(e *Engine, id types.CardID) *models.Card {
	if loc, ok := board.FindCard(e.Board(), id); ok {
		return loc.Card
	}
	return nil
}

func titles(l *models.List) []string {
	out := make([]string, len(l.Cards))
	for i, c := range l.Cards {
		out[i] = c.Title
	}
	return out
}

func noTempIDs(t *testing.T, p *models.Project) {
	t.Helper()
	for _, l := range p.Lists {
		assert.False(t, types.IsTemp(l.ID), "list %s", l.ID)
		for _, c := range l.Cards {
			assert.False(t, types.IsTemp(c.ID), "card %s", c.ID)
			for _, cl := range c.Checklists {
				assert.False(t, types.IsTemp(cl.ID), "checklist %s", cl.ID)
				for _, it := range cl.Items {
					assert.False(t, types.IsTemp(it.ID), "item %s", it.ID)
				}
			}
			for _, a := range c.Activity {
				assert.False(t, types.IsTemp(a.ID), "activity %s", a.ID)
			}
		}
	}
}

func lastNotice(t *testing.T, e *Engine) notify.Notice {
	t.Helper()
	n, ok := e.Notices().Last()
	require.True(t, ok, "expected a notice")
	return n
}

// ============================================================================
// HYDRATION
// ============================================================================

func TestLoadInstallsSortedBoard(t *testing.T) {
	e, _ := setup(t)

	state, herr := e.State()
	assert.Equal(t, StateReady, state)
	assert.Nil(t, herr)
	assert.Equal(t, testutil.ProjectID, e.ProjectID())
	assert.Equal(t, []string{"Draft outline", "Collect data", "Book room"}, titles(e.Board().Lists[0]))
}

func TestLoadClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		inject   error
		id       types.ProjectID
		want     HydrationKind
		redirect bool
	}{
		{"missing project", nil, "nope", HydrationNotFound, true},
		{"unauthorized", &persistence.Error{Op: "load board", Status: 401}, testutil.ProjectID, HydrationUnauthorized, true},
		{"forbidden", &persistence.Error{Op: "load board", Status: 403}, testutil.ProjectID, HydrationUnauthorized, true},
		{"server error", testutil.ErrInjected, testutil.ProjectID, HydrationFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewFakeBackend(testutil.SampleBoard())
			if tt.inject != nil {
				backend.FailNext("GetBoard", tt.inject)
			}
			e := New(board.NewStore(), backend)

			err := e.Load(context.Background(), tt.id)

			var herr *HydrationError
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, tt.want, herr.Kind)
			assert.Equal(t, tt.redirect, herr.Kind.Redirect())
			state, _ := e.State()
			assert.Equal(t, StateFailed, state)
			assert.Nil(t, e.Board())
		})
	}
}

func TestMutationsBeforeLoadFail(t *testing.T) {
	e := New(board.NewStore(), testutil.NewFakeBackend())

	_, err := e.CreateList(context.Background(), "Todo")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

// ============================================================================
// CARDS
// ============================================================================

func TestCreateCardReplacesPlaceholder(t *testing.T) {
	e, backend := setup(t)
	high := models.PriorityHigh

	created, err := e.CreateCard(context.Background(), testutil.TodoListID, NewCard{Title: "  Write intro ", Priority: &high})
	require.NoError(t, err)

	assert.False(t, types.IsTemp(created.ID))
	assert.Equal(t, "Write intro", created.Title)
	assert.Equal(t, 4.0, created.Position)
	assert.NotNil(t, created.Checklists)

	todo := e.Board().Lists[0]
	require.Len(t, todo.Cards, 4)
	assert.Equal(t, created.ID, todo.Cards[3].ID)
	noTempIDs(t, e.Board())
	assert.NotNil(t, backend.Board(testutil.ProjectID).List(testutil.TodoListID).Card(created.ID))
}

func TestCreateCardFailureRemovesPlaceholder(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("CreateCard", nil)

	_, err := e.CreateCard(context.Background(), testutil.TodoListID, NewCard{Title: "Write intro"})

	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "create card", merr.Op)
	assert.True(t, testutil.IsInjected(err))
	assert.Len(t, e.Board().Lists[0].Cards, 3)
	n := lastNotice(t, e)
	assert.Equal(t, notify.LevelError, n.Level)
	assert.Equal(t, "Failed to create card", n.Message)
}

func TestValidationNeverReachesBackend(t *testing.T) {
	e, backend := setup(t)
	ctx := context.Background()
	bad := models.Priority("urgent")
	before := e.Board()

	tests := []struct {
		name string
		run  func() error
	}{
		{"blank card title", func() error {
			_, err := e.CreateCard(ctx, testutil.TodoListID, NewCard{Title: "   "})
			return err
		}},
		{"invalid priority", func() error {
			_, err := e.CreateCard(ctx, testutil.TodoListID, NewCard{Title: "x", Priority: &bad})
			return err
		}},
		{"empty patch", func() error { return e.UpdateCard(ctx, testutil.CardA, models.CardPatch{}) }},
		{"blank list title", func() error {
			_, err := e.CreateList(ctx, "")
			return err
		}},
		{"blank item text", func() error {
			_, err := e.AddChecklistItem(ctx, testutil.CardA, testutil.ChecklistID, " ")
			return err
		}},
		{"blank comment", func() error {
			_, err := e.AddComment(ctx, testutil.CardA, "")
			return err
		}},
		{"blank project name", func() error {
			return e.UpdateProject(ctx, models.ProjectPatch{Name: models.Some("")})
		}},
		{"list change through update", func() error {
			return e.UpdateCard(ctx, testutil.CardA, models.CardPatch{ListID: models.Some(testutil.DoneListID)})
		}},
		{"pending card", func() error {
			return e.UpdateCard(ctx, types.CardID(types.NewTempID()), models.CardPatch{Title: models.Some("x")})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	assert.Empty(t, backend.Calls()[1:], "only the initial GetBoard should have been sent")
	assert.Same(t, before, e.Board())
	_, ok := e.Notices().Last()
	assert.False(t, ok)
}

func TestUpdateCardMissingTargetAppliesNothing(t *testing.T) {
	e, backend := setup(t)

	err := e.UpdateCard(context.Background(), "ghost", models.CardPatch{Title: models.Some("x")})

	assert.ErrorIs(t, err, board.ErrNotFound)
	assert.Equal(t, 0, backend.CallCount("UpdateCard"))
}

func TestUpdateCardSendsOnlyChangedFields(t *testing.T) {
	e, backend := setup(t)
	desc := "new body"

	err := e.UpdateCard(context.Background(), testutil.CardA, models.CardPatch{Description: models.Some(&desc)})
	require.NoError(t, err)

	stored := backend.Board(testutil.ProjectID).List(testutil.TodoListID).Card(testutil.CardA)
	assert.Equal(t, "new body", *stored.Description)
	assert.Equal(t, "Draft outline", stored.Title)
	assert.Equal(t, models.PriorityHigh, *stored.Priority)
}

func TestUpdateCardRollbackRestoresEveryField(t *testing.T) {
	e, backend := setup(t)
	before := card(t, e, testutil.CardA)
	backend.FailNext("UpdateCard", nil)
	low := models.PriorityLow

	err := e.UpdateCard(context.Background(), testutil.CardA, models.CardPatch{
		Title:    models.Some("Renamed"),
		Priority: models.Some(&low),
	})
	require.Error(t, err)

	after := card(t, e, testutil.CardA)
	assert.Equal(t, before, after)
	assert.Equal(t, "Failed to update card", lastNotice(t, e).Message)
}

func TestRollbackKeepsInterveningCommits(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("UpdateCard", nil)
	backend.Delay("UpdateCard", 200*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- e.UpdateCard(context.Background(), testutil.CardA, models.CardPatch{Title: models.Some("Renamed")})
	}()

	// wait for the optimistic title to land
	require.Eventually(t, func() bool {
		c := peek(e, testutil.CardA)
		return c != nil && c.Title == "Renamed"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, e.RenameList(context.Background(), testutil.DoneListID, "Shipped"))
	require.Error(t, <-done)

	assert.Equal(t, "Draft outline", card(t, e, testutil.CardA).Title)
	assert.Equal(t, "Shipped", e.Board().List(testutil.DoneListID).Title)
}

func TestUpdateCardTimeoutRollsBack(t *testing.T) {
	e, backend := setup(t, WithTimeout(20*time.Millisecond))
	backend.Delay("UpdateCard", time.Second)

	err := e.UpdateCard(context.Background(), testutil.CardA, models.CardPatch{Title: models.Some("Renamed")})

	require.Error(t, err)
	assert.True(t, persistence.IsTimeout(err))
	assert.Equal(t, "Draft outline", card(t, e, testutil.CardA).Title)
}

func TestDeleteCardRollbackRestoresOrder(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("DeleteCard", nil)

	require.Error(t, e.DeleteCard(context.Background(), testutil.CardB))

	assert.Equal(t, []string{"Draft outline", "Collect data", "Book room"}, titles(e.Board().Lists[0]))
}

func TestDeleteSelectedCardClosesSelection(t *testing.T) {
	e, _ := setup(t)
	e.Selection().Open(testutil.CardB, "Todo")

	require.NoError(t, e.DeleteCard(context.Background(), testutil.CardB))

	_, _, open := e.Selection().Selected()
	assert.False(t, open)
}

// ============================================================================
// MOVES
// ============================================================================

func TestMoveCardAcrossLists(t *testing.T) {
	e, backend := setup(t)
	e.Selection().Open(testutil.CardB, "Todo")

	err := e.MoveCard(context.Background(), dnd.CardMove{
		CardID: testutil.CardB, FromList: testutil.TodoListID, ToList: testutil.DoneListID, Index: 0, Position: 1,
	})
	require.NoError(t, err)

	done := e.Board().List(testutil.DoneListID)
	require.Len(t, done.Cards, 1)
	assert.Equal(t, testutil.DoneListID, done.Cards[0].ListID)
	_, title, _ := e.Selection().Selected()
	assert.Equal(t, "Done", title)

	stored := backend.Board(testutil.ProjectID).List(testutil.DoneListID).Card(testutil.CardB)
	require.NotNil(t, stored)
	assert.Equal(t, 1.0, stored.Position)
}

func TestMoveCardFailureWarnsAndRestores(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("UpdateCard", nil)

	err := e.MoveCard(context.Background(), dnd.CardMove{
		CardID: testutil.CardC, FromList: testutil.TodoListID, ToList: testutil.TodoListID, Index: 0, Position: 0.5,
	})
	require.Error(t, err)

	assert.Equal(t, []string{"Draft outline", "Collect data", "Book room"}, titles(e.Board().Lists[0]))
	n := lastNotice(t, e)
	assert.Equal(t, notify.LevelWarning, n.Level)
	assert.Contains(t, n.Message, "order may need a refresh")
}

func TestMoveRollbackAfterInterveningDeleteKeepsOrder(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("UpdateCard", nil)
	backend.Delay("UpdateCard", 200*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- e.MoveCard(context.Background(), dnd.CardMove{
			CardID: testutil.CardB, FromList: testutil.TodoListID, ToList: testutil.DoneListID, Index: 0, Position: 1,
		})
	}()
	require.Eventually(t, func() bool {
		return len(e.Board().List(testutil.DoneListID).Cards) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, e.DeleteCard(context.Background(), testutil.CardA))
	require.Error(t, <-done)

	assert.Equal(t, []string{"Collect data", "Book room"}, titles(e.Board().List(testutil.TodoListID)))
	assert.Empty(t, e.Board().List(testutil.DoneListID).Cards)
}

func TestMoveCardRenumberRespacesList(t *testing.T) {
	e, backend := setup(t)

	err := e.MoveCard(context.Background(), dnd.CardMove{
		CardID: testutil.CardC, FromList: testutil.TodoListID, ToList: testutil.TodoListID, Index: 1, Position: 1.5, Renumber: true,
	})
	require.NoError(t, err)

	todo := e.Board().Lists[0]
	assert.Equal(t, []string{"Draft outline", "Book room", "Collect data"}, titles(todo))
	for i, c := range todo.Cards {
		assert.Equal(t, float64(i+1), c.Position)
	}
	// A keeps position 1, so only C and B are written
	assert.Equal(t, 2, backend.CallCount("UpdateCard"))
}

func TestMoveListFailureRestores(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("UpdateList", nil)

	err := e.MoveList(context.Background(), dnd.ListMove{ListID: testutil.DoneListID, Index: 0, Position: 0.5})
	require.Error(t, err)

	assert.Equal(t, testutil.TodoListID, e.Board().Lists[0].ID)
	assert.Equal(t, 2.0, e.Board().Lists[1].Position)
}

// ============================================================================
// LISTS
// ============================================================================

func TestCreateListAppends(t *testing.T) {
	e, _ := setup(t)

	l, err := e.CreateList(context.Background(), "Review")
	require.NoError(t, err)

	assert.Equal(t, 3.0, l.Position)
	require.Len(t, e.Board().Lists, 3)
	assert.Equal(t, l.ID, e.Board().Lists[2].ID)
	assert.NotNil(t, e.Board().Lists[2].Cards)
	noTempIDs(t, e.Board())
}

func TestDeleteListRollbackRestoresCards(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("DeleteList", nil)

	require.Error(t, e.DeleteList(context.Background(), testutil.TodoListID))

	todo := e.Board().List(testutil.TodoListID)
	require.NotNil(t, todo)
	assert.Len(t, todo.Cards, 3)
	assert.Equal(t, testutil.TodoListID, e.Board().Lists[0].ID)
}

// ============================================================================
// CHECKLISTS
// ============================================================================

func TestChecklistLifecycle(t *testing.T) {
	e, backend := setup(t)
	ctx := context.Background()

	cl, err := e.CreateChecklist(ctx, testutil.CardB, "QA")
	require.NoError(t, err)
	it, err := e.AddChecklistItem(ctx, testutil.CardB, cl.ID, "Check totals")
	require.NoError(t, err)
	require.NoError(t, e.UpdateChecklistItem(ctx, testutil.CardB, cl.ID, it.ID, models.ChecklistItemPatch{IsDone: models.Some(true)}))
	require.NoError(t, e.RenameChecklist(ctx, testutil.CardB, cl.ID, "Quality"))

	local := card(t, e, testutil.CardB).Checklist(cl.ID)
	require.NotNil(t, local)
	assert.Equal(t, "Quality", local.Title)
	done, total := local.Progress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, total)
	noTempIDs(t, e.Board())

	stored := backend.Board(testutil.ProjectID).List(testutil.TodoListID).Card(testutil.CardB).Checklist(cl.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.Items[0].IsDone)
}

func TestToggleItemRollback(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("UpdateChecklistItem", nil)

	err := e.UpdateChecklistItem(context.Background(), testutil.CardA, testutil.ChecklistID, testutil.ItemOne,
		models.ChecklistItemPatch{IsDone: models.Some(true)})
	require.Error(t, err)

	cl := card(t, e, testutil.CardA).Checklist(testutil.ChecklistID)
	assert.False(t, cl.Item(testutil.ItemOne).IsDone)
	assert.Equal(t, "Failed to update checklist item", lastNotice(t, e).Message)
}

func TestDeleteChecklistItemUnknownChecklist(t *testing.T) {
	e, _ := setup(t)

	err := e.DeleteChecklistItem(context.Background(), testutil.CardA, "nope", testutil.ItemOne)

	assert.ErrorIs(t, err, board.ErrNotFound)
}

func TestAddItemAppendsAfterLast(t *testing.T) {
	e, _ := setup(t)

	it, err := e.AddChecklistItem(context.Background(), testutil.CardA, testutil.ChecklistID, "Proofread")
	require.NoError(t, err)

	assert.Equal(t, 3.0, it.Position)
	items := card(t, e, testutil.CardA).Checklist(testutil.ChecklistID).Items
	require.Len(t, items, 3)
	assert.Equal(t, it.ID, items[2].ID)
}

func TestDeleteChecklistRollbackRestoresItems(t *testing.T) {
	e, backend := setup(t)
	before := card(t, e, testutil.CardA).Checklist(testutil.ChecklistID)
	backend.FailNext("DeleteChecklist", nil)

	require.Error(t, e.DeleteChecklist(context.Background(), testutil.CardA, testutil.ChecklistID))

	after := card(t, e, testutil.CardA).Checklist(testutil.ChecklistID)
	require.NotNil(t, after)
	assert.Equal(t, before, after)
	assert.Equal(t, testutil.ItemOne, after.Items[0].ID)
	assert.Equal(t, testutil.ItemTwo, after.Items[1].ID)
}

func TestCreateUpdateDeleteLeavesListLength(t *testing.T) {
	e, _ := setup(t)
	ctx := context.Background()

	c, err := e.CreateCard(ctx, testutil.DoneListID, NewCard{Title: "Temp"})
	require.NoError(t, err)
	require.NoError(t, e.UpdateCard(ctx, c.ID, models.CardPatch{Title: models.Some("Temp 2")}))
	require.NoError(t, e.DeleteCard(ctx, c.ID))

	assert.Empty(t, e.Board().List(testutil.DoneListID).Cards)
}

// ============================================================================
// COMMENTS
// ============================================================================

func TestAddCommentPrependsServerRecord(t *testing.T) {
	author := models.Assignee{UserID: "u2", Username: "ben"}
	e, backend := setup(t, WithAuthor(author))
	backend.Author = author

	a, err := e.AddComment(context.Background(), testutil.CardA, "looks good")
	require.NoError(t, err)

	feed := card(t, e, testutil.CardA).Activity
	require.Len(t, feed, 2)
	assert.Equal(t, a.ID, feed[0].ID)
	assert.Equal(t, "ben", feed[0].Username)
	assert.Equal(t, testutil.CommentID, feed[1].ID)
	noTempIDs(t, e.Board())
}

func TestCommentOnEmptyFeed(t *testing.T) {
	e, _ := setup(t)

	_, err := e.AddComment(context.Background(), testutil.CardC, "nice work")
	require.NoError(t, err)

	feed := card(t, e, testutil.CardC).Activity
	require.Len(t, feed, 1)
	assert.Equal(t, models.ActivityComment, feed[0].Type)
	assert.Equal(t, "nice work", feed[0].Content)
}

func TestAddCommentPlaceholderFallsBackToGuest(t *testing.T) {
	e, backend := setup(t)
	backend.Delay("CreateComment", 100*time.Millisecond)
	backend.FailNext("CreateComment", nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.AddComment(context.Background(), testutil.CardB, "hi")
		done <- err
	}()

	require.Eventually(t, func() bool {
		c := peek(e, testutil.CardB)
		return c != nil && len(c.Activity) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.GuestName, card(t, e, testutil.CardB).Activity[0].Username)

	require.Error(t, <-done)
	assert.Empty(t, card(t, e, testutil.CardB).Activity)
}

// ============================================================================
// PROJECT
// ============================================================================

func TestUpdateProjectClearsCourse(t *testing.T) {
	e, backend := setup(t)

	require.NoError(t, e.UpdateProject(context.Background(), models.ProjectPatch{Course: models.Null[string]()}))

	assert.Nil(t, e.Board().Course)
	assert.Nil(t, backend.Board(testutil.ProjectID).Course)
}

func TestUpdateProjectRollback(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("UpdateProject", nil)

	require.Error(t, e.UpdateProject(context.Background(), models.ProjectPatch{Name: models.Some("Thesis")}))

	assert.Equal(t, "Capstone", e.Board().Name)
}

func TestDeleteProjectEndsSession(t *testing.T) {
	e, backend := setup(t)

	require.NoError(t, e.DeleteProject(context.Background()))

	assert.Nil(t, e.Board())
	assert.Nil(t, backend.Board(testutil.ProjectID))
	state, _ := e.State()
	assert.Equal(t, StateIdle, state)
}

func TestDeleteProjectFailureKeepsBoard(t *testing.T) {
	e, backend := setup(t)
	backend.FailNext("DeleteProject", nil)

	err := e.DeleteProject(context.Background())

	var merr *MutationError
	require.True(t, errors.As(err, &merr))
	assert.NotNil(t, e.Board())
	assert.Equal(t, "Failed to delete project", lastNotice(t, e).Message)
}
