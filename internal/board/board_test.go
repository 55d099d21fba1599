package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func sampleBoard() *models.Project {
	return &models.Project{
		ID:   "p1",
		Name: "Capstone",
		Lists: []*models.List{
			{ID: "l1", Title: "Todo", Position: 1, Cards: []*models.Card{
				{ID: "c1", ListID: "l1", Title: "A", Position: 1, Checklists: []*models.Checklist{
					{ID: "k1", Title: "Steps", Position: 1, Items: []*models.ChecklistItem{
						{ID: "i1", Text: "one", Position: 1},
					}},
				}},
				{ID: "c2", ListID: "l1", Title: "B", Position: 2},
				{ID: "c3", ListID: "l1", Title: "C", Position: 3},
			}},
			{ID: "l2", Title: "Done", Position: 2, Cards: []*models.Card{
				{ID: "c4", ListID: "l2", Title: "D", Position: 1},
			}},
		},
	}
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Load(sampleBoard()))
	return s
}

func cardIDs(l *models.List) []types.CardID {
	ids := make([]types.CardID, len(l.Cards))
	for i, c := range l.Cards {
		ids[i] = c.ID
	}
	return ids
}

// ============================================================================
// COPY-ON-WRITE EDITS
// ============================================================================

func TestEditsShareUntouchedSubtrees(t *testing.T) {
	before := models.SortBoard(sampleBoard())

	after, err := PatchCard("c2", models.CardPatch{Title: models.Some("B2")})(before)
	require.NoError(t, err)

	assert.Equal(t, "B", before.Lists[0].Cards[1].Title, "old snapshot is untouched")
	assert.Equal(t, "B2", after.Lists[0].Cards[1].Title)
	assert.Same(t, before.Lists[1], after.Lists[1], "untouched list is shared")
	assert.Same(t, before.Lists[0].Cards[0], after.Lists[0].Cards[0], "untouched card is shared")
	assert.NotSame(t, before.Lists[0], after.Lists[0])
}

func TestMoveCardAcrossLists(t *testing.T) {
	before := models.SortBoard(sampleBoard())

	after, err := MoveCard("c1", "l2", 1, 2)(before)
	require.NoError(t, err)

	assert.Equal(t, []types.CardID{"c2", "c3"}, cardIDs(after.Lists[0]))
	assert.Equal(t, []types.CardID{"c4", "c1"}, cardIDs(after.Lists[1]))

	loc, ok := FindCard(after, "c1")
	require.True(t, ok)
	assert.Equal(t, types.ListID("l2"), loc.Card.ListID)
	assert.Equal(t, 2.0, loc.Card.Position)
	assert.Len(t, loc.Card.Checklists, 1, "nested data travels with the card")
	assert.Equal(t, 4, after.CardCount())
}

func TestMoveCardUnknownList(t *testing.T) {
	_, err := MoveCard("c1", "nope", 0, 1)(sampleBoard())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveListSortedPlacesByPosition(t *testing.T) {
	p := models.SortBoard(sampleBoard())
	p, err := InsertList(&models.List{ID: "l3", Title: "Review", Position: 0.5}, Sorted)(p)
	require.NoError(t, err)

	out, err := MoveList("l1", Sorted, 3)(p)
	require.NoError(t, err)

	ids := make([]types.ListID, len(out.Lists))
	for i, l := range out.Lists {
		ids[i] = l.ID
	}
	assert.Equal(t, []types.ListID{"l3", "l2", "l1"}, ids)
	assert.Equal(t, 3.0, out.Lists[2].Position)
}

func TestMoveCardSortedPlacesByPosition(t *testing.T) {
	p := models.SortBoard(sampleBoard())

	out, err := MoveCard("c4", "l1", Sorted, 2.5)(p)
	require.NoError(t, err)

	assert.Equal(t, []types.CardID{"c1", "c2", "c4", "c3"}, cardIDs(out.Lists[0]))
	assert.Empty(t, out.Lists[1].Cards)
}

func TestInsertCardSortedAndListIDForced(t *testing.T) {
	p := models.SortBoard(sampleBoard())
	card := &models.Card{ID: "c9", ListID: "wrong", Position: 2.5}

	out, err := InsertCard("l1", card, Sorted)(p)
	require.NoError(t, err)

	assert.Equal(t, []types.CardID{"c1", "c2", "c9", "c3"}, cardIDs(out.Lists[0]))
	assert.Equal(t, types.ListID("l1"), out.Lists[0].Cards[2].ListID)
	assert.Equal(t, types.ListID("wrong"), card.ListID, "input card is not mutated")
}

func TestChecklistAndItemEdits(t *testing.T) {
	p := models.SortBoard(sampleBoard())

	out, err := Chain(
		InsertItem("c1", "k1", &models.ChecklistItem{ID: "i2", Text: "two", Position: 2}, Sorted),
		MapItem("c1", "k1", "i1", func(it *models.ChecklistItem) (*models.ChecklistItem, error) {
			cp := *it
			cp.IsDone = true
			return &cp, nil
		}),
	)(p)
	require.NoError(t, err)

	_, _, cl, ok := FindChecklist(out, "c1", "k1")
	require.True(t, ok)
	require.Len(t, cl.Items, 2)
	assert.True(t, cl.Items[0].IsDone)
	assert.False(t, p.Lists[0].Cards[0].Checklists[0].Items[0].IsDone)

	out, err = RemoveChecklist("c1", "k1")(out)
	require.NoError(t, err)
	_, _, _, ok = FindChecklist(out, "c1", "k1")
	assert.False(t, ok)

	_, err = RemoveItem("c1", "k1", "i1")(out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrependActivity(t *testing.T) {
	p := models.SortBoard(sampleBoard())
	out, err := Chain(
		PrependActivity("c2", &models.Activity{ID: "a1"}),
		PrependActivity("c2", &models.Activity{ID: "a2"}),
	)(p)
	require.NoError(t, err)

	loc, _ := FindCard(out, "c2")
	require.Len(t, loc.Card.Activity, 2)
	assert.Equal(t, types.ActivityID("a2"), loc.Card.Activity[0].ID)
}

func TestNotFoundErrorNamesEntity(t *testing.T) {
	_, err := RemoveCard("ghost")(sampleBoard())
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "card", nf.Kind)
	assert.Equal(t, "ghost", nf.ID)
}

// ============================================================================
// STORE
// ============================================================================

func TestStoreApplyAndRevertRestoresExactRoot(t *testing.T) {
	s := loadedStore(t)
	before := s.Snapshot()

	ch, err := s.Apply(RemoveCard("c2"))
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Lists[0].Cards, 2)

	require.NoError(t, s.Revert(ch, nil))
	assert.Same(t, before, s.Snapshot())
}

func TestStoreRevertAfterLaterCommitUsesUndo(t *testing.T) {
	s := loadedStore(t)

	ch, err := s.Apply(PatchCard("c2", models.CardPatch{Title: models.Some("renamed")}))
	require.NoError(t, err)

	// an unrelated commit lands while the first is in flight
	_, err = s.Apply(PatchCard("c4", models.CardPatch{Title: models.Some("kept")}))
	require.NoError(t, err)

	undo := PatchCard("c2", models.CardPatch{Title: models.Some("B")})
	require.NoError(t, s.Revert(ch, undo))

	root := s.Snapshot()
	c2, _ := FindCard(root, "c2")
	c4, _ := FindCard(root, "c4")
	assert.Equal(t, "B", c2.Card.Title)
	assert.Equal(t, "kept", c4.Card.Title)
}

func TestStoreRevertWithoutUndoAfterLaterCommitFails(t *testing.T) {
	s := loadedStore(t)
	ch, err := s.Apply(RemoveCard("c2"))
	require.NoError(t, err)
	_, err = s.Apply(RemoveCard("c3"))
	require.NoError(t, err)

	assert.Error(t, s.Revert(ch, nil))
}

func TestStoreFailedEditCommitsNothing(t *testing.T) {
	s := loadedStore(t)
	rev := s.Revision()
	before := s.Snapshot()

	_, err := s.Apply(RemoveList("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, rev, s.Revision())
	assert.Same(t, before, s.Snapshot())
}

func TestStoreNotifiesObservers(t *testing.T) {
	s := loadedStore(t)
	var seen []*models.Project
	cancel := s.Subscribe(func(p *models.Project) { seen = append(seen, p) })

	_, err := s.Apply(RemoveCard("c1"))
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Same(t, s.Snapshot(), seen[0])

	cancel()
	_, err = s.Apply(RemoveCard("c2"))
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	_, err := s.Apply(RemoveCard("c1"))
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, s.Load(sampleBoard()))
	assert.True(t, s.Loaded())

	s.Close()
	assert.Nil(t, s.Snapshot())
	_, err = s.Apply(RemoveCard("c1"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Load(sampleBoard()), ErrClosed)
}
