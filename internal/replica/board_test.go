package replica

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	"github.com/thenoetrevino/groupboard/internal/types"
)

func hydrated(t *testing.T, client string) (*Doc, []Op) {
	t.Helper()
	d := NewDoc(client)
	ops, err := d.Batch(func(tx *Tx) error {
		return Hydrate(tx, models.SortBoard(testutil.SampleBoard()))
	})
	require.NoError(t, err)
	return d, ops
}

// ============================================================================
// HYDRATE / MATERIALIZE
// ============================================================================

func TestMaterializeEmptyDoc(t *testing.T) {
	p, idx := Materialize(NewDoc("a"))

	assert.Nil(t, p)
	require.NotNil(t, idx)
	assert.Empty(t, idx.Card)
}

func TestHydrateRoundTrip(t *testing.T) {
	d, _ := hydrated(t, "a")

	p, idx := Materialize(d)

	assert.Equal(t, models.SortBoard(testutil.SampleBoard()), p)
	assert.Contains(t, idx.Card, testutil.CardA)
	assert.Contains(t, idx.Checklist, testutil.ChecklistID)
	assert.Contains(t, idx.Item, testutil.ItemTwo)
	assert.Contains(t, idx.Entry, testutil.CommentID)
	assert.Len(t, idx.Cards, 2)
}

func TestRoundTripSurvivesCompaction(t *testing.T) {
	d, _ := hydrated(t, "a")
	fresh := NewDoc("b")

	fresh.Apply(d.Compact()...)

	want, _ := Materialize(d)
	got, _ := Materialize(fresh)
	assert.Equal(t, want, got)
}

func TestConcurrentHydrationConverges(t *testing.T) {
	a, fromA := hydrated(t, "a")
	b, fromB := hydrated(t, "b")

	a.Apply(fromB...)
	b.Apply(fromA...)

	pa, _ := Materialize(a)
	pb, _ := Materialize(b)
	assert.Equal(t, pa, pb)
	assert.Equal(t, models.SortBoard(testutil.SampleBoard()), pa, "one hydration wins, none is duplicated")
	assert.Equal(t, a.Compact(), b.Compact())
}

// ============================================================================
// ACTIVITY ORDER
// ============================================================================

func TestActivityPrependsAtHead(t *testing.T) {
	d, _ := hydrated(t, "a")
	_, idx := Materialize(d)
	feed := idx.Activity[testutil.CardA]

	pos := headPos(d, feed)
	_, err := d.Batch(func(tx *Tx) error {
		_, err := PutActivity(tx, feed, &models.Activity{ID: "a2", Type: models.ActivityComment, Content: "newer"}, pos)
		return err
	})
	require.NoError(t, err)

	p, _ := Materialize(d)
	loc, ok := board.FindCard(p, testutil.CardA)
	require.True(t, ok)
	require.Len(t, loc.Card.Activity, 2)
	assert.Equal(t, "newer", loc.Card.Activity[0].Content)
	assert.Equal(t, "started", loc.Card.Activity[1].Content)
}

func TestHeadPosOfEmptyFeed(t *testing.T) {
	d, _ := hydrated(t, "a")
	_, idx := Materialize(d)

	assert.Equal(t, 1.0, headPos(d, idx.Activity[testutil.CardB]))
}

// ============================================================================
// REPARENT
// ============================================================================

func TestReparentCardClonesSubtree(t *testing.T) {
	d, _ := hydrated(t, "a")
	peer := NewDoc("b")
	peer.Apply(d.Compact()...)
	p, idx := Materialize(d)
	loc, ok := board.FindCard(p, testutil.CardA)
	require.True(t, ok)

	ops, err := d.Batch(func(tx *Tx) error {
		_, err := ReparentCard(tx, idx, loc.Card, testutil.DoneListID, 1)
		return err
	})
	require.NoError(t, err)
	peer.Apply(ops...)

	for _, doc := range []*Doc{d, peer} {
		got, _ := Materialize(doc)
		todo, done := got.List(testutil.TodoListID), got.List(testutil.DoneListID)
		require.Len(t, done.Cards, 1)
		moved := done.Cards[0]
		assert.Equal(t, testutil.CardA, moved.ID)
		assert.Equal(t, testutil.DoneListID, moved.ListID)
		assert.Equal(t, 1.0, moved.Position)
		require.Len(t, moved.Checklists, 1)
		assert.Len(t, moved.Checklists[0].Items, 2)
		assert.Len(t, moved.Activity, 1)
		assert.Equal(t, loc.Card.Assignees, moved.Assignees)
		assert.Len(t, todo.Cards, 2)
	}
}

func countCard(p *models.Project, id types.CardID) int {
	n := 0
	for _, l := range p.Lists {
		for _, c := range l.Cards {
			if c.ID == id {
				n++
			}
		}
	}
	return n
}

func reparent(t *testing.T, d *Doc, id types.CardID, to types.ListID, pos float64) []Op {
	t.Helper()
	p, idx := Materialize(d)
	loc, ok := board.FindCard(p, id)
	require.True(t, ok)
	ops, err := d.Batch(func(tx *Tx) error {
		_, err := ReparentCard(tx, idx, loc.Card, to, pos)
		return err
	})
	require.NoError(t, err)
	return ops
}

func TestConcurrentReparentKeepsOneCopy(t *testing.T) {
	a, _ := hydrated(t, "a")
	b := NewDoc("b")
	b.Apply(a.Compact()...)

	fromA := reparent(t, a, testutil.CardB, testutil.DoneListID, 1)
	fromB := reparent(t, b, testutil.CardB, testutil.DoneListID, 2)
	a.Apply(fromB...)
	b.Apply(fromA...)

	pa, idxA := Materialize(a)
	pb, _ := Materialize(b)
	assert.Equal(t, 1, countCard(pa, testutil.CardB))
	assert.Equal(t, pa, pb)
	assert.Len(t, idxA.Copies[testutil.CardB], 1)

	// b's clone carries the later stamp on both sides.
	loc, ok := board.FindCard(pa, testutil.CardB)
	require.True(t, ok)
	assert.Equal(t, 2.0, loc.Card.Position)
}

func TestConcurrentReparentIndexesWinningSubtree(t *testing.T) {
	a, _ := hydrated(t, "a")
	b := NewDoc("b")
	b.Apply(a.Compact()...)

	fromA := reparent(t, a, testutil.CardA, testutil.DoneListID, 1)
	fromB := reparent(t, b, testutil.CardA, testutil.DoneListID, 3)
	a.Apply(fromB...)
	b.Apply(fromA...)

	pa, idx := Materialize(a)
	pb, _ := Materialize(b)
	assert.Equal(t, pa, pb)
	assert.Equal(t, 1, countCard(pa, testutil.CardA))

	loc, ok := board.FindCard(pa, testutil.CardA)
	require.True(t, ok)
	require.Len(t, loc.Card.Checklists, 1)
	assert.Len(t, loc.Card.Checklists[0].Items, 2)
	assert.Len(t, loc.Card.Activity, 1)
	assert.NotContains(t, idx.Copies[testutil.CardA], idx.Card[testutil.CardA])
}

func TestDeleteRemovesEveryCopy(t *testing.T) {
	a, _ := hydrated(t, "a")
	b := NewDoc("b")
	b.Apply(a.Compact()...)
	fromA := reparent(t, a, testutil.CardB, testutil.DoneListID, 1)
	fromB := reparent(t, b, testutil.CardB, testutil.DoneListID, 2)
	a.Apply(fromB...)
	b.Apply(fromA...)

	_, idx := Materialize(a)
	ops, err := a.Batch(func(tx *Tx) error { return DeleteCard(tx, idx, testutil.CardB) })
	require.NoError(t, err)
	b.Apply(ops...)

	for _, d := range []*Doc{a, b} {
		p, idx := Materialize(d)
		assert.Zero(t, countCard(p, testutil.CardB))
		assert.Empty(t, idx.Copies)
	}
}

func TestReparentUnknownCard(t *testing.T) {
	d, _ := hydrated(t, "a")
	_, idx := Materialize(d)

	_, err := d.Batch(func(tx *Tx) error {
		_, err := ReparentCard(tx, idx, &models.Card{ID: "ghost"}, testutil.DoneListID, 1)
		return err
	})

	assert.ErrorIs(t, err, ErrUnknownNode)
}
