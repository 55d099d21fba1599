package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

func twoLists() *models.Project {
	return &models.Project{
		ID: "p1",
		Lists: []*models.List{
			{ID: "l1", Title: "Todo", Cards: []*models.Card{{ID: "c1", ListID: "l1", Title: "A"}}},
			{ID: "l2", Title: "Done"},
		},
	}
}

func TestCurrentReadsLiveCard(t *testing.T) {
	s := New()
	s.Open("c1", "Todo")

	card, title, ok := s.Current(twoLists())
	assert.True(t, ok)
	assert.Equal(t, "A", card.Title)
	assert.Equal(t, "Todo", title)
}

func TestSyncClearsWhenCardDisappears(t *testing.T) {
	s := New()
	s.Open("c1", "Todo")

	p := twoLists()
	p.Lists[0].Cards = nil

	assert.True(t, s.Sync(p))
	_, _, open := s.Selected()
	assert.False(t, open)
}

func TestSyncFollowsCrossListMove(t *testing.T) {
	s := New()
	s.Open("c1", "Todo")

	p := twoLists()
	p.Lists[1].Cards = p.Lists[0].Cards
	p.Lists[0].Cards = nil

	assert.False(t, s.Sync(p))
	_, title, open := s.Selected()
	assert.True(t, open)
	assert.Equal(t, "Done", title)
}

func TestRebindFollowsConfirmedID(t *testing.T) {
	s := New()
	tmp := types.CardID(types.NewTempID())
	s.Open(tmp, "Todo")

	s.Rebind("other", "c1")
	assert.True(t, s.IsSelected(tmp))

	s.Rebind(tmp, "c1")
	assert.True(t, s.IsSelected("c1"))
}

func TestClosedSelectionIsInert(t *testing.T) {
	s := New()
	assert.False(t, s.Sync(twoLists()))
	_, _, ok := s.Current(twoLists())
	assert.False(t, ok)

	s.Open("c1", "Todo")
	s.Close()
	assert.False(t, s.IsSelected("c1"))
}
