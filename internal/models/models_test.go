package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// PATCH ENCODING
// ============================================================================

func TestCardPatchMarshalOnlyPresentKeys(t *testing.T) {
	p := CardPatch{
		Title:       Some("Write intro"),
		Description: Null[string](),
		Position:    Some(2.5),
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{
		"title":       "Write intro",
		"description": nil,
		"position":    2.5,
	}, got)
}

func TestCardPatchUnmarshalIgnoresUnknownKeys(t *testing.T) {
	var p CardPatch
	err := json.Unmarshal([]byte(`{"title":"A","owner":"mallory","priority":"High","list_id":"l2"}`), &p)
	require.NoError(t, err)

	assert.True(t, p.Title.Set)
	assert.Equal(t, "A", p.Title.Value)
	require.True(t, p.Priority.Set)
	assert.Equal(t, PriorityHigh, *p.Priority.Value)
	assert.Equal(t, "l2", string(p.ListID.Value))
	assert.False(t, p.Description.Set)
	assert.False(t, p.DueDate.Set)
}

func TestProjectPatchNullClearsCourse(t *testing.T) {
	var p ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"course":null}`), &p))
	require.True(t, p.Course.Set)
	assert.Nil(t, p.Course.Value)

	course := "CS 101"
	proj := &Project{ID: "p1", Name: "Capstone", Course: &course}
	out := p.Apply(proj)
	assert.Nil(t, out.Course)
	assert.Equal(t, "CS 101", *proj.Course, "Apply must not touch the original")
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestPatchValidation(t *testing.T) {
	bad := Priority("urgent")
	badDate := Date("31/12/2025")

	tests := []struct {
		name    string
		patch   interface{ Validate() error }
		wantErr error
	}{
		{"empty card patch", CardPatch{}, ErrEmptyPatch},
		{"blank title", CardPatch{Title: Some("   ")}, ErrEmptyTitle},
		{"unknown priority", CardPatch{Priority: Some(&bad)}, ErrInvalidPriority},
		{"malformed date", CardPatch{DueDate: Some(&badDate)}, ErrInvalidDate},
		{"clear priority", CardPatch{Priority: Null[Priority]()}, nil},
		{"blank list title", ListPatch{Title: Some("")}, ErrEmptyTitle},
		{"blank item text", ChecklistItemPatch{Text: Some(" ")}, ErrEmptyText},
		{"toggle item", ChecklistItemPatch{IsDone: Some(true)}, nil},
		{"blank project name", ProjectPatch{Name: Some("")}, ErrEmptyName},
		{"empty checklist patch", ChecklistPatch{}, ErrEmptyPatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestFieldErrorNamesField(t *testing.T) {
	err := CardPatch{Title: Some("")}.Validate()
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "title", fe.Field)
}

func TestCardPatchInverseRestores(t *testing.T) {
	desc := "old"
	card := &Card{ID: "c1", ListID: "l1", Title: "Old", Description: &desc, Position: 1}
	patch := CardPatch{Title: Some("New"), Description: Null[string](), Position: Some(4.0)}

	inv := patch.Inverse(card)
	restored := inv.Apply(patch.Apply(card))

	assert.Equal(t, card, restored)
}

// ============================================================================
// PRIORITY AND DATES
// ============================================================================

func TestParsePriorityIsCaseInsensitive(t *testing.T) {
	p, err := ParsePriority("Medium")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	_, err = ParsePriority("critical")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestDisplayPriorityDefaultsToMedium(t *testing.T) {
	c := &Card{}
	assert.Equal(t, PriorityMedium, c.DisplayPriority())

	high := PriorityHigh
	c.Priority = &high
	assert.Equal(t, PriorityHigh, c.DisplayPriority())
}

func TestParseDateAcceptsTimestamps(t *testing.T) {
	d, err := ParseDate("2025-05-01T13:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, Date("2025-05-01"), d)

	_, err = ParseDate("tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

// ============================================================================
// SORTING
// ============================================================================

func TestSortBoardOrdersEveryLevel(t *testing.T) {
	now := time.Now()
	p := &Project{
		ID: "p1",
		Lists: []*List{
			{ID: "l2", Position: 2, Cards: []*Card{
				{ID: "b", Position: 1},
				{ID: "a", Position: 1},
				{ID: "z", Position: 0.5, Checklists: []*Checklist{
					{ID: "k2", Position: 2},
					{ID: "k1", Position: 1, Items: []*ChecklistItem{
						{ID: "i2", Position: 3}, {ID: "i1", Position: 1},
					}},
				}, Activity: []*Activity{
					{ID: "old", CreatedAt: now.Add(-time.Hour)},
					{ID: "new", CreatedAt: now},
				}},
			}},
			{ID: "l1", Position: 1},
		},
	}

	SortBoard(p)

	assert.Equal(t, "l1", string(p.Lists[0].ID))
	assert.NotNil(t, p.Lists[0].Cards, "nil card slices become empty")

	cards := p.Lists[1].Cards
	assert.Equal(t, []string{"z", "a", "b"}, []string{string(cards[0].ID), string(cards[1].ID), string(cards[2].ID)})

	z := cards[0]
	assert.Equal(t, "k1", string(z.Checklists[0].ID))
	assert.Equal(t, "i1", string(z.Checklists[0].Items[0].ID))
	assert.Equal(t, "new", string(z.Activity[0].ID))
	assert.NotNil(t, cards[1].Assignees)
}
