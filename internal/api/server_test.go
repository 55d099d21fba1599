package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/api"
	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/database"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/engine"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ============================================================================
// TEST SERVER SETUP
// ============================================================================

const secret = "test-secret"

type harness struct {
	repo   *database.Repository
	url    string
	issuer *auth.Issuer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := testutil.SetupTestDB(t)

	issuer := auth.NewIssuer(secret, time.Hour)
	srv := httptest.NewServer(api.NewServer(repo, issuer, nil).Handler())
	t.Cleanup(srv.Close)
	return &harness{repo: repo, url: srv.URL, issuer: issuer}
}

// client returns an HTTP client authenticated as userID.
func (h *harness) client(t *testing.T, userID types.UserID) *persistence.HTTPClient {
	t.Helper()
	token, err := h.issuer.Issue(userID, string(userID))
	require.NoError(t, err)
	return persistence.NewHTTPClient(h.url, persistence.WithToken(token))
}

// board creates a project owned by userID with one list and one card.
func (h *harness) board(t *testing.T, c *persistence.HTTPClient) (types.ProjectID, *models.List, *models.Card) {
	t.Helper()
	ctx := context.Background()
	p, err := c.CreateProject(ctx, persistence.CreateProjectRequest{Title: "Capstone"})
	require.NoError(t, err)
	l, err := c.CreateList(ctx, persistence.CreateListRequest{ProjectID: p.ID, Title: "Todo"})
	require.NoError(t, err)
	card, err := c.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: p.ID, ListID: l.ID, Title: "Outline"})
	require.NoError(t, err)
	return p.ID, l, card
}

// ============================================================================
// AUTHENTICATION AND AUTHORIZATION
// ============================================================================

func TestMissingTokenIsUnauthorized(t *testing.T) {
	h := newHarness(t)
	_, err := persistence.NewHTTPClient(h.url).ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, persistence.ErrUnauthorized))

	var perr *persistence.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Unauthorized", perr.Message)
}

func TestForeignTokenIsUnauthorized(t *testing.T) {
	h := newHarness(t)
	token, err := auth.NewIssuer("other", time.Hour).Issue("u1", "Ann")
	require.NoError(t, err)
	_, err = persistence.NewHTTPClient(h.url, persistence.WithToken(token)).ListProjects(context.Background())
	assert.True(t, errors.Is(err, persistence.ErrUnauthorized))
}

func TestHealthNeedsNoToken(t *testing.T) {
	h := newHarness(t)
	resp, err := http.Get(h.url + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNonCollaboratorIsForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pid, list, card := h.board(t, h.client(t, "u-owner"))
	stranger := h.client(t, "u-stranger")

	_, err := stranger.GetBoard(ctx, pid)
	assert.True(t, errors.Is(err, persistence.ErrForbidden), "board: %v", err)

	_, err = stranger.UpdateList(ctx, list.ID, models.ListPatch{Title: models.Some("Mine")})
	assert.True(t, errors.Is(err, persistence.ErrForbidden), "list: %v", err)

	err = stranger.DeleteCard(ctx, card.ID)
	assert.True(t, errors.Is(err, persistence.ErrForbidden), "card: %v", err)

	_, err = stranger.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: pid, ListID: list.ID, Title: "Sneaky"})
	assert.True(t, errors.Is(err, persistence.ErrForbidden), "create card: %v", err)

	projects, err := stranger.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestAddedCollaboratorCanEdit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pid, _, card := h.board(t, h.client(t, "u-owner"))
	require.NoError(t, h.repo.AddCollaborator(ctx, pid, "u-mate", database.RoleMember))

	mate := h.client(t, "u-mate")
	updated, err := mate.UpdateCard(ctx, card.ID, models.CardPatch{Title: models.Some("Outline v2")})
	require.NoError(t, err)
	assert.Equal(t, "Outline v2", updated.Title)

	projects, err := mate.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, database.RoleMember, projects[0].Role)
}

// ============================================================================
// CRUD THROUGH THE HTTP CLIENT
// ============================================================================

func TestProjectLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")

	due := models.Date("2025-05-01")
	created, err := c.CreateProject(ctx, persistence.CreateProjectRequest{Title: "Thesis", DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "Thesis", created.Name)

	p, err := c.UpdateProject(ctx, created.ID, models.ProjectPatch{Course: models.SomePtr("CS 500")})
	require.NoError(t, err)
	require.NotNil(t, p.Course)
	assert.Equal(t, "CS 500", *p.Course)
	require.NotNil(t, p.DueDate)
	assert.Equal(t, due, *p.DueDate)

	require.NoError(t, c.DeleteProject(ctx, created.ID))
	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestBoardRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")
	pid, list, card := h.board(t, c)

	cl, err := c.CreateChecklist(ctx, persistence.CreateChecklistRequest{CardID: card.ID, Title: "Sections"})
	require.NoError(t, err)
	it, err := c.CreateChecklistItem(ctx, persistence.CreateChecklistItemRequest{ChecklistID: cl.ID, Text: "Intro"})
	require.NoError(t, err)
	_, err = c.UpdateChecklistItem(ctx, it.ID, models.ChecklistItemPatch{IsDone: models.Some(true)})
	require.NoError(t, err)

	p, err := c.GetBoard(ctx, pid)
	require.NoError(t, err)
	require.NotNil(t, p.List(list.ID))
	got := p.List(list.ID).Card(card.ID)
	require.NotNil(t, got)
	require.NotNil(t, got.Checklist(cl.ID))
	done, total := got.Checklist(cl.ID).Progress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, total)
}

func TestCreatedPositionsAppend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")
	pid, list, first := h.board(t, c)

	second, err := c.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: pid, ListID: list.ID, Title: "Draft"})
	require.NoError(t, err)
	assert.Greater(t, second.Position, first.Position)
	assert.NotNil(t, second.Checklists)
}

func TestDeletesCascade(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")
	pid, list, card := h.board(t, c)

	require.NoError(t, c.DeleteList(ctx, list.ID))

	_, err := c.UpdateCard(ctx, card.ID, models.CardPatch{Title: models.Some("Gone")})
	assert.True(t, errors.Is(err, persistence.ErrNotFound), "got %v", err)

	p, err := c.GetBoard(ctx, pid)
	require.NoError(t, err)
	assert.Empty(t, p.Lists)
}

func TestCommentAuthor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")
	_, _, card := h.board(t, c)

	a, err := c.CreateComment(ctx, persistence.CreateCommentRequest{CardID: card.ID, Content: "  Looks good  "})
	require.NoError(t, err)
	assert.Equal(t, "Looks good", a.Content)
	assert.Equal(t, models.GuestName, a.Username)
	assert.Equal(t, types.UserID("u1"), a.UserID)
}

// ============================================================================
// VALIDATION AND ERROR MAPPING
// ============================================================================

func TestEmptyPatchIsRejected(t *testing.T) {
	h := newHarness(t)
	c := h.client(t, "u1")
	_, _, card := h.board(t, c)

	_, err := c.UpdateCard(context.Background(), card.ID, models.CardPatch{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, persistence.ErrInvalid))

	var perr *persistence.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "No valid fields to update", perr.Message)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")
	pid, list, card := h.board(t, c)
	bad := models.Priority("urgent")

	tests := []struct {
		name string
		call func() error
	}{
		{"blank project", func() error {
			_, err := c.CreateProject(ctx, persistence.CreateProjectRequest{Title: "  "})
			return err
		}},
		{"blank list", func() error {
			_, err := c.CreateList(ctx, persistence.CreateListRequest{ProjectID: pid, Title: ""})
			return err
		}},
		{"long card title", func() error {
			_, err := c.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: pid, ListID: list.ID, Title: strings.Repeat("x", 256)})
			return err
		}},
		{"bad priority", func() error {
			_, err := c.CreateCard(ctx, persistence.CreateCardRequest{ProjectID: pid, ListID: list.ID, Title: "ok", Priority: &bad})
			return err
		}},
		{"blank item", func() error {
			_, err := c.CreateChecklistItem(ctx, persistence.CreateChecklistItemRequest{ChecklistID: "any", Text: " "})
			return err
		}},
		{"blank comment", func() error {
			_, err := c.CreateComment(ctx, persistence.CreateCommentRequest{CardID: card.ID, Content: ""})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, persistence.ErrInvalid), "got %v", err)
		})
	}
}

func TestMissingEntityIsNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")

	err := c.DeleteChecklist(ctx, "missing")
	assert.True(t, errors.Is(err, persistence.ErrNotFound), "checklist: %v", err)

	_, err = c.CreateChecklist(ctx, persistence.CreateChecklistRequest{CardID: "missing", Title: "x"})
	assert.True(t, errors.Is(err, persistence.ErrNotFound), "parent: %v", err)
}

func TestMalformedBody(t *testing.T) {
	h := newHarness(t)
	token, err := h.issuer.Issue("u1", "Ann")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, h.url+"/api/projects", strings.NewReader(`{"title":`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ============================================================================
// ENGINE OVER HTTP
// ============================================================================

func TestEngineAgainstServer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client(t, "u1")
	pid, list, card := h.board(t, c)

	e := engine.New(board.NewStore(), c)
	defer e.Close()
	require.NoError(t, e.Load(ctx, pid))

	created, err := e.CreateList(ctx, "Done")
	require.NoError(t, err)
	require.NoError(t, e.MoveCard(ctx, dnd.CardMove{CardID: card.ID, FromList: list.ID, ToList: created.ID, Position: 1}))
	require.NoError(t, e.UpdateCard(ctx, card.ID, models.CardPatch{Title: models.Some("Outline final")}))

	p, err := h.repo.GetBoard(ctx, pid)
	require.NoError(t, err)
	require.NotNil(t, p.List(created.ID))
	moved := p.List(created.ID).Card(card.ID)
	require.NotNil(t, moved)
	assert.Equal(t, "Outline final", moved.Title)
	assert.Nil(t, p.List(list.ID).Card(card.ID))
}
