package app_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/app"
	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/config"
	"github.com/thenoetrevino/groupboard/internal/daemon"
	"github.com/thenoetrevino/groupboard/internal/engine"
	"github.com/thenoetrevino/groupboard/internal/logging"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	"github.com/thenoetrevino/groupboard/internal/types"
)

type everyone struct{}

func (everyone) IsCollaborator(context.Context, types.ProjectID, types.UserID) (bool, error) {
	return true, nil
}

func newApp(t *testing.T, cfg *config.Config, backend *testutil.FakeBackend) *app.App {
	t.Helper()
	a := app.New(cfg, app.WithRemote(backend), app.WithLogger(logging.Discard()))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewDefaultsToHTTPRemote(t *testing.T) {
	a := app.New(config.Default())
	assert.NotNil(t, a.Remote())
	assert.NotNil(t, a.Notices())
}

func TestIdentity(t *testing.T) {
	cfg := config.Default()
	a := app.New(cfg)
	assert.Equal(t, models.GuestName, a.Identity().Username)

	token, err := auth.NewIssuer("s", time.Hour).Issue("u1", "Ana")
	require.NoError(t, err)
	cfg.Server.Token = token
	id := app.New(cfg).Identity()
	assert.Equal(t, types.UserID("u1"), id.UserID)
	assert.Equal(t, "Ana", id.Username)
}

func TestOpenBoard(t *testing.T) {
	backend := testutil.NewFakeBackend(testutil.SampleBoard())
	a := newApp(t, config.Default(), backend)

	e, err := a.OpenBoard(context.Background(), testutil.ProjectID)
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, "Capstone", e.Board().Name)

	_, err = e.CreateList(context.Background(), "Review")
	require.NoError(t, err)
	assert.Len(t, backend.Board(testutil.ProjectID).Lists, 3)
}

func TestOpenBoardMissing(t *testing.T) {
	a := newApp(t, config.Default(), testutil.NewFakeBackend())

	_, err := a.OpenBoard(context.Background(), "nope")
	var herr *engine.HydrationError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, engine.HydrationNotFound, herr.Kind)
}

func TestJoinRoomSharesChanges(t *testing.T) {
	issuer := auth.NewIssuer("room-secret", time.Hour)
	srv := daemon.NewServer(issuer, everyone{}, nil, daemon.Config{}, logging.Discard())
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown()
		hs.Close()
	})

	backend := testutil.NewFakeBackend(testutil.SampleBoard())
	session := func(user types.UserID) *app.Room {
		cfg := config.Default()
		cfg.Server.URL = hs.URL
		token, err := issuer.Issue(user, string(user))
		require.NoError(t, err)
		cfg.Server.Token = token

		room, err := newApp(t, cfg, backend).JoinRoom(context.Background(), testutil.ProjectID)
		require.NoError(t, err)
		t.Cleanup(func() { _ = room.Close() })
		return room
	}

	first := session("u1")
	require.Eventually(t, func() bool { return first.Sequence() >= 1 }, 2*time.Second, 10*time.Millisecond)
	require.Len(t, first.Board().Lists, 2)

	created, err := first.CreateList(context.Background(), "Review")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return first.Sequence() >= 2 }, 2*time.Second, 10*time.Millisecond)

	second := session("u2")
	require.NotNil(t, second.Board().List(created.ID))
	assert.Equal(t, 1, backend.CallCount("GetBoard"))

	require.NoError(t, second.RenameList(context.Background(), created.ID, "Peer review"))
	require.Eventually(t, func() bool {
		l := first.Board().List(created.ID)
		return l != nil && l.Title == "Peer review"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomChangesSignalPeerWrites(t *testing.T) {
	issuer := auth.NewIssuer("room-secret", time.Hour)
	srv := daemon.NewServer(issuer, everyone{}, nil, daemon.Config{}, logging.Discard())
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown()
		hs.Close()
	})

	backend := testutil.NewFakeBackend(testutil.SampleBoard())
	join := func(user types.UserID) *app.Room {
		cfg := config.Default()
		cfg.Server.URL = hs.URL
		token, err := issuer.Issue(user, string(user))
		require.NoError(t, err)
		cfg.Server.Token = token
		room, err := newApp(t, cfg, backend).JoinRoom(context.Background(), testutil.ProjectID)
		require.NoError(t, err)
		t.Cleanup(func() { _ = room.Close() })
		return room
	}

	watcher := join("u1")
	require.Eventually(t, func() bool { return watcher.Sequence() >= 1 }, 2*time.Second, 10*time.Millisecond)
	writer := join("u2")
	drain := func() {
		for {
			select {
			case <-watcher.Changes():
			case <-time.After(100 * time.Millisecond):
				return
			}
		}
	}
	drain()

	require.NoError(t, writer.RenameList(context.Background(), testutil.TodoListID, "Backlog"))

	select {
	case <-watcher.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal after a peer write")
	}
	require.Eventually(t, func() bool {
		return watcher.Board().List(testutil.TodoListID).Title == "Backlog"
	}, 2*time.Second, 10*time.Millisecond)
}
