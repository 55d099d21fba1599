// Package app wires board sessions from configuration: the persistence
// client, the local engine and the replicated room adapter.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/config"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/engine"
	"github.com/thenoetrevino/groupboard/internal/events"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/notify"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/replica"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Board is what a board session offers. The local engine and the replicated
// adapter both provide it.
type Board interface {
	dnd.Mover
	Notices() *notify.Center

	UpdateProject(ctx context.Context, patch models.ProjectPatch) error

	CreateList(ctx context.Context, title string) (*models.List, error)
	RenameList(ctx context.Context, id types.ListID, title string) error
	DeleteList(ctx context.Context, id types.ListID) error

	CreateCard(ctx context.Context, listID types.ListID, in engine.NewCard) (*models.Card, error)
	UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) error
	DeleteCard(ctx context.Context, id types.CardID) error

	CreateChecklist(ctx context.Context, cardID types.CardID, title string) (*models.Checklist, error)
	RenameChecklist(ctx context.Context, cardID types.CardID, id types.ChecklistID, title string) error
	DeleteChecklist(ctx context.Context, cardID types.CardID, id types.ChecklistID) error
	AddChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, text string) (*models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID, patch models.ChecklistItemPatch) error
	DeleteChecklistItem(ctx context.Context, cardID types.CardID, checklistID types.ChecklistID, id types.ItemID) error

	AddComment(ctx context.Context, cardID types.CardID, content string) (*models.Activity, error)
}

// Compile-time verification that both session variants are boards
var (
	_ Board = (*engine.Engine)(nil)
	_ Board = (*replica.Adapter)(nil)
)

// Remote is the persistence server as the client sees it.
type Remote interface {
	persistence.Backend
	persistence.Directory
}

// App holds the configured services shared by every command.
type App struct {
	cfg      *config.Config
	remote   Remote
	notices  *notify.Center
	logger   *slog.Logger
	roomOpts []events.Option
}

// New creates an App from cfg. Without WithRemote it talks to
// cfg.Server.URL over HTTP.
func New(cfg *config.Config, opts ...Option) *App {
	o := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	a := &App{
		cfg:      cfg,
		remote:   o.remote,
		notices:  notify.NewCenter(cfg.Client.NoticeTTL),
		logger:   o.logger,
		roomOpts: o.roomOptions,
	}
	if a.remote == nil {
		a.remote = persistence.NewHTTPClient(cfg.Server.URL, persistence.WithToken(cfg.Server.Token))
	}
	return a
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Remote returns the persistence client.
func (a *App) Remote() Remote { return a.remote }

// Notices returns the notice center shared by every session of this App.
func (a *App) Notices() *notify.Center { return a.notices }

// Identity returns the user the configured token names. Without a token the
// caller is a guest.
func (a *App) Identity() models.Assignee {
	if a.cfg.Server.Token == "" {
		return models.Assignee{Username: models.GuestName}
	}
	c, err := auth.Peek(a.cfg.Server.Token)
	if err != nil {
		return models.Assignee{Username: models.GuestName}
	}
	name := c.Name
	if name == "" {
		name = string(c.UserID)
	}
	return models.Assignee{UserID: c.UserID, Username: name}
}

// OpenBoard loads a project into a local optimistic session.
func (a *App) OpenBoard(ctx context.Context, id types.ProjectID) (*engine.Engine, error) {
	e := engine.New(board.NewStore(), a.remote,
		engine.WithTimeout(a.cfg.Client.RequestTimeout),
		engine.WithNotices(a.notices),
		engine.WithAuthor(a.Identity()),
		engine.WithLogger(a.logger),
	)
	if err := e.Load(ctx, id); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// Room is a joined replicated session. Close stops merging peer updates and
// disconnects.
type Room struct {
	*replica.Adapter

	client      *events.Client
	cancel      context.CancelFunc
	done        chan struct{}
	changes     chan struct{}
	unsubscribe func()

	mu  sync.Mutex
	err error
}

// JoinRoom connects to a project's room, joins it and starts merging peer
// updates in the background.
func (a *App) JoinRoom(ctx context.Context, id types.ProjectID) (*Room, error) {
	opts := append([]events.Option{
		events.WithLogger(a.logger),
		events.WithReconnect(max(a.cfg.Client.Retries(), 1), time.Second),
	}, a.roomOpts...)
	client, err := events.NewClient(a.cfg.Server.URL, id, a.cfg.Server.Token, opts...)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to room %s: %w", id, err)
	}

	transport := events.WithSendRetries(client, a.cfg.Client.Retries()+1)
	adapter := replica.NewAdapter(replica.NewDoc(uuid.NewString()), transport, a.remote, id,
		replica.WithRetries(a.cfg.Client.Retries()),
		replica.WithTimeout(a.cfg.Client.RequestTimeout),
		replica.WithNotices(a.notices),
		replica.WithLogger(a.logger),
	)
	if err := adapter.Join(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &Room{Adapter: adapter, client: client, cancel: cancel, done: make(chan struct{}), changes: make(chan struct{}, 1)}
	r.unsubscribe = adapter.Doc().Subscribe(func([]replica.Op, bool) {
		select {
		case r.changes <- struct{}{}:
		default:
		}
	})
	go func() {
		defer close(r.done)
		if err := adapter.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
		}
	}()
	return r, nil
}

// Done is closed when the room stops merging updates.
func (r *Room) Done() <-chan struct{} { return r.done }

// Changes signals after the shared tree changed, by this session or a peer.
// Signals coalesce; a reader sees at least one after every change.
func (r *Room) Changes() <-chan struct{} { return r.changes }

// Sequence returns the highest room sequence received.
func (r *Room) Sequence() int64 { return r.client.LastSequence() }

// Close disconnects from the room.
func (r *Room) Close() error {
	r.unsubscribe()
	r.cancel()
	err := r.client.Close()
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	return err
}

// Close performs cleanup of application resources.
func (a *App) Close() error {
	a.notices.Clear()
	return nil
}
