// Package events connects a board replica to its room on the daemon over a
// websocket.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/groupboard/internal/replica"
	"github.com/thenoetrevino/groupboard/internal/types"
)

const (
	// Time allowed to write a frame to the daemon
	writeWait = 10 * time.Second

	// Time allowed between pings from the daemon before the link is dead
	pongWait = 60 * time.Second

	// Time allowed for the join snapshot to arrive
	joinWait = 10 * time.Second
)

// ErrNotConnected is returned by Send while no connection is up.
var ErrNotConnected = errors.New("not connected to room")

// ErrQueued marks a send that could not be written yet. The batch stays in
// the outbox and goes out, in order, once the room is reachable again.
var ErrQueued = errors.New("ops queued for the room")

// Client is one replica's connection to a room.
// It handles the join snapshot, ordered delivery, and reconnection.
type Client struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	logger *slog.Logger

	mu       sync.Mutex // protects conn, snapshot, outbox, started, closed
	writeMu  sync.Mutex // one writer at a time
	conn     *websocket.Conn
	snapshot []replica.Op
	outbox   [][]replica.Op
	started  bool
	closed   bool

	updates chan []replica.Op

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	// Highest room sequence delivered
	lastSequence atomic.Int64

	ctx        context.Context
	cancel     context.CancelFunc
	readerDone chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// WithReconnect sets the reconnect attempts and the first backoff delay.
func WithReconnect(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option { return func(c *Client) { c.dialer = d } }

// RoomURL builds the websocket address of a project's room from the REST
// server URL.
func RoomURL(serverURL string, projectID types.ProjectID) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	if projectID == "" {
		return "", errors.New("project id is required")
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/rooms/" + string(projectID) + "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// NewClient creates a room client but does not connect.
func NewClient(serverURL string, projectID types.ProjectID, token string, opts ...Option) (*Client, error) {
	addr, err := RoomURL(serverURL, projectID)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		url:        addr,
		header:     header,
		dialer:     websocket.DefaultDialer,
		logger:     slog.Default(),
		updates:    make(chan []replica.Op, 64),
		maxRetries: 5,
		baseDelay:  1 * time.Second,
		ctx:        ctx,
		cancel:     cancel,
		readerDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect joins the room, waits for its snapshot and starts the reader.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return replica.ErrTransportClosed
	}
	if c.started {
		return nil
	}

	conn, snap, err := c.dial(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	c.snapshot = snap.Ops
	c.lastSequence.Store(snap.Seq)
	c.started = true
	pending := len(c.outbox)

	go c.listenLoop()
	if pending > 0 {
		go c.flushAfterJoin()
	}
	return nil
}

// dial opens a connection and reads the join snapshot.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, Message, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, Message{}, ClassifyDialError(err, resp)
	}

	deadline := time.Now().Add(joinWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		_ = conn.Close()
		return nil, Message{}, fmt.Errorf("read room snapshot: %w", err)
	}
	switch msg.Type {
	case MessageSnapshot:
	case MessageError:
		_ = conn.Close()
		return nil, Message{}, fmt.Errorf("room rejected join: %s", msg.Error)
	default:
		_ = conn.Close()
		return nil, Message{}, fmt.Errorf("expected snapshot, got %q", msg.Type)
	}
	if msg.Version != ProtocolVersion {
		c.logger.Warn("room protocol version mismatch", "got", msg.Version, "want", ProtocolVersion)
	}
	_ = conn.SetReadDeadline(time.Time{})
	return conn, msg, nil
}

// Snapshot returns the room state received on join, connecting first if
// needed.
func (c *Client) Snapshot(ctx context.Context) ([]replica.Op, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, nil
}

// Send publishes a batch to the room. Batches leave in the order they were
// sent; one that cannot be written stays queued behind the earlier ones and
// the error wraps ErrQueued.
func (c *Client) Send(ctx context.Context, ops []replica.Op) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return replica.ErrTransportClosed
	}
	if len(ops) > 0 {
		c.outbox = append(c.outbox, ops)
	}
	c.mu.Unlock()

	if err := c.Flush(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrQueued, err)
	}
	return nil
}

// Flush writes queued batches until the outbox is empty or a write fails.
func (c *Client) Flush(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return replica.ErrTransportClosed
		}
		if len(c.outbox) == 0 {
			c.mu.Unlock()
			return nil
		}
		conn, batch := c.conn, c.outbox[0]
		c.mu.Unlock()

		if conn == nil {
			return ErrNotConnected
		}
		if err := write(ctx, conn, batch); err != nil {
			return err
		}

		c.mu.Lock()
		c.outbox = c.outbox[1:]
		c.mu.Unlock()
	}
}

// Pending returns the number of batches waiting to be written.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outbox)
}

func write(ctx context.Context, conn *websocket.Conn, ops []replica.Op) error {
	// Set a short write deadline to detect dead connections
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	if err := conn.WriteJSON(Message{Version: ProtocolVersion, Type: MessageOps, Ops: ops}); err != nil {
		return fmt.Errorf("send %d ops: %w", len(ops), err)
	}
	return nil
}

func (c *Client) flushAfterJoin() {
	if err := c.Flush(c.ctx); err != nil {
		c.logger.Warn("queued ops not sent", "pending", c.Pending(), "error", err)
	}
}

// Updates returns room batches in room order. The channel is closed when the
// client is closed or reconnection gives up.
func (c *Client) Updates() <-chan []replica.Op { return c.updates }

// LastSequence returns the highest room sequence delivered.
func (c *Client) LastSequence() int64 { return c.lastSequence.Load() }

// listenLoop reads frames and handles reconnection.
func (c *Client) listenLoop() {
	defer close(c.readerDone)
	defer close(c.updates)

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		err := c.readMessages(conn)
		if c.ctx.Err() != nil {
			return
		}
		c.logger.Warn("room connection lost, reconnecting", "error", err)

		if !c.reconnect() {
			c.logger.Error("failed to rejoin room, giving up", "attempts", c.maxRetries)
			c.mu.Lock()
			if c.conn != nil {
				_ = c.conn.Close()
			}
			c.conn = nil
			c.mu.Unlock()
			return
		}
		c.logger.Info("rejoined room", "seq", c.lastSequence.Load())
	}
}

// readMessages reads frames until the connection fails.
func (c *Client) readMessages(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		// Pong failures surface on the next read
		_ = conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		return nil
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch msg.Type {
		case MessageOps:
			// Basic duplicate detection
			if msg.Seq <= c.lastSequence.Load() {
				continue
			}
			c.lastSequence.Store(msg.Seq)
			if !c.deliver(msg.Ops) {
				return c.ctx.Err()
			}

		case MessageSnapshot:
			c.lastSequence.Store(msg.Seq)
			if !c.deliver(msg.Ops) {
				return c.ctx.Err()
			}

		case MessageError:
			c.logger.Warn("room rejected frame", "error", msg.Error)
		}
	}
}

func (c *Client) deliver(ops []replica.Op) bool {
	if len(ops) == 0 {
		return true
	}
	select {
	case c.updates <- ops:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// reconnect rejoins the room with exponential backoff. Queued batches are
// written first, then the fresh snapshot is delivered as an update; merging
// it is idempotent.
func (c *Client) reconnect() bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
		}

		conn, snap, err := c.dial(c.ctx)
		if err != nil {
			var derr *DialError
			if errors.As(err, &derr) && (derr.Code == ErrUnauthorized || derr.Code == ErrForbidden) {
				c.logger.Error("room refused rejoin", "error", err)
				return false
			}
			c.logger.Debug("rejoin attempt failed", "attempt", i+1, "max", c.maxRetries, "retry_in", delay, "error", err)
			delay *= 2
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return false
		}
		old := c.conn
		c.conn = conn
		c.mu.Unlock()
		if old != nil {
			_ = old.Close()
		}
		c.lastSequence.Store(snap.Seq)
		c.flushAfterJoin()
		return c.deliver(snap.Ops)
	}

	return false
}

// Close leaves the room and stops the reader.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn, started := c.conn, c.started
	if n := len(c.outbox); n > 0 {
		c.logger.Warn("closing with unsent ops", "batches", n)
	}
	c.mu.Unlock()

	c.cancel()

	var err error
	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = conn.Close()
	}

	if started {
		<-c.readerDone
	} else {
		close(c.updates)
	}
	return err
}
