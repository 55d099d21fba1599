// Package daemon hosts the realtime rooms: one shared board replica per
// project, fanned out to every connected client over websockets.
package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/events"
	"github.com/thenoetrevino/groupboard/internal/replica"
	"github.com/thenoetrevino/groupboard/internal/types"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024 * 1024

	// Replica id the daemon stamps nothing with; rooms only merge.
	daemonClient = "daemon"
)

// Members reports whether a user may join a project's room.
type Members interface {
	IsCollaborator(ctx context.Context, projectID types.ProjectID, userID types.UserID) (bool, error)
}

// Config tunes the room server.
type Config struct {
	// ClientBuffer is each client's send queue length. A client whose queue
	// fills is disconnected and must rejoin.
	ClientBuffer int
	// SnapshotInterval is how often changed rooms are saved. Zero saves only
	// when a room empties and at shutdown.
	SnapshotInterval time.Duration
	// AllowedOrigins restricts websocket origins. Empty allows any.
	AllowedOrigins []string
}

// client represents one websocket connection in a room
type client struct {
	conn      *websocket.Conn
	send      chan events.Message
	room      *room
	userID    types.UserID
	closeOnce sync.Once // Ensures send channel is closed only once
}

// room is one project's shared replica. Batches are applied and fanned out
// under mu, so every client sees them in seq order.
type room struct {
	id      types.ProjectID
	mu      sync.Mutex
	doc     *replica.Doc
	seq     int64
	clients map[*client]bool
	dirty   bool
}

// Server is the room daemon
type Server struct {
	issuer   *auth.Issuer
	members  Members
	store    RoomStore
	metrics  *Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clientBufferSize int
	snapshotInterval time.Duration

	mu    sync.Mutex // protects rooms; taken before any room.mu
	rooms map[types.ProjectID]*room

	shutdownOnce sync.Once
}

// NewServer creates a room server. A nil store keeps snapshots in memory.
func NewServer(issuer *auth.Issuer, members Members, store RoomStore, cfg Config, logger *slog.Logger) *Server {
	if store == nil {
		store = NewMemoryRoomStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = 64
	}
	s := &Server{
		issuer:           issuer,
		members:          members,
		store:            store,
		metrics:          NewMetrics(),
		logger:           logger,
		clientBufferSize: cfg.ClientBuffer,
		snapshotInterval: cfg.SnapshotInterval,
		rooms:            make(map[types.ProjectID]*room),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: originChecker(cfg.AllowedOrigins)}
	return s
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// Metrics returns the live counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Register mounts the room and metrics routes.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/api/rooms/{id}/ws", s.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics", s.ServeMetrics).Methods(http.MethodGet)
}

// Handler returns a router serving only the daemon routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.Register(r)
	return r
}

// Start saves changed rooms every SnapshotInterval until ctx ends, then
// shuts down.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("room daemon starting", "snapshot_interval", s.snapshotInterval)
	if s.snapshotInterval > 0 {
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return s.Shutdown()
			case <-ticker.C:
				s.saveDirty(ctx)
			}
		}
	}
	<-ctx.Done()
	return s.Shutdown()
}

// ServeMetrics writes the metrics snapshot as JSON.
func (s *Server) ServeMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.metrics.GetSnapshot())
}

// ServeWS authenticates the caller, upgrades the connection and joins the
// project's room.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	projectID := types.ProjectID(mux.Vars(r)["id"])

	claims, err := s.issuer.Authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ok, err := s.members.IsCollaborator(r.Context(), projectID, claims.UserID)
	if err != nil {
		s.logger.Error("membership check failed", "project_id", projectID, "user_id", claims.UserID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan events.Message, s.clientBufferSize),
		userID: claims.UserID,
	}
	if err := s.join(r.Context(), projectID, c); err != nil {
		s.logger.Error("failed to open room", "project_id", projectID, "error", err)
		_ = conn.WriteJSON(events.Message{Version: events.ProtocolVersion, Type: events.MessageError, Error: "room unavailable"})
		_ = conn.Close()
		return
	}
	s.logger.Info("client joined room", "project_id", projectID, "user_id", claims.UserID, "clients", s.clientCount())

	go s.writePump(c)
	s.readPump(c)
}

// join registers c with the room, opening it if needed, and queues the
// snapshot. Registration and snapshot happen under the room lock, so no
// batch falls between them.
func (s *Server) join(ctx context.Context, id types.ProjectID, c *client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm, ok := s.rooms[id]
	if !ok {
		ops, err := s.store.Load(ctx, id)
		if err != nil {
			return err
		}
		rm = &room{id: id, doc: replica.NewDoc(daemonClient), clients: make(map[*client]bool)}
		rm.doc.Apply(ops...)
		s.rooms[id] = rm
		s.metrics.SetRooms(int32(len(s.rooms)))
		s.logger.Debug("room opened", "project_id", id, "ops", len(ops))
	}

	rm.mu.Lock()
	c.room = rm
	rm.clients[c] = true
	c.send <- events.Message{
		Version: events.ProtocolVersion,
		Type:    events.MessageSnapshot,
		Room:    string(id),
		Seq:     rm.seq,
		Ops:     rm.doc.Compact(),
	}
	rm.mu.Unlock()

	s.updateClientCountLocked()
	return nil
}

// readPump pumps batches from the websocket connection into the room
func (s *Server) readPump(c *client) {
	defer s.leave(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg events.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		// Check protocol version - log warning if mismatch
		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			s.logger.Warn("protocol version mismatch", "got", msg.Version, "want", events.ProtocolVersion)
		}

		switch msg.Type {
		case events.MessageOps:
			s.metrics.IncBatchesReceived()
			s.publish(c.room, msg.Ops)
		default:
			s.sendToClient(c, events.Message{
				Version: events.ProtocolVersion,
				Type:    events.MessageError,
				Error:   "unsupported message type " + string(msg.Type),
			})
		}
	}
}

// publish merges a batch and echoes it to every client in the room, the
// sender included. Batches that change nothing are not echoed.
func (s *Server) publish(rm *room, ops []replica.Op) {
	if len(ops) == 0 {
		return
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.doc.Apply(ops...) == 0 {
		return
	}
	rm.seq++
	rm.dirty = true
	msg := events.Message{Version: events.ProtocolVersion, Type: events.MessageOps, Room: string(rm.id), Seq: rm.seq, Ops: ops}

	for c := range rm.clients {
		// A client that misses a batch would diverge; drop it so it rejoins
		if !s.sendToClient(c, msg) {
			s.logger.Warn("client send queue full, disconnecting", "project_id", rm.id, "user_id", c.userID)
			delete(rm.clients, c)
			c.closeSend()
		}
	}
}

// writePump pumps messages from the room to the websocket connection
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The room closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// leave unregisters c. The last client out saves and closes the room.
func (s *Server) leave(c *client) {
	c.closeSend()

	s.mu.Lock()
	rm := c.room
	rm.mu.Lock()
	delete(rm.clients, c)
	empty := len(rm.clients) == 0
	var ops []replica.Op
	if empty && s.rooms[rm.id] == rm {
		delete(s.rooms, rm.id)
		ops = rm.doc.Compact()
		s.metrics.SetRooms(int32(len(s.rooms)))
	}
	rm.mu.Unlock()
	s.updateClientCountLocked()

	// Saved before s.mu is released so a rejoin loads this snapshot
	if ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		s.save(ctx, rm.id, ops)
		cancel()
	}
	s.mu.Unlock()

	s.logger.Info("client left room", "project_id", rm.id, "user_id", c.userID)
}

func (c *client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// saveDirty writes every changed open room.
func (s *Server) saveDirty(ctx context.Context) {
	s.mu.Lock()
	type pending struct {
		id  types.ProjectID
		ops []replica.Op
	}
	var todo []pending
	for id, rm := range s.rooms {
		rm.mu.Lock()
		if rm.dirty {
			todo = append(todo, pending{id: id, ops: rm.doc.Compact()})
			rm.dirty = false
		}
		rm.mu.Unlock()
	}
	s.mu.Unlock()

	for _, p := range todo {
		s.save(ctx, p.id, p.ops)
	}
}

func (s *Server) save(ctx context.Context, id types.ProjectID, ops []replica.Op) {
	if err := s.store.Save(ctx, id, ops); err != nil {
		s.logger.Error("failed to save room snapshot", "project_id", id, "error", err)
		return
	}
	s.metrics.IncSnapshotsSaved()
	s.logger.Debug("room snapshot saved", "project_id", id, "ops", len(ops))
}

// Shutdown saves every room and disconnects all clients
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down room daemon")

		s.mu.Lock()
		rooms := s.rooms
		s.rooms = make(map[types.ProjectID]*room)
		s.metrics.SetRooms(0)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for id, rm := range rooms {
			rm.mu.Lock()
			ops := rm.doc.Compact()
			for c := range rm.clients {
				c.closeSend()
			}
			rm.mu.Unlock()
			s.save(ctx, id, ops)
		}
	})
	return nil
}

// Helper methods

func (s *Server) clientCount() int {
	return int(s.metrics.ConnectedClients.Load())
}

// updateClientCountLocked recounts clients; s.mu must be held.
func (s *Server) updateClientCountLocked() {
	n := 0
	for _, rm := range s.rooms {
		rm.mu.Lock()
		n += len(rm.clients)
		rm.mu.Unlock()
	}
	s.metrics.SetConnectedClients(int32(n))
}

// sendToClient attempts to queue a message (non-blocking).
// Returns true if successful, false if the queue is full or closed
func (s *Server) sendToClient(c *client, msg events.Message) (ok bool) {
	defer func() {
		// send on a channel closed by a concurrent disconnect
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- msg:
		s.metrics.IncMessagesSent()
		return true
	default:
		s.metrics.IncMessagesDropped()
		return false
	}
}
