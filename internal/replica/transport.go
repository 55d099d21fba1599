package replica

import (
	"context"
	"errors"
	"sync"
)

// ErrTransportClosed is returned by Send after the transport was closed.
var ErrTransportClosed = errors.New("transport closed")

// Transport connects a replica to its room.
//
// Snapshot returns the room's state at join time, possibly empty. Send
// publishes local ops; every peer, the sender included, receives them on
// Updates in room order.
type Transport interface {
	Snapshot(ctx context.Context) ([]Op, error)
	Send(ctx context.Context, ops []Op) error
	Updates() <-chan []Op
}

// LoopbackRoom is an in-process room. It keeps its own replica for
// snapshots and fans every batch out to all connected transports.
type LoopbackRoom struct {
	mu    sync.Mutex
	doc   *Doc
	peers map[*Loopback]struct{}
}

// NewLoopbackRoom creates an empty room.
func NewLoopbackRoom() *LoopbackRoom {
	return &LoopbackRoom{doc: NewDoc("room"), peers: make(map[*Loopback]struct{})}
}

// Connect attaches a new peer.
func (r *LoopbackRoom) Connect() *Loopback {
	lb := &Loopback{room: r, updates: make(chan []Op, 64)}
	r.mu.Lock()
	r.peers[lb] = struct{}{}
	r.mu.Unlock()
	return lb
}

func (r *LoopbackRoom) broadcast(ops []Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc.Apply(ops...)
	for p := range r.peers {
		select {
		case p.updates <- ops:
		default:
			// slow peer; it falls behind rather than blocking the room
		}
	}
	return nil
}

// Loopback is one peer's transport to a LoopbackRoom.
type Loopback struct {
	room    *LoopbackRoom
	updates chan []Op
	once    sync.Once
	closed  bool
}

var _ Transport = (*Loopback)(nil)

func (l *Loopback) Snapshot(context.Context) ([]Op, error) {
	l.room.mu.Lock()
	defer l.room.mu.Unlock()
	return l.room.doc.Compact(), nil
}

func (l *Loopback) Send(_ context.Context, ops []Op) error {
	l.room.mu.Lock()
	closed := l.closed
	l.room.mu.Unlock()
	if closed {
		return ErrTransportClosed
	}
	return l.room.broadcast(ops)
}

func (l *Loopback) Updates() <-chan []Op { return l.updates }

// Close detaches the peer and closes its updates channel.
func (l *Loopback) Close() {
	l.once.Do(func() {
		l.room.mu.Lock()
		delete(l.room.peers, l)
		l.closed = true
		close(l.updates)
		l.room.mu.Unlock()
	})
}
