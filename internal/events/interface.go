package events

import (
	"context"

	"github.com/thenoetrevino/groupboard/internal/replica"
)

// RoomTransport is a replica transport with a connection lifecycle.
type RoomTransport interface {
	replica.Transport

	// Connect dials the room and waits for its snapshot
	Connect(ctx context.Context) error

	// Close disconnects and closes the updates channel
	Close() error
}

// Compile-time verification that *Client implements RoomTransport
var _ RoomTransport = (*Client)(nil)
