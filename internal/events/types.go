package events

import "github.com/thenoetrevino/groupboard/internal/replica"

// ProtocolVersion is the room wire protocol version.
const ProtocolVersion = 1

// MessageType indicates what a frame carries
type MessageType string

const (
	// MessageSnapshot is sent by the daemon on join: the room's compacted ops
	// and the sequence they are current to.
	MessageSnapshot MessageType = "snapshot"
	// MessageOps carries a batch. Clients send it without a sequence; the
	// daemon echoes it to every peer with the room sequence set.
	MessageOps MessageType = "ops"
	// MessageError reports a rejected frame.
	MessageError MessageType = "error"
)

// Message is one websocket frame
type Message struct {
	Version int          `json:"v"`
	Type    MessageType  `json:"type"`
	Room    string       `json:"room,omitempty"`
	Seq     int64        `json:"seq,omitempty"`
	Ops     []replica.Op `json:"ops,omitempty"`
	Error   string       `json:"error,omitempty"`
}
