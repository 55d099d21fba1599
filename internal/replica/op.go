package replica

import (
	"encoding/json"
	"fmt"
)

// NodeID addresses a node in the shared tree.
type NodeID string

// Root is the object every document starts with.
const Root NodeID = "root"

// Kind is a node's shape.
type Kind string

const (
	// KindObject is a record of LWW fields and keyed child nodes.
	KindObject Kind = "object"
	// KindList is an ordered container; items sort by (pos, id).
	KindList Kind = "list"
)

// Stamp is a Lamport timestamp. Ties on Clock break on Client, so every
// stamp in a session is unique and totally ordered.
type Stamp struct {
	Clock  uint64 `json:"c"`
	Client string `json:"n"`
}

// Less reports whether s happened before o in the total order.
func (s Stamp) Less(o Stamp) bool {
	if s.Clock != o.Clock {
		return s.Clock < o.Clock
	}
	return s.Client < o.Client
}

// IsZero reports whether s is unset.
func (s Stamp) IsZero() bool { return s.Clock == 0 && s.Client == "" }

func (s Stamp) String() string { return fmt.Sprintf("%d@%s", s.Clock, s.Client) }

// OpType is the kind of change an Op makes.
type OpType string

const (
	OpCreate OpType = "create"
	OpSet    OpType = "set"
	OpDelete OpType = "delete"
	OpMove   OpType = "move"
)

// Op is one replicated change.
//
//   - create: Node is new; Parent is an object (child under Key) or a list
//     (item at Pos). Kind is the new node's shape.
//   - set: Key is the field name, Value its JSON encoding.
//   - delete: tombstones Node and, implicitly, its subtree.
//   - move: repositions Node inside Parent, which must be its current list.
type Op struct {
	Type     OpType          `json:"op"`
	Node     NodeID          `json:"node"`
	Parent   NodeID          `json:"parent,omitempty"`
	Key      string          `json:"key,omitempty"`
	Kind     Kind            `json:"kind,omitempty"`
	Pos      float64         `json:"pos,omitempty"`
	PosStamp *Stamp          `json:"pos_stamp,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Stamp    Stamp           `json:"stamp"`
}

func (o Op) String() string {
	switch o.Type {
	case OpSet:
		return fmt.Sprintf("set %s.%s=%s @%s", o.Node, o.Key, o.Value, o.Stamp)
	case OpMove:
		return fmt.Sprintf("move %s to %g @%s", o.Node, o.Pos, o.Stamp)
	case OpCreate:
		return fmt.Sprintf("create %s %s under %s @%s", o.Kind, o.Node, o.Parent, o.Stamp)
	default:
		return fmt.Sprintf("%s %s @%s", o.Type, o.Node, o.Stamp)
	}
}
