// Package replica keeps a board in a shared tree that every connected client
// edits directly.
//
// The tree is an operation-based CRDT. Scalar fields and positions are
// last-writer-wins under Lamport stamps, deletes are permanent tombstones,
// and a keyed child of an object is won by the create with the highest
// stamp. Applying an op twice is harmless, so a client can apply the echo of
// its own writes.
package replica

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrUnknownNode        = errors.New("unknown node")
	ErrDeletedNode        = errors.New("node is deleted")
	ErrNotObject          = errors.New("node is not an object")
	ErrNotList            = errors.New("node is not a list")
	ErrCrossContainerMove = errors.New("nodes can only move within their own list")
)

type field struct {
	value json.RawMessage
	stamp Stamp
}

type node struct {
	id      NodeID
	kind    Kind
	parent  NodeID
	key     string
	created Stamp
	deleted bool

	fields   map[string]field
	children map[string]NodeID // object: key -> winning child
	items    []NodeID          // list: membership, unordered

	pos      float64
	posStamp Stamp
}

// Doc is one replica of the shared tree.
type Doc struct {
	mu        sync.RWMutex
	client    string
	clock     uint64
	nodes     map[NodeID]*node
	observers map[int]func(ops []Op, local bool)
	nextObsID int
}

// NewDoc creates an empty replica for client, which must be unique among
// the peers of a room.
func NewDoc(client string) *Doc {
	d := &Doc{
		client:    client,
		nodes:     make(map[NodeID]*node),
		observers: make(map[int]func([]Op, bool)),
	}
	d.nodes[Root] = &node{id: Root, kind: KindObject, fields: map[string]field{}, children: map[string]NodeID{}}
	return d
}

// Client returns the replica's client id.
func (d *Doc) Client() string { return d.client }

// Empty reports whether the root has no live children.
func (d *Doc) Empty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, id := range d.nodes[Root].children {
		if n := d.nodes[id]; n != nil && !n.deleted {
			return false
		}
	}
	return true
}

// Subscribe registers fn to run after every batch or merge that touched the
// tree. It runs outside the document lock.
func (d *Doc) Subscribe(fn func(ops []Op, local bool)) (cancel func()) {
	d.mu.Lock()
	id := d.nextObsID
	d.nextObsID++
	d.observers[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

// Batch runs fn against a transaction. Every op fn issues is applied
// immediately; the ops are returned for the caller to send to peers. If fn
// fails, ops already applied stay applied and are still returned.
func (d *Doc) Batch(fn func(tx *Tx) error) ([]Op, error) {
	d.mu.Lock()
	tx := &Tx{d: d}
	err := fn(tx)
	ops := tx.ops
	d.mu.Unlock()

	if len(ops) > 0 {
		d.notify(ops, true)
	}
	return ops, err
}

// Apply merges remote ops. Unknown, stale and duplicate ops are skipped.
// It returns the number of ops that changed the tree.
func (d *Doc) Apply(ops ...Op) int {
	d.mu.Lock()
	changed := 0
	for _, op := range ops {
		if op.Stamp.Clock > d.clock {
			d.clock = op.Stamp.Clock
		}
		if d.applyLocked(op) {
			changed++
		}
	}
	d.mu.Unlock()

	if changed > 0 {
		d.notify(ops, false)
	}
	return changed
}

// Compact returns ops that rebuild the live tree with its original stamps.
// Tombstoned and shadowed nodes are left out.
func (d *Doc) Compact() []Op {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var ops []Op
	d.compactLocked(d.nodes[Root], &ops)
	return ops
}

func (d *Doc) compactLocked(n *node, ops *[]Op) {
	keys := make([]string, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		f := n.fields[k]
		*ops = append(*ops, Op{Type: OpSet, Node: n.id, Key: k, Value: f.value, Stamp: f.stamp})
	}

	var kids []*node
	switch n.kind {
	case KindObject:
		kids = d.childrenLocked(n)
	case KindList:
		kids = d.itemsLocked(n.id)
	}
	for _, c := range kids {
		op := Op{Type: OpCreate, Node: c.id, Parent: n.id, Kind: c.kind, Stamp: c.created}
		if n.kind == KindObject {
			op.Key = c.key
		} else {
			ps := c.posStamp
			op.Pos = c.pos
			op.PosStamp = &ps
		}
		*ops = append(*ops, op)
		d.compactLocked(c, ops)
	}
}

func (d *Doc) notify(ops []Op, local bool) {
	d.mu.RLock()
	fns := make([]func([]Op, bool), 0, len(d.observers))
	for _, fn := range d.observers {
		fns = append(fns, fn)
	}
	d.mu.RUnlock()
	for _, fn := range fns {
		fn(ops, local)
	}
}

// ============================================================================
// MERGE
// ============================================================================

func (d *Doc) live(id NodeID) *node {
	n := d.nodes[id]
	if n == nil || n.deleted {
		return nil
	}
	return n
}

func (d *Doc) applyLocked(op Op) bool {
	switch op.Type {
	case OpCreate:
		return d.createLocked(op)
	case OpSet:
		n := d.live(op.Node)
		if n == nil {
			return false
		}
		if cur, ok := n.fields[op.Key]; ok && !cur.stamp.Less(op.Stamp) {
			return false
		}
		n.fields[op.Key] = field{value: op.Value, stamp: op.Stamp}
		return true
	case OpDelete:
		n := d.live(op.Node)
		if n == nil || n.id == Root {
			return false
		}
		n.deleted = true
		return true
	case OpMove:
		n := d.live(op.Node)
		if n == nil || (op.Parent != "" && op.Parent != n.parent) {
			return false
		}
		if p := d.nodes[n.parent]; p == nil || p.kind != KindList {
			return false
		}
		if !n.posStamp.Less(op.Stamp) {
			return false
		}
		n.pos = op.Pos
		n.posStamp = op.Stamp
		return true
	}
	return false
}

func (d *Doc) createLocked(op Op) bool {
	if _, exists := d.nodes[op.Node]; exists {
		return false
	}
	parent := d.live(op.Parent)
	if parent == nil {
		return false
	}
	n := &node{
		id:      op.Node,
		kind:    op.Kind,
		parent:  op.Parent,
		created: op.Stamp,
		fields:  map[string]field{},
	}
	if n.kind == KindObject {
		n.children = map[string]NodeID{}
	}

	switch parent.kind {
	case KindObject:
		n.key = op.Key
		d.nodes[n.id] = n
		if cur, ok := parent.children[op.Key]; ok {
			if winner := d.nodes[cur]; winner != nil && !winner.created.Less(op.Stamp) {
				return true // shadowed by an earlier-applied, later-stamped create
			}
		}
		parent.children[op.Key] = n.id
	case KindList:
		n.pos = op.Pos
		n.posStamp = op.Stamp
		if op.PosStamp != nil {
			n.posStamp = *op.PosStamp
		}
		d.nodes[n.id] = n
		parent.items = append(parent.items, n.id)
	}
	return true
}

// ============================================================================
// READS (d.mu held)
// ============================================================================

// childLocked returns the live winning child of an object under key.
func (d *Doc) childLocked(obj NodeID, key string) *node {
	o := d.live(obj)
	if o == nil || o.kind != KindObject {
		return nil
	}
	return d.live(o.children[key])
}

func (d *Doc) childrenLocked(o *node) []*node {
	keys := make([]string, 0, len(o.children))
	for k := range o.children {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*node, 0, len(keys))
	for _, k := range keys {
		if c := d.live(o.children[k]); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// itemsLocked returns a list's live items ordered by (pos, id).
func (d *Doc) itemsLocked(list NodeID) []*node {
	l := d.live(list)
	if l == nil || l.kind != KindList {
		return nil
	}
	out := make([]*node, 0, len(l.items))
	for _, id := range l.items {
		if n := d.live(id); n != nil {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b *node) int {
		if c := cmp.Compare(a.pos, b.pos); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	return out
}

func (d *Doc) decodeLocked(n *node, key string, dst any) bool {
	f, ok := n.fields[key]
	if !ok || len(f.value) == 0 {
		return false
	}
	return json.Unmarshal(f.value, dst) == nil
}

// ============================================================================
// TRANSACTIONS
// ============================================================================

// Tx issues local ops inside Doc.Batch.
type Tx struct {
	d   *Doc
	ops []Op
}

func (tx *Tx) stamp() Stamp {
	tx.d.clock++
	return Stamp{Clock: tx.d.clock, Client: tx.d.client}
}

func (tx *Tx) emit(op Op) {
	tx.d.applyLocked(op)
	tx.ops = append(tx.ops, op)
}

// CreateObject creates an object under key of the object parent. An existing
// child under the same key is superseded.
func (tx *Tx) CreateObject(parent NodeID, key string) (NodeID, error) {
	return tx.createKeyed(parent, key, KindObject)
}

// CreateList creates a list under key of the object parent.
func (tx *Tx) CreateList(parent NodeID, key string) (NodeID, error) {
	return tx.createKeyed(parent, key, KindList)
}

// InsertObject creates an object item in list at pos.
func (tx *Tx) InsertObject(list NodeID, pos float64) (NodeID, error) {
	l := tx.d.live(list)
	if l == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, list)
	}
	if l.kind != KindList {
		return "", fmt.Errorf("%w: %s", ErrNotList, list)
	}
	s := tx.stamp()
	id := NodeID(s.String())
	tx.emit(Op{Type: OpCreate, Node: id, Parent: list, Kind: KindObject, Pos: pos, Stamp: s})
	return id, nil
}

func (tx *Tx) createKeyed(parent NodeID, key string, kind Kind) (NodeID, error) {
	p := tx.d.live(parent)
	if p == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, parent)
	}
	if p.kind != KindObject {
		return "", fmt.Errorf("%w: %s", ErrNotObject, parent)
	}
	s := tx.stamp()
	id := NodeID(s.String())
	tx.emit(Op{Type: OpCreate, Node: id, Parent: parent, Key: key, Kind: kind, Stamp: s})
	return id, nil
}

// Set writes a field of an object.
func (tx *Tx) Set(obj NodeID, key string, value any) error {
	n := tx.d.live(obj)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, obj)
	}
	if n.kind != KindObject {
		return fmt.Errorf("%w: %s", ErrNotObject, obj)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s.%s: %w", obj, key, err)
	}
	tx.emit(Op{Type: OpSet, Node: obj, Key: key, Value: raw, Stamp: tx.stamp()})
	return nil
}

// Delete tombstones a node and its subtree.
func (tx *Tx) Delete(id NodeID) error {
	if id == Root {
		return fmt.Errorf("%w: root cannot be deleted", ErrDeletedNode)
	}
	if tx.d.live(id) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	tx.emit(Op{Type: OpDelete, Node: id, Stamp: tx.stamp()})
	return nil
}

// Move repositions an item inside list, which must be the list holding it.
func (tx *Tx) Move(id, list NodeID, pos float64) error {
	n := tx.d.live(id)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if n.parent != list {
		return fmt.Errorf("%w: %s is not in %s", ErrCrossContainerMove, id, list)
	}
	if p := tx.d.nodes[list]; p == nil || p.kind != KindList {
		return fmt.Errorf("%w: %s", ErrNotList, list)
	}
	tx.emit(Op{Type: OpMove, Node: id, Parent: list, Pos: pos, Stamp: tx.stamp()})
	return nil
}

// Pos returns the position of an item, for callers planning moves.
func (tx *Tx) Pos(id NodeID) (float64, bool) {
	n := tx.d.live(id)
	if n == nil {
		return 0, false
	}
	return n.pos, true
}
