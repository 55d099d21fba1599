package replica

import (
	"errors"
	"fmt"
	"time"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Keys of the board layout:
//
//	root
//	├── projectMeta {id, name, course, due_date}
//	└── lists [ {id, title} cards:[ {id, list_id, title, ...}
//	                checklists:[ {id, title} items:[ {id, text, is_done} ] ]
//	                activity:[ {id, type, content, ...} ] ] ]
//
// Item positions in a list are the domain positions. Activity is ordered
// newest first, so prepending takes a position below the current head.
const (
	KeyMeta       = "projectMeta"
	KeyLists      = "lists"
	KeyCards      = "cards"
	KeyChecklists = "checklists"
	KeyItems      = "items"
	KeyActivity   = "activity"
)

// Index maps domain ids to node ids in one materialized view.
type Index struct {
	Meta  NodeID
	Lists NodeID

	List  map[types.ListID]NodeID
	Cards map[types.ListID]NodeID // a list's cards container

	Card       map[types.CardID]NodeID
	Copies     map[types.CardID][]NodeID // losing clones of concurrent reparents
	Checklists map[types.CardID]NodeID
	Activity   map[types.CardID]NodeID

	Checklist map[types.ChecklistID]NodeID
	Items     map[types.ChecklistID]NodeID

	Item  map[types.ItemID]NodeID
	Entry map[types.ActivityID]NodeID
}

func newIndex() *Index {
	return &Index{
		List:       map[types.ListID]NodeID{},
		Cards:      map[types.ListID]NodeID{},
		Card:       map[types.CardID]NodeID{},
		Copies:     map[types.CardID][]NodeID{},
		Checklists: map[types.CardID]NodeID{},
		Activity:   map[types.CardID]NodeID{},
		Checklist:  map[types.ChecklistID]NodeID{},
		Items:      map[types.ChecklistID]NodeID{},
		Item:       map[types.ItemID]NodeID{},
		Entry:      map[types.ActivityID]NodeID{},
	}
}

// ============================================================================
// WRITE
// ============================================================================

// Hydrate writes the whole board into an empty tree.
func Hydrate(tx *Tx, p *models.Project) error {
	meta, err := tx.CreateObject(Root, KeyMeta)
	if err != nil {
		return err
	}
	if err := setAll(tx, meta, map[string]any{
		"id": p.ID, "name": p.Name, "course": p.Course, "due_date": p.DueDate,
	}); err != nil {
		return err
	}
	lists, err := tx.CreateList(Root, KeyLists)
	if err != nil {
		return err
	}
	for _, l := range p.Lists {
		if _, err := PutList(tx, lists, l); err != nil {
			return err
		}
	}
	return nil
}

// PutList inserts a list and everything under it.
func PutList(tx *Tx, lists NodeID, l *models.List) (NodeID, error) {
	n, err := tx.InsertObject(lists, l.Position)
	if err != nil {
		return "", err
	}
	if err := setAll(tx, n, map[string]any{"id": l.ID, "title": l.Title}); err != nil {
		return "", err
	}
	cards, err := tx.CreateList(n, KeyCards)
	if err != nil {
		return "", err
	}
	for _, c := range l.Cards {
		if _, err := PutCard(tx, cards, c); err != nil {
			return "", err
		}
	}
	return n, nil
}

// PutCard inserts a card with its checklists and activity.
func PutCard(tx *Tx, cards NodeID, c *models.Card) (NodeID, error) {
	n, err := tx.InsertObject(cards, c.Position)
	if err != nil {
		return "", err
	}
	assignees := c.Assignees
	if assignees == nil {
		assignees = []models.Assignee{}
	}
	if err := setAll(tx, n, map[string]any{
		"id": c.ID, "list_id": c.ListID, "title": c.Title, "description": c.Description,
		"priority": c.Priority, "due_date": c.DueDate, "assignees": assignees,
	}); err != nil {
		return "", err
	}
	checklists, err := tx.CreateList(n, KeyChecklists)
	if err != nil {
		return "", err
	}
	for _, cl := range c.Checklists {
		if _, err := PutChecklist(tx, checklists, cl); err != nil {
			return "", err
		}
	}
	feed, err := tx.CreateList(n, KeyActivity)
	if err != nil {
		return "", err
	}
	for i, a := range c.Activity {
		if _, err := PutActivity(tx, feed, a, float64(i+1)); err != nil {
			return "", err
		}
	}
	return n, nil
}

// PutChecklist inserts a checklist with its items.
func PutChecklist(tx *Tx, checklists NodeID, cl *models.Checklist) (NodeID, error) {
	n, err := tx.InsertObject(checklists, cl.Position)
	if err != nil {
		return "", err
	}
	if err := setAll(tx, n, map[string]any{"id": cl.ID, "title": cl.Title}); err != nil {
		return "", err
	}
	items, err := tx.CreateList(n, KeyItems)
	if err != nil {
		return "", err
	}
	for _, it := range cl.Items {
		if _, err := PutItem(tx, items, it); err != nil {
			return "", err
		}
	}
	return n, nil
}

// PutItem inserts a checklist item.
func PutItem(tx *Tx, items NodeID, it *models.ChecklistItem) (NodeID, error) {
	n, err := tx.InsertObject(items, it.Position)
	if err != nil {
		return "", err
	}
	return n, setAll(tx, n, map[string]any{"id": it.ID, "text": it.Text, "is_done": it.IsDone})
}

// PutActivity inserts an activity entry at pos; lower is newer.
func PutActivity(tx *Tx, feed NodeID, a *models.Activity, pos float64) (NodeID, error) {
	n, err := tx.InsertObject(feed, pos)
	if err != nil {
		return "", err
	}
	return n, setAll(tx, n, map[string]any{
		"id": a.ID, "user_id": a.UserID, "type": a.Type, "content": a.Content,
		"created_at": a.CreatedAt, "user_username": a.Username, "user_avatar_url": a.AvatarURL,
	})
}

// ReparentCard moves a card into another list. Items cannot change
// containers, so the card subtree is cloned under the destination and the
// source node is deleted. The clone gets new node ids; the domain ids stay.
// Copies left by concurrent reparents of the same card are deleted too.
func ReparentCard(tx *Tx, idx *Index, c *models.Card, to types.ListID, pos float64) (NodeID, error) {
	if _, ok := idx.Card[c.ID]; !ok {
		return "", fmt.Errorf("%w: card %s", ErrUnknownNode, c.ID)
	}
	dest, ok := idx.Cards[to]
	if !ok {
		return "", fmt.Errorf("%w: list %s", ErrUnknownNode, to)
	}
	clone := *c
	clone.ListID = to
	clone.Position = pos
	n, err := PutCard(tx, dest, &clone)
	if err != nil {
		return "", err
	}
	return n, DeleteCard(tx, idx, c.ID)
}

// DeleteCard tombstones a card node and every copy of it.
func DeleteCard(tx *Tx, idx *Index, id types.CardID) error {
	src, ok := idx.Card[id]
	if !ok {
		return fmt.Errorf("%w: card %s", ErrUnknownNode, id)
	}
	if err := tx.Delete(src); err != nil {
		return err
	}
	for _, n := range idx.Copies[id] {
		if err := tx.Delete(n); err != nil && !errors.Is(err, ErrUnknownNode) {
			return err
		}
	}
	return nil
}

func setAll(tx *Tx, n NodeID, fields map[string]any) error {
	for k, v := range fields {
		if err := tx.Set(n, k, v); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// READ
// ============================================================================

// Materialize reads the tree back as a sorted board. It returns nil when
// the tree holds no board yet.
//
// Two peers reparenting the same card at once each leave a clone. Only the
// clone with the highest create stamp is read; the others are listed in
// Index.Copies and stay hidden until a delete or reparent removes them.
func Materialize(d *Doc) (*models.Project, *Index) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := newIndex()
	meta := d.childLocked(Root, KeyMeta)
	lists := d.childLocked(Root, KeyLists)
	if meta == nil || lists == nil {
		return nil, idx
	}
	idx.Meta, idx.Lists = meta.id, lists.id

	p := &models.Project{Lists: []*models.List{}}
	d.decodeLocked(meta, "id", &p.ID)
	d.decodeLocked(meta, "name", &p.Name)
	d.decodeLocked(meta, "course", &p.Course)
	d.decodeLocked(meta, "due_date", &p.DueDate)

	winners := d.cardWinnersLocked(lists.id)
	for _, ln := range d.itemsLocked(lists.id) {
		l := &models.List{Position: ln.pos, Cards: []*models.Card{}}
		d.decodeLocked(ln, "id", &l.ID)
		d.decodeLocked(ln, "title", &l.Title)
		idx.List[l.ID] = ln.id
		if cards := d.childLocked(ln.id, KeyCards); cards != nil {
			idx.Cards[l.ID] = cards.id
			for _, cn := range d.itemsLocked(cards.id) {
				var id types.CardID
				d.decodeLocked(cn, "id", &id)
				if winners[id] != cn.id {
					idx.Copies[id] = append(idx.Copies[id], cn.id)
					continue
				}
				l.Cards = append(l.Cards, d.readCardLocked(cn, l.ID, idx))
			}
		}
		p.Lists = append(p.Lists, l)
	}
	return p, idx
}

// cardWinnersLocked picks, per card id, the live card node with the highest
// create stamp across every list.
func (d *Doc) cardWinnersLocked(lists NodeID) map[types.CardID]NodeID {
	best := map[types.CardID]*node{}
	for _, ln := range d.itemsLocked(lists) {
		cards := d.childLocked(ln.id, KeyCards)
		if cards == nil {
			continue
		}
		for _, cn := range d.itemsLocked(cards.id) {
			var id types.CardID
			d.decodeLocked(cn, "id", &id)
			if cur, ok := best[id]; !ok || cur.created.Less(cn.created) {
				best[id] = cn
			}
		}
	}
	out := make(map[types.CardID]NodeID, len(best))
	for id, n := range best {
		out[id] = n.id
	}
	return out
}

func (d *Doc) readCardLocked(cn *node, listID types.ListID, idx *Index) *models.Card {
	c := &models.Card{Position: cn.pos, ListID: listID}
	d.decodeLocked(cn, "id", &c.ID)
	d.decodeLocked(cn, "title", &c.Title)
	d.decodeLocked(cn, "description", &c.Description)
	d.decodeLocked(cn, "priority", &c.Priority)
	d.decodeLocked(cn, "due_date", &c.DueDate)
	d.decodeLocked(cn, "assignees", &c.Assignees)
	idx.Card[c.ID] = cn.id

	if cls := d.childLocked(cn.id, KeyChecklists); cls != nil {
		idx.Checklists[c.ID] = cls.id
		for _, kn := range d.itemsLocked(cls.id) {
			cl := &models.Checklist{Position: kn.pos, Items: []*models.ChecklistItem{}}
			d.decodeLocked(kn, "id", &cl.ID)
			d.decodeLocked(kn, "title", &cl.Title)
			idx.Checklist[cl.ID] = kn.id
			if items := d.childLocked(kn.id, KeyItems); items != nil {
				idx.Items[cl.ID] = items.id
				for _, in := range d.itemsLocked(items.id) {
					it := &models.ChecklistItem{Position: in.pos}
					d.decodeLocked(in, "id", &it.ID)
					d.decodeLocked(in, "text", &it.Text)
					d.decodeLocked(in, "is_done", &it.IsDone)
					idx.Item[it.ID] = in.id
					cl.Items = append(cl.Items, it)
				}
			}
			c.Checklists = append(c.Checklists, cl)
		}
	}
	if feed := d.childLocked(cn.id, KeyActivity); feed != nil {
		idx.Activity[c.ID] = feed.id
		for _, an := range d.itemsLocked(feed.id) {
			a := &models.Activity{}
			var created time.Time
			d.decodeLocked(an, "id", &a.ID)
			d.decodeLocked(an, "user_id", &a.UserID)
			d.decodeLocked(an, "type", &a.Type)
			d.decodeLocked(an, "content", &a.Content)
			if d.decodeLocked(an, "created_at", &created) {
				a.CreatedAt = created
			}
			d.decodeLocked(an, "user_username", &a.Username)
			d.decodeLocked(an, "user_avatar_url", &a.AvatarURL)
			idx.Entry[a.ID] = an.id
			c.Activity = append(c.Activity, a)
		}
	}
	c.Normalize()
	return c
}

// headPos returns the position that sorts before every live item of list.
func headPos(d *Doc, list NodeID) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	items := d.itemsLocked(list)
	if len(items) == 0 {
		return 1
	}
	return items[0].pos - 1
}
