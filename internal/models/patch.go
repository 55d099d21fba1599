package models

import (
	"encoding/json"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/types"
)

// FieldError reports which input field failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// ValidateTitle checks a list, card or checklist title.
func ValidateTitle(field, title string) error {
	t := strings.TrimSpace(title)
	if t == "" {
		return fieldErr(field, ErrEmptyTitle)
	}
	if len(t) > MaxTitleLength {
		return fieldErr(field, ErrTitleTooLong)
	}
	return nil
}

func validatePriority(p *Priority) error {
	if p != nil && !p.Valid() {
		return fieldErr("priority", ErrInvalidPriority)
	}
	return nil
}

func validateDate(d *Date) error {
	if d != nil && !d.Valid() {
		return fieldErr("due_date", ErrInvalidDate)
	}
	return nil
}

func decodeRaw(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ============================================================================
// PROJECT
// ============================================================================

// ProjectPatch is a partial update of project metadata
type ProjectPatch struct {
	Name    Optional[string]
	Course  Optional[*string]
	DueDate Optional[*Date]
}

func (p ProjectPatch) Empty() bool { return !p.Name.Set && !p.Course.Set && !p.DueDate.Set }

func (p ProjectPatch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Name.Set && strings.TrimSpace(p.Name.Value) == "" {
		return fieldErr("name", ErrEmptyName)
	}
	if p.DueDate.Set {
		return validateDate(p.DueDate.Value)
	}
	return nil
}

// Apply returns a copy of proj with the patch applied. Lists are shared.
func (p ProjectPatch) Apply(proj *Project) *Project {
	out := *proj
	if p.Name.Set {
		out.Name = p.Name.Value
	}
	if p.Course.Set {
		out.Course = p.Course.Value
	}
	if p.DueDate.Set {
		out.DueDate = p.DueDate.Value
	}
	return &out
}

// Inverse returns the patch that restores proj's values for the fields p touches.
func (p ProjectPatch) Inverse(proj *Project) ProjectPatch {
	var inv ProjectPatch
	if p.Name.Set {
		inv.Name = Some(proj.Name)
	}
	if p.Course.Set {
		inv.Course = Some(proj.Course)
	}
	if p.DueDate.Set {
		inv.DueDate = Some(proj.DueDate)
	}
	return inv
}

func (p ProjectPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	p.Name.put(m, "name")
	p.Course.put(m, "course")
	p.DueDate.put(m, "due_date")
	return json.Marshal(m)
}

// UnmarshalJSON reads only the whitelisted keys; anything else is ignored.
func (p *ProjectPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	if err := take(raw, "name", &p.Name); err != nil {
		return err
	}
	if err := take(raw, "course", &p.Course); err != nil {
		return err
	}
	return take(raw, "due_date", &p.DueDate)
}

// ============================================================================
// LIST
// ============================================================================

// ListPatch is a partial update of a list
type ListPatch struct {
	Title    Optional[string]
	Position Optional[float64]
}

func (p ListPatch) Empty() bool { return !p.Title.Set && !p.Position.Set }

func (p ListPatch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Title.Set {
		return ValidateTitle("title", p.Title.Value)
	}
	return nil
}

// Apply returns a copy of l with the patch applied. Cards are shared.
func (p ListPatch) Apply(l *List) *List {
	out := *l
	if p.Title.Set {
		out.Title = p.Title.Value
	}
	if p.Position.Set {
		out.Position = p.Position.Value
	}
	return &out
}

func (p ListPatch) Inverse(l *List) ListPatch {
	var inv ListPatch
	if p.Title.Set {
		inv.Title = Some(l.Title)
	}
	if p.Position.Set {
		inv.Position = Some(l.Position)
	}
	return inv
}

func (p ListPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	p.Title.put(m, "title")
	p.Position.put(m, "position")
	return json.Marshal(m)
}

func (p *ListPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	if err := take(raw, "title", &p.Title); err != nil {
		return err
	}
	return take(raw, "position", &p.Position)
}

// ============================================================================
// CARD
// ============================================================================

// CardPatch is a partial update of a card's scalar fields.
// ListID set together with Position is a cross-list move.
type CardPatch struct {
	Title       Optional[string]
	Description Optional[*string]
	Priority    Optional[*Priority]
	DueDate     Optional[*Date]
	Position    Optional[float64]
	ListID      Optional[types.ListID]
}

func (p CardPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Priority.Set &&
		!p.DueDate.Set && !p.Position.Set && !p.ListID.Set
}

func (p CardPatch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Title.Set {
		if err := ValidateTitle("title", p.Title.Value); err != nil {
			return err
		}
	}
	if p.Priority.Set {
		if err := validatePriority(p.Priority.Value); err != nil {
			return err
		}
	}
	if p.DueDate.Set {
		if err := validateDate(p.DueDate.Value); err != nil {
			return err
		}
	}
	if p.ListID.Set && p.ListID.Value == "" {
		return fieldErr("list_id", ErrEmptyPatch)
	}
	return nil
}

// Apply returns a copy of c with the patch applied. Nested collections are shared.
func (p CardPatch) Apply(c *Card) *Card {
	out := *c
	if p.Title.Set {
		out.Title = p.Title.Value
	}
	if p.Description.Set {
		out.Description = p.Description.Value
	}
	if p.Priority.Set {
		out.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		out.DueDate = p.DueDate.Value
	}
	if p.Position.Set {
		out.Position = p.Position.Value
	}
	if p.ListID.Set {
		out.ListID = p.ListID.Value
	}
	return &out
}

func (p CardPatch) Inverse(c *Card) CardPatch {
	var inv CardPatch
	if p.Title.Set {
		inv.Title = Some(c.Title)
	}
	if p.Description.Set {
		inv.Description = Some(c.Description)
	}
	if p.Priority.Set {
		inv.Priority = Some(c.Priority)
	}
	if p.DueDate.Set {
		inv.DueDate = Some(c.DueDate)
	}
	if p.Position.Set {
		inv.Position = Some(c.Position)
	}
	if p.ListID.Set {
		inv.ListID = Some(c.ListID)
	}
	return inv
}

func (p CardPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	p.Title.put(m, "title")
	p.Description.put(m, "description")
	p.Priority.put(m, "priority")
	p.DueDate.put(m, "due_date")
	p.Position.put(m, "position")
	p.ListID.put(m, "list_id")
	return json.Marshal(m)
}

func (p *CardPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	if err := take(raw, "title", &p.Title); err != nil {
		return err
	}
	if err := take(raw, "description", &p.Description); err != nil {
		return err
	}
	if err := take(raw, "priority", &p.Priority); err != nil {
		return err
	}
	if err := take(raw, "due_date", &p.DueDate); err != nil {
		return err
	}
	if err := take(raw, "position", &p.Position); err != nil {
		return err
	}
	return take(raw, "list_id", &p.ListID)
}

// ============================================================================
// CHECKLIST
// ============================================================================

// ChecklistPatch is a partial update of a checklist
type ChecklistPatch struct {
	Title    Optional[string]
	Position Optional[float64]
}

func (p ChecklistPatch) Empty() bool { return !p.Title.Set && !p.Position.Set }

func (p ChecklistPatch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Title.Set {
		return ValidateTitle("title", p.Title.Value)
	}
	return nil
}

func (p ChecklistPatch) Apply(cl *Checklist) *Checklist {
	out := *cl
	if p.Title.Set {
		out.Title = p.Title.Value
	}
	if p.Position.Set {
		out.Position = p.Position.Value
	}
	return &out
}

func (p ChecklistPatch) Inverse(cl *Checklist) ChecklistPatch {
	var inv ChecklistPatch
	if p.Title.Set {
		inv.Title = Some(cl.Title)
	}
	if p.Position.Set {
		inv.Position = Some(cl.Position)
	}
	return inv
}

func (p ChecklistPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	p.Title.put(m, "title")
	p.Position.put(m, "position")
	return json.Marshal(m)
}

func (p *ChecklistPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	if err := take(raw, "title", &p.Title); err != nil {
		return err
	}
	return take(raw, "position", &p.Position)
}

// ============================================================================
// CHECKLIST ITEM
// ============================================================================

// ChecklistItemPatch is a partial update of a checklist item
type ChecklistItemPatch struct {
	Text     Optional[string]
	IsDone   Optional[bool]
	Position Optional[float64]
}

func (p ChecklistItemPatch) Empty() bool { return !p.Text.Set && !p.IsDone.Set && !p.Position.Set }

func (p ChecklistItemPatch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Text.Set && strings.TrimSpace(p.Text.Value) == "" {
		return fieldErr("text", ErrEmptyText)
	}
	return nil
}

func (p ChecklistItemPatch) Apply(it *ChecklistItem) *ChecklistItem {
	out := *it
	if p.Text.Set {
		out.Text = p.Text.Value
	}
	if p.IsDone.Set {
		out.IsDone = p.IsDone.Value
	}
	if p.Position.Set {
		out.Position = p.Position.Value
	}
	return &out
}

func (p ChecklistItemPatch) Inverse(it *ChecklistItem) ChecklistItemPatch {
	var inv ChecklistItemPatch
	if p.Text.Set {
		inv.Text = Some(it.Text)
	}
	if p.IsDone.Set {
		inv.IsDone = Some(it.IsDone)
	}
	if p.Position.Set {
		inv.Position = Some(it.Position)
	}
	return inv
}

func (p ChecklistItemPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	p.Text.put(m, "text")
	p.IsDone.put(m, "is_done")
	p.Position.put(m, "position")
	return json.Marshal(m)
}

func (p *ChecklistItemPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	if err := take(raw, "text", &p.Text); err != nil {
		return err
	}
	if err := take(raw, "is_done", &p.IsDone); err != nil {
		return err
	}
	return take(raw, "position", &p.Position)
}
