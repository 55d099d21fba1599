package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Collaborator roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// ProjectRepo handles projects, membership and the nested board read.
type ProjectRepo struct {
	db *sql.DB
}

// CreateProject creates a project and makes userID its owner.
func (r *ProjectRepo) CreateProject(ctx context.Context, userID types.UserID, req persistence.CreateProjectRequest) (*models.ProjectSummary, error) {
	name := strings.TrimSpace(req.Title)
	if name == "" {
		return nil, models.ErrEmptyName
	}
	id := types.ProjectID(newID())

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, course, due_date, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, name, nullString(req.Course), nullDate(req.DueDate), userID, now(),
		); err != nil {
			return fmt.Errorf("failed to insert project '%s': %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_collaborators (project_id, user_id, role) VALUES (?, ?, ?)`,
			id, userID, RoleOwner,
		); err != nil {
			return fmt.Errorf("failed to add owner to project %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.ProjectSummary{ID: id, Name: name, Course: req.Course, DueDate: req.DueDate, Role: RoleOwner}, nil
}

// ListProjects returns the projects userID collaborates on, by name.
func (r *ProjectRepo) ListProjects(ctx context.Context, userID types.UserID) ([]*models.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.course, p.due_date, c.role
		FROM projects p
		JOIN project_collaborators c ON c.project_id = p.id
		WHERE c.user_id = ?
		ORDER BY p.name, p.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying projects for user %s: %w", userID, err)
	}
	defer rows.Close()

	out := []*models.ProjectSummary{}
	for rows.Next() {
		var (
			p      models.ProjectSummary
			course sql.NullString
			due    sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &course, &due, &p.Role); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.Course = stringPtr(course)
		p.DueDate = datePtr(due)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) getProject(ctx context.Context, q querier, id types.ProjectID) (*models.Project, error) {
	var (
		p      models.Project
		course sql.NullString
		due    sql.NullString
	)
	err := q.QueryRowContext(ctx, `SELECT id, name, course, due_date FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &course, &due)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project %s: %w", id, err)
	}
	p.Course = stringPtr(course)
	p.DueDate = datePtr(due)
	return &p, nil
}

// UpdateProject applies a partial update and returns the project without
// its lists.
func (r *ProjectRepo) UpdateProject(ctx context.Context, id types.ProjectID, patch models.ProjectPatch) (*models.Project, error) {
	var u update
	if v, ok := patch.Name.Get(); ok {
		u.set("name", strings.TrimSpace(v))
	}
	if v, ok := patch.Course.Get(); ok {
		u.set("course", nullString(v))
	}
	if v, ok := patch.DueDate.Get(); ok {
		u.set("due_date", nullDate(v))
	}
	if err := u.exec(ctx, r.db, "projects", "project", string(id)); err != nil {
		return nil, err
	}
	return r.getProject(ctx, r.db, id)
}

// DeleteProject removes the project and, by cascade, everything in it.
func (r *ProjectRepo) DeleteProject(ctx context.Context, id types.ProjectID) error {
	return deleteByID(ctx, r.db, "projects", "project", string(id))
}

// AddCollaborator adds or re-roles a member.
func (r *ProjectRepo) AddCollaborator(ctx context.Context, projectID types.ProjectID, userID types.UserID, role string) error {
	if role == "" {
		role = RoleMember
	}
	if _, err := r.getProject(ctx, r.db, projectID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_collaborators (project_id, user_id, role) VALUES (?, ?, ?)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = excluded.role`,
		projectID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to add collaborator %s to project %s: %w", userID, projectID, err)
	}
	return nil
}

// IsCollaborator reports whether userID is a member of the project. A missing
// project reports false.
func (r *ProjectRepo) IsCollaborator(ctx context.Context, projectID types.ProjectID, userID types.UserID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_collaborators WHERE project_id = ? AND user_id = ?`,
		projectID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of %s in %s: %w", userID, projectID, err)
	}
	return n > 0, nil
}

// ============================================================================
// BOARD
// ============================================================================

// GetBoard reads the whole nested board with one query per table.
func (r *ProjectRepo) GetBoard(ctx context.Context, id types.ProjectID) (*models.Project, error) {
	p, err := r.getProject(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	p.Lists = []*models.List{}

	lists := map[types.ListID]*models.List{}
	err = eachRow(ctx, r.db, `SELECT id, title, position FROM lists WHERE project_id = ? ORDER BY position, id`, id, func(rows *sql.Rows) error {
		l := &models.List{Cards: []*models.Card{}}
		if err := rows.Scan(&l.ID, &l.Title, &l.Position); err != nil {
			return err
		}
		lists[l.ID] = l
		p.Lists = append(p.Lists, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying lists for project %s: %w", id, err)
	}

	cards := map[types.CardID]*models.Card{}
	err = eachRow(ctx, r.db, `
		SELECT id, list_id, title, description, priority, due_date, position
		FROM cards WHERE project_id = ? ORDER BY position, id`, id, func(rows *sql.Rows) error {
		c, err := scanCard(rows)
		if err != nil {
			return err
		}
		if l := lists[c.ListID]; l != nil {
			l.Cards = append(l.Cards, c)
			cards[c.ID] = c
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying cards for project %s: %w", id, err)
	}

	err = eachRow(ctx, r.db, `
		SELECT a.card_id, a.user_id, COALESCE(pr.username, ''), COALESCE(pr.avatar_url, '')
		FROM card_assignees a
		JOIN cards c ON c.id = a.card_id
		LEFT JOIN profiles pr ON pr.id = a.user_id
		WHERE c.project_id = ? ORDER BY a.user_id`, id, func(rows *sql.Rows) error {
		var (
			cardID types.CardID
			a      models.Assignee
		)
		if err := rows.Scan(&cardID, &a.UserID, &a.Username, &a.AvatarURL); err != nil {
			return err
		}
		if c := cards[cardID]; c != nil {
			c.Assignees = append(c.Assignees, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying assignees for project %s: %w", id, err)
	}

	checklists := map[types.ChecklistID]*models.Checklist{}
	err = eachRow(ctx, r.db, `
		SELECT k.card_id, k.id, k.title, k.position
		FROM checklists k JOIN cards c ON c.id = k.card_id
		WHERE c.project_id = ? ORDER BY k.position, k.id`, id, func(rows *sql.Rows) error {
		var cardID types.CardID
		cl := &models.Checklist{Items: []*models.ChecklistItem{}}
		if err := rows.Scan(&cardID, &cl.ID, &cl.Title, &cl.Position); err != nil {
			return err
		}
		if c := cards[cardID]; c != nil {
			c.Checklists = append(c.Checklists, cl)
			checklists[cl.ID] = cl
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying checklists for project %s: %w", id, err)
	}

	err = eachRow(ctx, r.db, `
		SELECT i.checklist_id, i.id, i.text, i.is_done, i.position
		FROM checklist_items i
		JOIN checklists k ON k.id = i.checklist_id
		JOIN cards c ON c.id = k.card_id
		WHERE c.project_id = ? ORDER BY i.position, i.id`, id, func(rows *sql.Rows) error {
		var checklistID types.ChecklistID
		it := &models.ChecklistItem{}
		if err := rows.Scan(&checklistID, &it.ID, &it.Text, &it.IsDone, &it.Position); err != nil {
			return err
		}
		if cl := checklists[checklistID]; cl != nil {
			cl.Items = append(cl.Items, it)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying checklist items for project %s: %w", id, err)
	}

	err = eachRow(ctx, r.db, `
		SELECT a.card_id, `+activityColumns+`
		FROM card_activity a
		JOIN cards c ON c.id = a.card_id
		LEFT JOIN profiles pr ON pr.id = a.user_id
		WHERE c.project_id = ? ORDER BY a.created_at DESC, a.id`, id, func(rows *sql.Rows) error {
		var cardID types.CardID
		a, err := scanActivity(rows, &cardID)
		if err != nil {
			return err
		}
		if c := cards[cardID]; c != nil {
			c.Activity = append(c.Activity, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying activity for project %s: %w", id, err)
	}

	return p, nil
}

// eachRow runs query with one argument and calls fn per row.
func eachRow(ctx context.Context, q querier, query string, arg any, fn func(*sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
