package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		avatar_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		course TEXT,
		due_date TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_collaborators (
		project_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		PRIMARY KEY (project_id, user_id),
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		position REAL NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lists_project ON lists(project_id, position)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		list_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		priority TEXT,
		due_date TEXT,
		position REAL NOT NULL,
		FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_project ON cards(project_id)`,
	`CREATE TABLE IF NOT EXISTS card_assignees (
		card_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (card_id, user_id),
		FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS checklists (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL,
		title TEXT NOT NULL,
		position REAL NOT NULL,
		FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS checklist_items (
		id TEXT PRIMARY KEY,
		checklist_id TEXT NOT NULL,
		text TEXT NOT NULL,
		is_done INTEGER NOT NULL DEFAULT 0,
		position REAL NOT NULL,
		FOREIGN KEY (checklist_id) REFERENCES checklists(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS card_activity (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_card ON card_activity(card_id, created_at)`,
}

// runMigrations creates the database schema
func runMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
