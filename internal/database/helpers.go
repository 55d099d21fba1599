package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/groupboard/internal/models"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// notFound wraps ErrNotFound with the entity name.
func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func newID() string { return uuid.NewString() }

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() string { return time.Now().UTC().Format(timeLayout) }

// nextPosition returns max(position)+1 over the rows matching where, or 1.
func nextPosition(ctx context.Context, q querier, table, where string, arg any) (float64, error) {
	var highest sql.NullFloat64
	query := fmt.Sprintf("SELECT MAX(position) FROM %s WHERE %s = ?", table, where)
	if err := q.QueryRowContext(ctx, query, arg).Scan(&highest); err != nil {
		return 0, fmt.Errorf("failed to read max position from %s: %w", table, err)
	}
	if !highest.Valid {
		return 1, nil
	}
	return highest.Float64 + 1, nil
}

// update accumulates SET clauses of a partial update.
type update struct {
	cols []string
	args []any
}

func (u *update) set(col string, v any) {
	u.cols = append(u.cols, col+" = ?")
	u.args = append(u.args, v)
}

// exec runs the update against id. A missing row is ErrNotFound.
func (u *update) exec(ctx context.Context, q querier, table, what, id string) error {
	if len(u.cols) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(u.cols, ", "))
	res, err := q.ExecContext(ctx, query, append(u.args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", what, id, err)
	}
	return requireRow(res, what)
}

// deleteByID removes one row. A missing row is ErrNotFound.
func deleteByID(ctx context.Context, q querier, table, what, id string) error {
	res, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", what, id, err)
	}
	return requireRow(res, what)
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(what)
	}
	return nil
}

// ============================================================================
// NULLABLE COLUMNS
// ============================================================================

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullDate(d *models.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*d), Valid: true}
}

func nullPriority(p *models.Priority) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func datePtr(ns sql.NullString) *models.Date {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := models.ParseDate(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

// priorityPtr reads a stored priority case-insensitively. Unknown values read
// as unset.
func priorityPtr(ns sql.NullString) *models.Priority {
	if !ns.Valid {
		return nil
	}
	p, err := models.ParsePriority(ns.String)
	if err != nil {
		return nil
	}
	return &p
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
