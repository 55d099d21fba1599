package engine

import (
	"log/slog"
	"time"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/notify"
	"github.com/thenoetrevino/groupboard/internal/selection"
)

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each persistence call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithNotices shares a notice center with other components.
func WithNotices(c *notify.Center) Option {
	return func(e *Engine) { e.notices = c }
}

// WithSelection shares a selection state with the presentation layer.
func WithSelection(s *selection.State) Option {
	return func(e *Engine) { e.selection = s }
}

// WithAuthor sets the identity shown on optimistic comments.
func WithAuthor(a models.Assignee) Option {
	return func(e *Engine) { e.author = a }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock replaces time.Now for placeholder timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}
