// Package cli holds the shared plumbing of the groupboard command line:
// session setup, output formatting and exit codes.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/thenoetrevino/groupboard/internal/app"
	"github.com/thenoetrevino/groupboard/internal/cli/styles"
	"github.com/thenoetrevino/groupboard/internal/config"
	"github.com/thenoetrevino/groupboard/internal/logging"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// CLI represents the CLI application context
type CLI struct {
	App *app.App // Application container with services

	logs io.Closer
}

// New wraps an existing App, e.g. one built on a fake remote in tests.
func New(a *app.App) *CLI {
	return &CLI{App: a}
}

// NewCLI loads the user's configuration, installs the file logger and
// connects the App to the configured server.
func NewCLI() (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// The terminal belongs to command output, so the CLI always logs to a file
	logCfg := cfg.Log
	if logCfg.File == "" {
		if path, err := logging.DefaultFile(); err == nil {
			logCfg.File = path
		}
	}
	closer, err := logging.Init(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	styles.Init(cfg.Theme)

	return &CLI{
		App:  app.New(cfg, app.WithLogger(logging.Logger)),
		logs: closer,
	}, nil
}

// Session opens a project board. With live set it joins the project's room
// so the change reaches every connected peer; otherwise it works against the
// server directly. The returned func releases the session.
func (c *CLI) Session(ctx context.Context, id types.ProjectID, live bool) (app.Board, func(), error) {
	if live {
		room, err := c.App.JoinRoom(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return room, func() {
			if err := room.Close(); err != nil {
				slog.Warn("room closed with error", "project_id", id, "error", err)
			}
		}, nil
	}

	e, err := c.App.OpenBoard(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return e, e.Close, nil
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	err := c.App.Close()
	if c.logs != nil {
		if cerr := c.logs.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type contextKey struct{}

// WithCLI returns a context carrying c. Commands run with it use c instead
// of building their own.
func WithCLI(ctx context.Context, c *CLI) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// GetCLIFromContext returns the CLI carried by ctx, or builds one from the
// user's configuration. The returned func must be called when the command is
// done; it only closes CLIs this call created.
func GetCLIFromContext(ctx context.Context) (*CLI, func(), error) {
	if ctx != nil {
		if c, ok := ctx.Value(contextKey{}).(*CLI); ok && c != nil {
			return c, func() {}, nil
		}
	}
	c, err := NewCLI()
	if err != nil {
		return nil, nil, err
	}
	return c, func() {
		if err := c.Close(); err != nil {
			slog.Error("error closing CLI", "error", err)
		}
	}, nil
}
