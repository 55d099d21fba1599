// Package board holds the commands that display a whole board
//
// e.g., groupboard board show
package board

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/cli/styles"
)

// BoardCmd returns the board parent command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Display a project board",
	}
	cli.AddSessionFlags(cmd)

	cmd.AddCommand(ShowCmd())

	return cmd
}

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Show every list and card of the current project",
		Long: `Show the board of the current project with list and card ids.

Examples:
  groupboard board show p1
  groupboard board show --project=p1
  groupboard board show --json | jq '.data.lists[].title'`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: cli.ProjectArg,
		RunE:    handler.BoardCommand(runShow),
	}
}

func runShow(_ context.Context, _ *handler.Arguments, s *handler.Session) (any, error) {
	p := s.Board.Board()
	if p == nil {
		return nil, fmt.Errorf("board %s is not loaded", s.ProjectID)
	}
	return cli.Result{
		ID:      string(p.ID),
		Message: styles.RenderBoard(p),
		Data:    p,
	}, nil
}
