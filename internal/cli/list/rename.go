package list

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// RenameCmd returns the list rename subcommand
func RenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <list-id>",
		Short: "Rename a list",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runRename, "title"),
	}

	cmd.Flags().String("title", "", "New title (required)")

	return cmd
}

func runRename(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.ListID(args.Arg(0))
	if _, _, err := cli.RequireList(s.Board.Board(), id); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(args.GetString("title", ""))
	if err := s.Board.RenameList(ctx, id, title); err != nil {
		return nil, err
	}

	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ List %s renamed to '%s'", id, title),
		Data:    s.Board.Board().List(id),
	}, nil
}
