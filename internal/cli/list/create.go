package list

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
)

// CreateCmd returns the list create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a list to the board",
		Long: `Append a new list after the existing ones.

Examples:
  groupboard list create --title="In review"
  LIST_ID=$(groupboard list create --title="Done" --quiet)`,
		Args: cobra.NoArgs,
		RunE: handler.BoardCommand(runCreate, "title"),
	}

	cmd.Flags().String("title", "", "List title (required)")

	return cmd
}

func runCreate(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	l, err := s.Board.CreateList(ctx, args.GetString("title", ""))
	if err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(l.ID),
		Message: fmt.Sprintf("✓ List '%s' created successfully (ID: %s)", l.Title, l.ID),
		Data:    l,
	}, nil
}
