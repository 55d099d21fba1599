package list

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// DeleteCmd returns the list delete subcommand
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <list-id>",
		Short: "Delete a list and every card on it",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runDelete),
	}
}

func runDelete(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.ListID(args.Arg(0))
	_, l, err := cli.RequireList(s.Board.Board(), id)
	if err != nil {
		return nil, err
	}
	cards := len(l.Cards)
	if err := s.Board.DeleteList(ctx, id); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ List '%s' deleted with %s", l.Title, cli.Plural(cards, "card")),
		Data:    map[string]any{"list_id": id, "cards_deleted": cards},
	}, nil
}
