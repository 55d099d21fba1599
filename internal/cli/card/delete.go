package card

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// DeleteCmd returns the card delete subcommand
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runDelete),
	}
}

func runDelete(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.CardID(args.Arg(0))
	loc, err := cli.RequireCard(s.Board.Board(), id)
	if err != nil {
		return nil, err
	}
	if err := s.Board.DeleteCard(ctx, id); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ Card '%s' deleted", loc.Card.Title),
		Data:    map[string]any{"card_id": id},
	}, nil
}
