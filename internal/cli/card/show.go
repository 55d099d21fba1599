package card

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/cli/styles"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ShowCmd returns the card show subcommand
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show card details",
		Long:  "Display all details of a card including description, checklists and comments.",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runShow),
	}
}

func runShow(_ context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	loc, err := cli.RequireCard(s.Board.Board(), types.CardID(args.Arg(0)))
	if err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(loc.Card.ID),
		Message: styles.RenderCard(loc.Card, loc.List.Title),
		Data:    loc.Card,
	}, nil
}
