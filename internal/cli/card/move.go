package card

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// MoveCmd returns the card move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <card-id>",
		Short: "Move a card within its list or to another list",
		Long: `Move a card to a zero based slot of a list. Without --to the card stays
in its list; without --index it goes to the bottom.

Examples:
  groupboard card move c3 --index=0         # top of its list
  groupboard card move c1 --to=l2           # bottom of another list
  groupboard card move c1 --to=l2 --index=1`,
		Args: cobra.ExactArgs(1),
		RunE: handler.BoardCommand(runMove),
	}

	cmd.Flags().String("to", "", "Destination list ID (defaults to the card's list)")
	cmd.Flags().Int("index", 0, "Destination index (defaults to the bottom)")

	return cmd
}

func runMove(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.CardID(args.Arg(0))
	p := s.Board.Board()
	loc, err := cli.RequireCard(p, id)
	if err != nil {
		return nil, err
	}

	to := loc.List.ID
	if args.Has("to") {
		to = types.ListID(args.GetString("to", ""))
	}
	_, dest, err := cli.RequireList(p, to)
	if err != nil {
		return nil, err
	}

	index, ok, err := handler.NewFlagParser(args.GetCmd()).ParseIndex("index")
	if err != nil {
		return nil, cli.Usage(err)
	}
	if !ok {
		index = len(dest.Cards)
	}

	plan, out := dnd.PlanDrop(p, dnd.DropResult{
		DraggableID: string(id),
		Kind:        dnd.KindCard,
		Source:      dnd.Location{ContainerID: string(loc.List.ID), Index: loc.CardIndex},
		Destination: &dnd.Location{ContainerID: string(to), Index: index},
	})
	switch {
	case out.Kind == dnd.Invalid:
		return nil, out.Err
	case plan.Card == nil:
		return cli.Result{ID: string(id), Message: fmt.Sprintf("Card %s is already there", id)}, nil
	}

	if err := s.Board.MoveCard(ctx, *plan.Card); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ Card '%s' moved to '%s' at index %d (%s)", loc.Card.Title, dest.Title, plan.Card.Index, out.Kind),
		Data: map[string]any{
			"card_id":  id,
			"list_id":  to,
			"index":    plan.Card.Index,
			"position": plan.Card.Position,
		},
	}, nil
}
