package list

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/dnd"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// MoveCmd returns the list move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <list-id>",
		Short: "Reorder a list on the board",
		Long: `Move a list to a zero based slot among the other lists.

Examples:
  groupboard list move l2 --index=0     # make it the first list
  groupboard list move l1 --index=99    # indexes past the end append`,
		Args: cobra.ExactArgs(1),
		RunE: handler.BoardCommand(runMove, "index"),
	}

	cmd.Flags().Int("index", 0, "Destination index (required)")

	return cmd
}

func runMove(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.ListID(args.Arg(0))
	p := s.Board.Board()
	current, _, err := cli.RequireList(p, id)
	if err != nil {
		return nil, err
	}
	index, _, err := handler.NewFlagParser(args.GetCmd()).ParseIndex("index")
	if err != nil {
		return nil, cli.Usage(err)
	}

	plan, out := dnd.PlanDrop(p, dnd.DropResult{
		DraggableID: string(id),
		Kind:        dnd.KindList,
		Source:      dnd.Location{ContainerID: string(p.ID), Index: current},
		Destination: &dnd.Location{ContainerID: string(p.ID), Index: index},
	})
	switch {
	case out.Kind == dnd.Invalid:
		return nil, out.Err
	case plan.List == nil:
		return cli.Result{ID: string(id), Message: fmt.Sprintf("List %s is already at index %d", id, current)}, nil
	}

	if err := s.Board.MoveList(ctx, *plan.List); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ List %s moved to index %d", id, plan.List.Index),
		Data:    map[string]any{"list_id": id, "index": plan.List.Index, "position": plan.List.Position},
	}, nil
}
