package card

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// UpdateCmd returns the card update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <card-id>",
		Short: "Update card fields",
		Long: `Update the title, description, priority or due date of a card.
Only the flags you pass are changed. Pass "none" to clear the priority or due
date, and an empty --description to clear the description.
Use 'groupboard card move' to change the card's list.`,
		Args: cobra.ExactArgs(1),
		RunE: handler.BoardCommand(runUpdate),
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New markdown description")
	cmd.Flags().String("priority", "", "New priority: low, medium, high or none")
	cmd.Flags().String("due", "", "New due date (YYYY-MM-DD) or none")

	return cmd
}

func runUpdate(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.CardID(args.Arg(0))
	if _, err := cli.RequireCard(s.Board.Board(), id); err != nil {
		return nil, err
	}

	var patch models.CardPatch
	if args.Has("title") {
		patch.Title = models.Some(strings.TrimSpace(args.GetString("title", "")))
	}
	if args.Has("description") {
		if desc := args.GetString("description", ""); desc == "" {
			patch.Description = models.Null[string]()
		} else {
			patch.Description = models.SomePtr(desc)
		}
	}
	if args.Has("priority") {
		p, err := cli.ParsePriority(args.GetString("priority", ""))
		if err != nil {
			return nil, err
		}
		patch.Priority = models.Some(p)
	}
	if args.Has("due") {
		d, err := cli.ParseDueDate(args.GetString("due", ""))
		if err != nil {
			return nil, err
		}
		patch.DueDate = models.Some(d)
	}

	if err := s.Board.UpdateCard(ctx, id, patch); err != nil {
		return nil, err
	}

	loc, err := cli.RequireCard(s.Board.Board(), id)
	if err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ Card %s updated successfully", id),
		Data:    loc.Card,
	}, nil
}
