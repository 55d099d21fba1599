// Package checklist holds all cli commands related to card checklists
//
// e.g., groupboard checklist ...
package checklist

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ChecklistCmd returns the checklist parent command
func ChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Manage card checklists",
	}
	cli.AddSessionFlags(cmd)

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(RenameCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

// AddCmd returns the checklist add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <card-id>",
		Short: "Add a checklist to a card",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runAdd, "title"),
	}
	cmd.Flags().String("title", "", "Checklist title (required)")
	return cmd
}

func runAdd(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	cardID := types.CardID(args.Arg(0))
	loc, err := cli.RequireCard(s.Board.Board(), cardID)
	if err != nil {
		return nil, err
	}
	cl, err := s.Board.CreateChecklist(ctx, cardID, args.GetString("title", ""))
	if err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(cl.ID),
		Message: fmt.Sprintf("✓ Checklist '%s' added to '%s' (ID: %s)", cl.Title, loc.Card.Title, cl.ID),
		Data:    cl,
	}, nil
}

// RenameCmd returns the checklist rename subcommand
func RenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <checklist-id>",
		Short: "Rename a checklist",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runRename, "title"),
	}
	cmd.Flags().String("title", "", "New title (required)")
	return cmd
}

func runRename(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.ChecklistID(args.Arg(0))
	card, _, err := cli.LocateChecklist(s.Board.Board(), id)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(args.GetString("title", ""))
	if err := s.Board.RenameChecklist(ctx, card.ID, id, title); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ Checklist %s renamed to '%s'", id, title),
		Data:    map[string]any{"checklist_id": id, "title": title},
	}, nil
}

// DeleteCmd returns the checklist delete subcommand
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <checklist-id>",
		Short: "Delete a checklist and its items",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runDelete),
	}
}

func runDelete(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.ChecklistID(args.Arg(0))
	card, cl, err := cli.LocateChecklist(s.Board.Board(), id)
	if err != nil {
		return nil, err
	}
	if err := s.Board.DeleteChecklist(ctx, card.ID, id); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ Checklist '%s' deleted with %s", cl.Title, cli.Plural(len(cl.Items), "item")),
		Data:    map[string]any{"checklist_id": id},
	}, nil
}
