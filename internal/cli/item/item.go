// Package item holds all cli commands related to checklist items
//
// e.g., groupboard item ...
package item

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

// ItemCmd returns the item parent command
func ItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage checklist items",
	}
	cli.AddSessionFlags(cmd)

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(CheckCmd())
	cmd.AddCommand(UncheckCmd())
	cmd.AddCommand(RenameCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

// AddCmd returns the item add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <checklist-id>",
		Short: "Append an item to a checklist",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runAdd, "text"),
	}
	cmd.Flags().String("text", "", "Item text (required)")
	return cmd
}

func runAdd(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	checklistID := types.ChecklistID(args.Arg(0))
	card, cl, err := cli.LocateChecklist(s.Board.Board(), checklistID)
	if err != nil {
		return nil, err
	}
	it, err := s.Board.AddChecklistItem(ctx, card.ID, checklistID, args.GetString("text", ""))
	if err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(it.ID),
		Message: fmt.Sprintf("✓ Item '%s' added to '%s' (ID: %s)", it.Text, cl.Title, it.ID),
		Data:    it,
	}, nil
}

// CheckCmd returns the item check subcommand
func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <item-id>",
		Short: "Mark an item done",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(toggle(true)),
	}
}

// UncheckCmd returns the item uncheck subcommand
func UncheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uncheck <item-id>",
		Short: "Mark an item not done",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(toggle(false)),
	}
}

func toggle(done bool) func(context.Context, *handler.Arguments, *handler.Session) (any, error) {
	return func(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
		id := types.ItemID(args.Arg(0))
		patch := models.ChecklistItemPatch{IsDone: models.Some(done)}
		cl, err := update(ctx, s, id, patch)
		if err != nil {
			return nil, err
		}
		completed, total := cl.Progress()
		verb := "checked"
		if !done {
			verb = "unchecked"
		}
		return cli.Result{
			ID:      string(id),
			Message: fmt.Sprintf("✓ Item %s %s (%d/%d done)", id, verb, completed, total),
			Data:    map[string]any{"item_id": id, "is_done": done, "done": completed, "total": total},
		}, nil
	}
}

// RenameCmd returns the item rename subcommand
func RenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <item-id>",
		Short: "Change an item's text",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runRename, "text"),
	}
	cmd.Flags().String("text", "", "New text (required)")
	return cmd
}

func runRename(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.ItemID(args.Arg(0))
	text := strings.TrimSpace(args.GetString("text", ""))
	if _, err := update(ctx, s, id, models.ChecklistItemPatch{Text: models.Some(text)}); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ Item %s renamed to '%s'", id, text),
		Data:    map[string]any{"item_id": id, "text": text},
	}, nil
}

// update applies patch to the item and returns its checklist as it is afterwards.
func update(ctx context.Context, s *handler.Session, id types.ItemID, patch models.ChecklistItemPatch) (*models.Checklist, error) {
	card, cl, _, err := cli.LocateItem(s.Board.Board(), id)
	if err != nil {
		return nil, err
	}
	if err := s.Board.UpdateChecklistItem(ctx, card.ID, cl.ID, id, patch); err != nil {
		return nil, err
	}
	if _, after, _, err := cli.LocateItem(s.Board.Board(), id); err == nil {
		return after, nil
	}
	return cl, nil
}

// DeleteCmd returns the item delete subcommand
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete a checklist item",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.BoardCommand(runDelete),
	}
}

func runDelete(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	id := types.ItemID(args.Arg(0))
	card, cl, it, err := cli.LocateItem(s.Board.Board(), id)
	if err != nil {
		return nil, err
	}
	if err := s.Board.DeleteChecklistItem(ctx, card.ID, cl.ID, id); err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(id),
		Message: fmt.Sprintf("✓ Item '%s' deleted", it.Text),
		Data:    map[string]any{"item_id": id},
	}, nil
}
