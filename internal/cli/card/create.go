package card

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/engine"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// CreateCmd returns the card create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a card to the bottom of a list",
		Long: `Add a card to the bottom of a list.

Examples:
  # Simple card (human-readable output)
  groupboard card create --list=l1 --title="Draft outline"

  # Quiet mode for bash capture
  CARD_ID=$(groupboard card create --list=l1 --title="Collect data" --quiet)

  # With details
  groupboard card create \
    --list=l1 \
    --title="Book room" \
    --description="Ask the library for **room 2**" \
    --priority=high \
    --due=2025-04-10
`,
		Args: cobra.NoArgs,
		RunE: handler.BoardCommand(runCreate, "list", "title"),
	}

	cmd.Flags().String("list", "", "List ID (required)")
	cmd.Flags().String("title", "", "Card title (required)")
	cmd.Flags().String("description", "", "Markdown description")
	cmd.Flags().String("priority", "", "Priority: low, medium, high")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")

	return cmd
}

func runCreate(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	listID := types.ListID(args.GetString("list", ""))
	_, l, err := cli.RequireList(s.Board.Board(), listID)
	if err != nil {
		return nil, err
	}

	in := engine.NewCard{Title: args.GetString("title", "")}
	if args.Has("description") {
		desc := args.GetString("description", "")
		in.Description = &desc
	}
	if in.Priority, err = cli.ParsePriority(args.GetString("priority", "")); err != nil {
		return nil, err
	}
	if in.DueDate, err = cli.ParseDueDate(args.GetString("due", "")); err != nil {
		return nil, err
	}

	created, err := s.Board.CreateCard(ctx, listID, in)
	if err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(created.ID),
		Message: fmt.Sprintf("✓ Card '%s' created in '%s' (ID: %s)", created.Title, l.Title, created.ID),
		Data:    created,
	}, nil
}
