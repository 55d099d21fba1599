// Package comment holds the cli commands that post card comments
//
// e.g., groupboard comment add ...
package comment

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// CommentCmd returns the comment parent command
func CommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Comment on cards",
	}
	cli.AddSessionFlags(cmd)

	cmd.AddCommand(AddCmd())

	return cmd
}

// AddCmd returns the comment add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <card-id> [text...]",
		Short: "Post a comment on a card",
		Long: `Post a comment on a card as the user your token names.

Examples:
  groupboard comment add c1 "Sources are in the shared drive"
  groupboard comment add c1 --content="Moved to Friday"`,
		Args: cobra.MinimumNArgs(1),
		RunE: handler.BoardCommand(runAdd),
	}
	cmd.Flags().String("content", "", "Comment text (or pass it after the card id)")
	return cmd
}

func runAdd(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	cardID := types.CardID(args.Arg(0))
	loc, err := cli.RequireCard(s.Board.Board(), cardID)
	if err != nil {
		return nil, err
	}

	content := args.GetString("content", "")
	if len(args.Args) > 1 {
		content = strings.Join(args.Args[1:], " ")
	}

	a, err := s.Board.AddComment(ctx, cardID, content)
	if err != nil {
		return nil, err
	}
	return cli.Result{
		ID:      string(a.ID),
		Message: fmt.Sprintf("✓ %s commented on '%s'", a.Username, loc.Card.Title),
		Data:    a,
	}, nil
}
