package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli/board"
	"github.com/thenoetrevino/groupboard/internal/cli/card"
	"github.com/thenoetrevino/groupboard/internal/cli/checklist"
	"github.com/thenoetrevino/groupboard/internal/cli/comment"
	"github.com/thenoetrevino/groupboard/internal/cli/item"
	"github.com/thenoetrevino/groupboard/internal/cli/list"
	"github.com/thenoetrevino/groupboard/internal/cli/project"
	"github.com/thenoetrevino/groupboard/internal/cli/token"
	"github.com/thenoetrevino/groupboard/internal/cli/use"
	"github.com/thenoetrevino/groupboard/internal/cli/watch"
)

var rootCmd = NewRootCmd()

// NewRootCmd builds the groupboard command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groupboard",
		Short: "Groupboard - a shared kanban board for group projects",
		Long: `Groupboard keeps a group project's lists, cards and checklists in one place.
Changes apply instantly and are saved in the background; pass --live to make
them through the project's room so every teammate sees them as they happen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(project.ProjectCmd())
	cmd.AddCommand(board.BoardCmd())
	cmd.AddCommand(list.ListCmd())
	cmd.AddCommand(card.CardCmd())
	cmd.AddCommand(checklist.ChecklistCmd())
	cmd.AddCommand(item.ItemCmd())
	cmd.AddCommand(comment.CommentCmd())
	cmd.AddCommand(watch.WatchCmd())
	cmd.AddCommand(token.TokenCmd())
	cmd.AddCommand(use.UseCmd())

	return cmd
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
