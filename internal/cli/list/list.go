// Package list holds all cli commands related to board lists
//
// e.g., groupboard list ...
package list

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
)

// ListCmd returns the list parent command
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage the lists of a board",
	}
	cli.AddSessionFlags(cmd)

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(RenameCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(MoveCmd())

	return cmd
}
