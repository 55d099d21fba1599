// Package card holds all cli commands related to cards
//
// e.g., groupboard card ...
package card

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
)

// CardCmd returns the card parent command
func CardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}
	cli.AddSessionFlags(cmd)

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(ShowCmd())

	return cmd
}
