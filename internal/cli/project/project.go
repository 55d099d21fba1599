// Package project holds all cli commands related to projects
//
// e.g., groupboard project ...
package project

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
)

// ProjectCmd returns the project parent command
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cli.AddSessionFlags(cmd)

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}
