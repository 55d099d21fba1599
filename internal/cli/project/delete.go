package project

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
)

// DeleteCmd returns the project delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project",
		Long:  "Delete the current project with all its lists and cards (requires confirmation unless --force or --quiet).",
		Args:  cobra.NoArgs,
		RunE:  handler.SimpleCommand(handler.Func(runDelete)),
	}

	cmd.Flags().Bool("force", false, "Skip confirmation")

	return cmd
}

func runDelete(ctx context.Context, args *handler.Arguments) (any, error) {
	projectID, err := cli.GetProjectID(args.GetCmd())
	if err != nil {
		return nil, err
	}

	e, err := args.CLI.App.OpenBoard(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	cmd := args.GetCmd()
	quiet, _ := cmd.Flags().GetBool("quiet")
	if !args.GetBool("force") && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete project %s: '%s'? (y/N): ", projectID, e.Board().Name)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			return cli.Result{Message: "Cancelled"}, nil
		}
	}

	if err := e.DeleteProject(ctx); err != nil {
		return nil, err
	}

	return cli.Result{
		Message: fmt.Sprintf("✓ Project %s deleted successfully", projectID),
		Data:    map[string]any{"project_id": projectID},
	}, nil
}
