package use

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ProjectCmd returns the use project subcommand
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project [project-id]",
		Short: "Set project context for current shell session",
		Long: `Set the current project context using environment variables.
This command outputs shell commands that should be evaluated:

  eval $(groupboard use project p1)        # Use project p1
  eval $(groupboard use project --clear)   # Clear project context
  groupboard use project --show            # Show current project

The GROUPBOARD_PROJECT environment variable will be set in your current shell
session only. The --project flag on other commands takes precedence over
this environment variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUseProject,
	}

	cmd.Flags().Bool("clear", false, "Clear the current project context")
	cmd.Flags().Bool("show", false, "Show the current project context")
	cmd.Flags().Bool("dry-run", false, "Show what would be exported without outputting shell commands")

	return cmd
}

func runUseProject(cmd *cobra.Command, args []string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	showFlag, _ := cmd.Flags().GetBool("show")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if showFlag {
		return showCurrentProject(cmd)
	}

	if clearFlag {
		if dryRun {
			fmt.Fprintf(stderr, "Would clear %s\n", cli.ProjectEnv)
			return nil
		}
		fmt.Fprintf(stdout, "unset %s\n", cli.ProjectEnv)
		fmt.Fprintf(stderr, "Cleared project context\n")
		return nil
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return cli.Usage(fmt.Errorf("project ID required\nUsage: eval $(groupboard use project <project-id>)"))
	}
	projectID := types.ProjectID(strings.TrimSpace(args[0]))

	c, release, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("initialization error: %w", err)
	}
	defer release()

	// Validate project exists
	project, err := c.App.Remote().GetBoard(cmd.Context(), projectID)
	if err != nil {
		fmt.Fprintf(stderr, "Error: project %s not found\n", projectID)
		fmt.Fprintf(stderr, "Suggestion: Use 'groupboard project list' to see available projects\n")
		return cli.Reported(err)
	}

	if dryRun {
		fmt.Fprintf(stderr, "Would set %s=%s (%s)\n", cli.ProjectEnv, projectID, project.Name)
		return nil
	}

	fmt.Fprintf(stdout, "export %s=%s\n", cli.ProjectEnv, projectID)
	fmt.Fprintf(stderr, "Now using project %s: %s\n", projectID, project.Name)

	return nil
}

func showCurrentProject(cmd *cobra.Command) error {
	stdout := cmd.OutOrStdout()
	current := strings.TrimSpace(os.Getenv(cli.ProjectEnv))
	if current == "" {
		fmt.Fprintln(stdout, "No project context set")
		fmt.Fprintln(stdout, "Use 'eval $(groupboard use project <project-id>)' to set one")
		return nil
	}

	c, release, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("initialization error: %w", err)
	}
	defer release()

	project, err := c.App.Remote().GetBoard(cmd.Context(), types.ProjectID(current))
	if err != nil {
		fmt.Fprintf(stdout, "Current project: %s (project not found)\n", current)
		return nil
	}

	fmt.Fprintf(stdout, "Current project: %s (%s)\n", current, project.Name)
	return nil
}
