package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
)

// CreateCmd returns the project create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long: `Create a new project. You become its owner.

Examples:
  # Simple project (human-readable output)
  groupboard project create --title="Capstone"

  # JSON output for agents
  groupboard project create --title="Capstone" --json

  # Quiet mode for bash capture
  PROJECT_ID=$(groupboard project create --title="Capstone" --quiet)

  # With course and due date
  groupboard project create \
    --title="Capstone" \
    --course="CS 410" \
    --due=2025-05-01
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.Func(runCreate), handler.Require("title")),
	}

	cmd.Flags().String("title", "", "Project title (required)")
	cmd.Flags().String("course", "", "Course the project belongs to")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")

	return cmd
}

func runCreate(ctx context.Context, args *handler.Arguments) (any, error) {
	title := strings.TrimSpace(args.GetString("title", ""))
	if title == "" {
		return nil, &models.FieldError{Field: "name", Err: models.ErrEmptyName}
	}

	req := persistence.CreateProjectRequest{Title: title}
	if course := strings.TrimSpace(args.GetString("course", "")); course != "" {
		req.Course = &course
	}
	due, err := cli.ParseDueDate(args.GetString("due", ""))
	if err != nil {
		return nil, err
	}
	req.DueDate = due

	project, err := args.CLI.App.Remote().CreateProject(ctx, req)
	if err != nil {
		return nil, err
	}

	return cli.Result{
		ID:      string(project.ID),
		Message: fmt.Sprintf("✓ Project '%s' created successfully (ID: %s)", project.Name, project.ID),
		Data:    project,
	}, nil
}
