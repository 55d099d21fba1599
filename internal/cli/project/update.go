package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/models"
)

// UpdateCmd returns the project update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update project details",
		Long: `Update the name, course or due date of the current project.
Only the flags you pass are changed. Pass "none" to clear the course or due date.

Examples:
  groupboard project update --project=p1 --name="Capstone II"
  groupboard project update --due=none`,
		Args: cobra.NoArgs,
		RunE: handler.BoardCommand(runUpdate),
	}

	cmd.Flags().String("name", "", "New project name")
	cmd.Flags().String("course", "", "New course, or \"none\"")
	cmd.Flags().String("due", "", "New due date (YYYY-MM-DD), or \"none\"")

	return cmd
}

func runUpdate(ctx context.Context, args *handler.Arguments, s *handler.Session) (any, error) {
	var patch models.ProjectPatch
	if args.Has("name") {
		patch.Name = models.Some(strings.TrimSpace(args.GetString("name", "")))
	}
	if args.Has("course") {
		course := strings.TrimSpace(args.GetString("course", ""))
		if course == "" || strings.EqualFold(course, "none") {
			patch.Course = models.Null[string]()
		} else {
			patch.Course = models.SomePtr(course)
		}
	}
	if args.Has("due") {
		due, err := cli.ParseDueDate(args.GetString("due", ""))
		if err != nil {
			return nil, err
		}
		patch.DueDate = models.Some(due)
	}

	if err := s.Board.UpdateProject(ctx, patch); err != nil {
		return nil, err
	}

	p := s.Board.Board()
	return cli.Result{
		ID:      string(p.ID),
		Message: fmt.Sprintf("✓ Project %s updated successfully", p.ID),
		Data:    summary(p),
	}, nil
}

func summary(p *models.Project) *models.ProjectSummary {
	return &models.ProjectSummary{ID: p.ID, Name: p.Name, Course: p.Course, DueDate: p.DueDate}
}
