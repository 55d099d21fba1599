package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/cli/styles"
	"github.com/thenoetrevino/groupboard/internal/models"
)

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Long:  "List every project you own or collaborate on.",
		Args:  cobra.NoArgs,
		RunE:  handler.SimpleCommand(handler.Func(runList)),
	}
}

func runList(ctx context.Context, args *handler.Arguments) (any, error) {
	projects, err := args.CLI.App.Remote().ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		return cli.Result{Message: "No projects found", Data: projects}, nil
	}

	ids := make([]string, 0, len(projects))
	lines := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, string(p.ID))
		lines = append(lines, describe(p))
	}
	return cli.Result{
		ID:      strings.Join(ids, "\n"),
		Message: strings.Join(lines, "\n"),
		Data:    projects,
	}, nil
}

func describe(p *models.ProjectSummary) string {
	line := fmt.Sprintf("%s  %s", styles.SubtitleStyle.Render(string(p.ID)), styles.TitleStyle.Render(p.Name))
	var meta []string
	if p.Course != nil && *p.Course != "" {
		meta = append(meta, *p.Course)
	}
	if p.DueDate != nil {
		meta = append(meta, "due "+string(*p.DueDate))
	}
	if p.Role != "" {
		meta = append(meta, p.Role)
	}
	if len(meta) > 0 {
		line += "  " + styles.ValueStyle.Render("("+strings.Join(meta, ", ")+")")
	}
	return line
}
