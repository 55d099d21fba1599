package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ProjectEnv names the variable set by 'groupboard use project'.
const ProjectEnv = "GROUPBOARD_PROJECT"

// ErrNoProject is returned when neither --project nor GROUPBOARD_PROJECT is set.
var ErrNoProject = errors.New("no project specified: use --project or set " + ProjectEnv)

// AddSessionFlags registers the flags every board command understands.
// They are persistent so noun commands pass them on to their verbs.
func AddSessionFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Bool("json", false, "Output in JSON format")
	flags.Bool("quiet", false, "Minimal output (ID only)")
	flags.String("project", "", "Project ID (defaults to $"+ProjectEnv+")")
	flags.Bool("live", false, "Apply changes through the project's live room")
}

// Formatter builds the output formatter from --json and --quiet, writing to
// the command's configured streams.
func Formatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quietMode,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

// GetProjectID resolves the project from --project, then from
// GROUPBOARD_PROJECT. The flag takes precedence.
func GetProjectID(cmd *cobra.Command) (types.ProjectID, error) {
	if f := cmd.Flags().Lookup("project"); f != nil {
		if v := strings.TrimSpace(f.Value.String()); v != "" {
			return types.ProjectID(v), nil
		}
	}
	if v := strings.TrimSpace(os.Getenv(ProjectEnv)); v != "" {
		return types.ProjectID(v), nil
	}
	return "", Usage(ErrNoProject)
}

// IsLive reports whether --live was set.
func IsLive(cmd *cobra.Command) bool {
	live, _ := cmd.Flags().GetBool("live")
	return live
}

// LocateChecklist finds a checklist by id alone, returning the card it is on.
func LocateChecklist(p *models.Project, id types.ChecklistID) (*models.Card, *models.Checklist, error) {
	for _, l := range p.Lists {
		for _, c := range l.Cards {
			if cl := c.Checklist(id); cl != nil {
				return c, cl, nil
			}
		}
	}
	return nil, nil, &board.NotFoundError{Kind: "checklist", ID: string(id)}
}

// LocateItem finds a checklist item by id alone, returning its card and checklist.
func LocateItem(p *models.Project, id types.ItemID) (*models.Card, *models.Checklist, *models.ChecklistItem, error) {
	for _, l := range p.Lists {
		for _, c := range l.Cards {
			for _, cl := range c.Checklists {
				if it := cl.Item(id); it != nil {
					return c, cl, it, nil
				}
			}
		}
	}
	return nil, nil, nil, &board.NotFoundError{Kind: "item", ID: string(id)}
}

// RequireCard returns the card with id or a not found error.
func RequireCard(p *models.Project, id types.CardID) (board.CardLocation, error) {
	loc, ok := board.FindCard(p, id)
	if !ok {
		return board.CardLocation{}, &board.NotFoundError{Kind: "card", ID: string(id)}
	}
	return loc, nil
}

// RequireList returns the list with id and its index, or a not found error.
func RequireList(p *models.Project, id types.ListID) (int, *models.List, error) {
	i, l, ok := board.FindList(p, id)
	if !ok {
		return -1, nil, &board.NotFoundError{Kind: "list", ID: string(id)}
	}
	return i, l, nil
}

// ParseDueDate parses --due. "none" clears the date.
func ParseDueDate(s string) (*models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, &models.FieldError{Field: "due_date", Err: models.ErrInvalidDate}
	}
	return &d, nil
}

// ParsePriority parses --priority. "none" clears the priority.
func ParsePriority(s string) (*models.Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	p, err := models.ParsePriority(s)
	if err != nil {
		return nil, &models.FieldError{Field: "priority", Err: models.ErrInvalidPriority}
	}
	return &p, nil
}

// Plural returns "1 card" or "3 cards".
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// ProjectArg is a PreRunE letting a command take the project as its optional
// first argument instead of --project.
func ProjectArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil
	}
	return cmd.Flags().Set("project", strings.TrimSpace(args[0]))
}
