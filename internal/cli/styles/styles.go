// Package styles renders boards and cards for human-readable CLI output.
package styles

import (
	"fmt"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/thenoetrevino/groupboard/internal/config"
	"github.com/thenoetrevino/groupboard/internal/models"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 80

	// Column styles for the board view
	ListStyle lipgloss.Style
	ListWidth = 30

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "List:", "Priority:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Description", "Checklists"

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style

	priorityColors map[models.Priority]string
)

func init() {
	Init(config.DefaultTheme())
}

// Init initializes all CLI styles with the given theme
func Init(theme config.Theme) {
	theme.ApplyDefaults()

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(CardWidth)

	ListStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Subtle)).
		Padding(0, 1).
		Width(ListWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Accent)).
		Bold(true).
		MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Info))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Error))

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Warning))

	priorityColors = map[models.Priority]string{
		models.PriorityLow:    theme.Low,
		models.PriorityMedium: theme.Medium,
		models.PriorityHigh:   theme.High,
	}
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// RenderPriority renders a priority in its theme color
func RenderPriority(p models.Priority) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(priorityColors[p])).
		Bold(true).
		Render(string(p))
}

// RenderProgress renders checklist progress as "[2/3]"
func RenderProgress(done, total int) string {
	style := SubtitleStyle
	if total > 0 && done == total {
		style = SuccessStyle
	}
	return style.Render(fmt.Sprintf("[%d/%d]", done, total))
}

// cardProgress sums progress over every checklist on the card.
func cardProgress(c *models.Card) (done, total int) {
	for _, cl := range c.Checklists {
		d, t := cl.Progress()
		done += d
		total += t
	}
	return done, total
}

// RenderBoard lays the project's lists out side by side.
func RenderBoard(p *models.Project) string {
	var header strings.Builder
	header.WriteString(TitleStyle.Render(p.Name))
	header.WriteString(" " + SubtitleStyle.Render(string(p.ID)))
	if p.Course != nil && *p.Course != "" {
		header.WriteString("  " + LabelStyle.Render("Course:") + " " + ValueStyle.Render(*p.Course))
	}
	if p.DueDate != nil {
		header.WriteString("  " + LabelStyle.Render("Due:") + " " + ValueStyle.Render(string(*p.DueDate)))
	}

	if len(p.Lists) == 0 {
		return header.String() + "\n\n" + SubtitleStyle.Render("No lists yet")
	}

	columns := make([]string, 0, len(p.Lists))
	for _, l := range p.Lists {
		columns = append(columns, RenderList(l))
	}
	return header.String() + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// RenderList renders one list column.
func RenderList(l *models.List) string {
	lines := []string{
		TitleStyle.Render(l.Title) + " " + SubtitleStyle.Render(fmt.Sprintf("(%d)", len(l.Cards))),
		SubtitleStyle.Render(string(l.ID)),
	}
	for _, c := range l.Cards {
		lines = append(lines, "", renderCardLine(c))
	}
	return ListStyle.Render(strings.Join(lines, "\n"))
}

func renderCardLine(c *models.Card) string {
	line := ValueStyle.Render(c.Title)
	meta := []string{SubtitleStyle.Render(string(c.ID)), RenderPriority(c.DisplayPriority())}
	if done, total := cardProgress(c); total > 0 {
		meta = append(meta, RenderProgress(done, total))
	}
	if c.DueDate != nil {
		meta = append(meta, SubtitleStyle.Render(string(*c.DueDate)))
	}
	return line + "\n" + strings.Join(meta, " ")
}

// RenderCard renders a card's details inside a bordered box. listTitle names
// the list the card is on.
func RenderCard(c *models.Card, listTitle string) string {
	var content strings.Builder

	content.WriteString(TitleStyle.Render(c.Title))
	content.WriteString(" " + SubtitleStyle.Render(string(c.ID)))
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("%s %s  %s %s\n",
		LabelStyle.Render("List:"),
		ValueStyle.Render(listTitle),
		LabelStyle.Render("Priority:"),
		RenderPriority(c.DisplayPriority()),
	))
	if c.DueDate != nil {
		content.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Due:"), ValueStyle.Render(string(*c.DueDate))))
	}
	if len(c.Assignees) > 0 {
		names := make([]string, 0, len(c.Assignees))
		for _, a := range c.Assignees {
			names = append(names, a.Username)
		}
		content.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Assignees:"), ValueStyle.Render(strings.Join(names, ", "))))
	}

	if c.Description != nil && strings.TrimSpace(*c.Description) != "" {
		content.WriteString(SectionStyle.Render("Description"))
		content.WriteString("\n")
		content.WriteString(RenderDescription(*c.Description, CardWidth-8))
		content.WriteString("\n")
	}

	if len(c.Checklists) > 0 {
		for _, cl := range c.Checklists {
			done, total := cl.Progress()
			content.WriteString(SectionStyle.Render(cl.Title) + " " + RenderProgress(done, total) + " " + SubtitleStyle.Render(string(cl.ID)))
			content.WriteString("\n")
			for _, it := range cl.Items {
				box := "[ ]"
				if it.IsDone {
					box = "[x]"
				}
				content.WriteString(fmt.Sprintf("  %s %s %s\n", box, ValueStyle.Render(it.Text), SubtitleStyle.Render(string(it.ID))))
			}
		}
	}

	if len(c.Activity) > 0 {
		content.WriteString(SectionStyle.Render("Activity"))
		content.WriteString("\n")
		for _, a := range c.Activity {
			content.WriteString(fmt.Sprintf("  %s %s %s\n",
				LabelStyle.Render(a.Username+":"),
				ValueStyle.Render(a.Content),
				SubtitleStyle.Render(a.CreatedAt.Format("Jan 2, 2006 3:04 PM")),
			))
		}
	}

	return CardStyle.Render(strings.TrimRight(content.String(), "\n"))
}

// Cache Glamour renderers by width to avoid expensive re-creation
var rendererCache sync.Map // map[int]*glamour.TermRenderer

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	rendererCache.Store(width, renderer)
	return renderer, nil
}

// RenderDescription renders a markdown description, falling back to the raw
// text when glamour fails.
func RenderDescription(md string, width int) string {
	renderer, err := getRenderer(width)
	if err == nil {
		if out, err := renderer.Render(md); err == nil {
			return strings.TrimSpace(out)
		}
	}
	return md
}
