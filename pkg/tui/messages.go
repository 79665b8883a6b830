package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jingkaihe/skillhub/pkg/types/console"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
)

// MessageFormatter renders transcript events for the viewport (Tokyo Night)
type MessageFormatter struct {
	width       int
	userStyle   lipgloss.Style
	stderrStyle lipgloss.Style
	systemStyle lipgloss.Style
	agentStyle  lipgloss.Style
}

// NewMessageFormatter creates a new message formatter
func NewMessageFormatter(width int) *MessageFormatter {
	return &MessageFormatter{
		width:       width,
		userStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Bold(true), // Cyan
		agentStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7")).Bold(true), // Purple
		stderrStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),            // Red
		systemStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true), // Green
	}
}

// SetWidth updates the width for message formatting
func (f *MessageFormatter) SetWidth(width int) {
	f.width = width
}

func (f *MessageFormatter) wrap(text string) string {
	style := lipgloss.NewStyle().PaddingLeft(1)
	if f.width > 15 {
		style = style.Width(f.width - 15)
	}
	return style.Render(text)
}

// FormatEvent formats a single transcript event
func (f *MessageFormatter) FormatEvent(ev console.Event) string {
	switch ev.Kind {
	case console.KindInputEcho:
		return f.userStyle.Render("You") + " →" + f.wrap(ev.Text)
	case console.KindStderr:
		return f.agentStyle.Render("Agent") + " !" + f.wrap(f.stderrStyle.Render(ev.Text))
	case console.KindSystem:
		return f.systemStyle.Render(ev.Text)
	default:
		return f.agentStyle.Render("Agent") + " →" + f.wrap(ev.Text)
	}
}

// FormatEvents formats multiple events separated by blank lines
func (f *MessageFormatter) FormatEvents(events []console.Event) string {
	rendered := make([]string, 0, len(events))
	for _, ev := range events {
		rendered = append(rendered, f.FormatEvent(ev))
	}
	return strings.Join(rendered, "\n\n")
}

// FormatSkillList renders numbered records so /install can refer to them
func FormatSkillList(title string, records []skilltypes.SkillRecord) string {
	if len(records) == 0 {
		return title + ": no results"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n", title, len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "%3d. %s", i+1, r.Name)
		if r.Source == skilltypes.SourceRemote {
			fmt.Fprintf(&b, "  ★ %s", r.FormattedStars())
			if updated := r.FormattedUpdatedAt(); updated != "" {
				fmt.Fprintf(&b, "  %s", updated)
			}
		}
		if r.Description != "" {
			fmt.Fprintf(&b, "\n     %s", r.Description)
		}
		if i < len(records)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
