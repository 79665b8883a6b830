package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jingkaihe/skillhub/pkg/app"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/jingkaihe/skillhub/pkg/version"
	"github.com/pkg/errors"
)

// StartConsole runs the interactive console until the user quits.
// Logs go to logFile while the console owns the screen.
func StartConsole(ctx context.Context, a *app.App, logFile string) error {
	if logFile != "" {
		restore, err := logger.RedirectToFile(logFile)
		if err != nil {
			return err
		}
		defer restore()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan struct{}, 1)
	go func() {
		err := a.Scanner.Watch(ctx, skills.DefaultDebounce, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		if err != nil {
			logger.G(ctx).WithError(err).Warn("skills watcher stopped")
		}
	}()

	model := NewModel(ctx, a, a.Config.Workspace, changes)

	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#7aa2f7", Dark: "#7aa2f7"}). // Blue
		Render(fmt.Sprintf("skillhub (%s)", version.Version))

	welcome := banner + "\nType an instruction for the agent, or /search to browse the catalog."
	if !isTTY() {
		welcome += "\nLimited terminal capabilities detected. Some features may not work properly."
	}
	model.AddSystemMessage(welcome)
	model.AddSystemMessage("Press Ctrl+H for help with keyboard shortcuts.")

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "error running console")
	}

	return a.Close()
}

// isTTY checks if the terminal supports advanced features
func isTTY() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
