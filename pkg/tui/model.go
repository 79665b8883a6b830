package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jingkaihe/skillhub/pkg/types/console"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
)

// Backend is what the console needs from the application context
type Backend interface {
	AllSkills(ctx context.Context, query string) []skilltypes.SkillRecord
	InstalledSkills(ctx context.Context) ([]skilltypes.SkillRecord, error)
	Install(ctx context.Context, skill skilltypes.SkillRecord, sink console.Sink) error
	Run(ctx context.Context, instruction string, sink console.Sink) error
	SendFollowUp(text string) error
	Close() error
}

// Model represents the console TUI model
type Model struct {
	backend   Backend
	workspace string

	eventCh   chan console.Event
	doneCh    chan error
	changesCh <-chan struct{}

	events     []console.Event
	results    []skilltypes.SkillRecord
	installed  int
	formatter  *MessageFormatter
	viewport   viewport.Model
	textarea   textarea.Model
	ready      bool
	width      int
	height     int
	running    bool
	spinnerIdx int

	statusMessage      string
	ctx                context.Context
	cancel             context.CancelFunc
	ctrlCPressCount    int
	lastCtrlCPressTime time.Time

	availableCommands []string
}

// Custom message types
type eventMsg console.Event

type runDoneMsg struct{ err error }

type followUpErrMsg struct{ err error }

type resultsMsg struct {
	title   string
	records []skilltypes.SkillRecord
}

type installedMsg struct {
	records []skilltypes.SkillRecord
	err     error
	show    bool
}

type skillsChangedMsg struct{}

type resetCtrlCMsg struct{}

// NewModel creates a console model. changes, when non-nil, signals that
// the installed skills changed on disk.
func NewModel(ctx context.Context, backend Backend, workspace string, changes <-chan struct{}) Model {
	ta := textarea.New()
	ta.Placeholder = "Type an instruction, or /help..."
	ta.Focus()
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = "❯ "

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	vp := viewport.New(0, 0)
	vp.KeyMap.PageDown.SetEnabled(true)
	vp.KeyMap.PageUp.SetEnabled(true)

	ctx, cancel := context.WithCancel(ctx)

	return Model{
		backend:           backend,
		workspace:         workspace,
		eventCh:           make(chan console.Event),
		doneCh:            make(chan error, 1),
		changesCh:         changes,
		formatter:         NewMessageFormatter(80),
		textarea:          ta,
		viewport:          vp,
		statusMessage:     "Ready",
		ctx:               ctx,
		cancel:            cancel,
		availableCommands: GetAvailableCommands(),
	}
}

// Events returns the console lines shown so far
func (m Model) Events() []console.Event {
	return m.events
}

// Running reports whether an agent run is in flight
func (m Model) Running() bool {
	return m.running
}

// AddEvent appends an event to the console
func (m *Model) AddEvent(ev console.Event) {
	m.events = append(m.events, ev)
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

// AddSystemMessage adds a notice to the console
func (m *Model) AddSystemMessage(content string) {
	m.AddEvent(console.NewEvent(console.KindSystem, content))
}

// SetProcessing sets the processing state
func (m *Model) SetProcessing(running bool) {
	m.running = running
	if running {
		m.statusMessage = "Agent running..."
	} else {
		m.statusMessage = "Ready"
	}
}

func (m *Model) updateViewportContent() {
	m.viewport.SetContent(m.formatter.FormatEvents(m.events))
}

// Init loads the installed skills and starts listening for changes
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadInstalled(false), m.waitForSkillsChange())
}

func (m Model) loadInstalled(show bool) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		records, err := backend.InstalledSkills(ctx)
		return installedMsg{records: records, err: err, show: show}
	}
}

func (m Model) search(query string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		title := "Popular skills"
		if query != "" {
			title = fmt.Sprintf("Results for %q", query)
		}
		return resultsMsg{title: title, records: backend.AllSkills(ctx, query)}
	}
}

func (m Model) waitForSkillsChange() tea.Cmd {
	if m.changesCh == nil {
		return nil
	}
	ch := m.changesCh
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return skillsChangedMsg{}
	}
}

// waitForActivity delivers the next agent event, or the end of the run.
// Events are sent synchronously, so all of them precede the done signal.
func (m Model) waitForActivity() tea.Cmd {
	eventCh, doneCh := m.eventCh, m.doneCh
	return func() tea.Msg {
		select {
		case ev := <-eventCh:
			return eventMsg(ev)
		case err := <-doneCh:
			return runDoneMsg{err: err}
		}
	}
}

// startRun launches fn in the background with a sink feeding the console
func (m *Model) startRun(fn func(ctx context.Context, sink console.Sink) error) tea.Cmd {
	m.SetProcessing(true)
	sink := &console.ChannelSink{EventCh: m.eventCh}
	ctx, doneCh := m.ctx, m.doneCh
	go func() {
		doneCh <- fn(ctx, sink)
	}()
	return m.waitForActivity()
}

// sendFollowUp forwards text off the update loop; the echo travels through
// the same channel as agent output and needs waitForActivity to receive it
func (m Model) sendFollowUp(text string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		if err := backend.SendFollowUp(text); err != nil {
			return followUpErrMsg{err: err}
		}
		return nil
	}
}

// submit handles one line of input
func (m *Model) submit(content string) tea.Cmd {
	if command, args, ok := ParseCommand(content); ok {
		return m.runCommand(Command(command), args)
	}

	if m.running {
		return m.sendFollowUp(content)
	}

	backend := m.backend
	return m.startRun(func(ctx context.Context, sink console.Sink) error {
		return backend.Run(ctx, content, sink)
	})
}

func (m *Model) runCommand(command Command, args string) tea.Cmd {
	switch command {
	case CommandHelp:
		m.AddSystemMessage(GetHelpText())
	case CommandClear:
		m.events = nil
		m.updateViewportContent()
		m.AddSystemMessage("Screen cleared")
	case CommandSearch:
		m.statusMessage = "Searching..."
		return m.search(args)
	case CommandInstalled:
		return m.loadInstalled(true)
	case CommandStop:
		if !m.running {
			m.AddSystemMessage("No agent is running")
			return nil
		}
		if err := m.backend.Close(); err != nil {
			m.AddSystemMessage("Error: " + err.Error())
		}
	case CommandRun, CommandInstall:
		if m.running {
			m.AddSystemMessage("The agent is already running; wait for it to finish or /stop it")
			return nil
		}
		if args == "" {
			m.AddSystemMessage(fmt.Sprintf("Usage: /%s <argument>", command))
			return nil
		}
		backend := m.backend
		if command == CommandRun {
			return m.startRun(func(ctx context.Context, sink console.Sink) error {
				return backend.Run(ctx, args, sink)
			})
		}
		skill, ok := m.resolveSkill(args)
		if !ok {
			m.AddSystemMessage(fmt.Sprintf("Unknown skill %q, /search first or pass a GitHub URL", args))
			return nil
		}
		m.AddSystemMessage(fmt.Sprintf("Installing %s from %s", skill.Name, skill.GitHubURL))
		return m.startRun(func(ctx context.Context, sink console.Sink) error {
			return backend.Install(ctx, skill, sink)
		})
	}
	return nil
}

// resolveSkill finds ref among the last search results by 1-based index,
// id or name; a GitHub URL is accepted as is
func (m Model) resolveSkill(ref string) (skilltypes.SkillRecord, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(m.results) {
			return m.results[n-1], true
		}
		return skilltypes.SkillRecord{}, false
	}
	for _, r := range m.results {
		if r.ID == ref || r.Name == ref {
			return r, true
		}
	}
	if strings.HasPrefix(ref, "https://github.com/") {
		return skilltypes.SkillRecord{ID: ref, Name: ref, GitHubURL: ref, Source: skilltypes.SourceRemote}, true
	}
	return skilltypes.SkillRecord{}, false
}

func resetCtrlCCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return resetCtrlCMsg{}
	})
}

// Update handles the message updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case resetCtrlCMsg:
		if m.statusMessage == "Press Ctrl+C again to quit" {
			m.statusMessage = "Ready"
			if m.running {
				m.statusMessage = "Agent running..."
			}
			m.ctrlCPressCount = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			now := time.Now()
			if m.ctrlCPressCount > 0 && now.Sub(m.lastCtrlCPressTime) < 2*time.Second {
				_ = m.backend.Close()
				m.cancel()
				return m, tea.Quit
			}
			m.ctrlCPressCount = 1
			m.lastCtrlCPressTime = now
			m.statusMessage = "Press Ctrl+C again to quit"
			return m, resetCtrlCCmd()
		case tea.KeyCtrlH:
			m.AddSystemMessage(GetHelpText())
		case tea.KeyCtrlL:
			m.events = nil
			m.updateViewportContent()
			m.AddSystemMessage("Screen cleared")
		case tea.KeyPgUp:
			m.viewport.ViewUp()
		case tea.KeyPgDown:
			m.viewport.ViewDown()
		case tea.KeyTab:
			input := m.textarea.Value()
			if ShouldShowCommandDropdown(input, m.availableCommands, m.running) {
				m.textarea.SetValue(MatchingCommands(input, m.availableCommands)[0] + " ")
				return m, nil
			}
		case tea.KeyCtrlS:
			content := strings.TrimSpace(m.textarea.Value())
			if content == "" {
				return m, nil
			}
			m.textarea.Reset()
			if _, _, isCommand := ParseCommand(content); isCommand || !m.running {
				m.AddEvent(console.NewEvent(console.KindInputEcho, content))
			}
			return m, m.submit(content)
		}

	case eventMsg:
		m.AddEvent(console.Event(msg))
		return m, m.waitForActivity()

	case followUpErrMsg:
		m.AddSystemMessage("Error: " + msg.err.Error())
		return m, nil

	case runDoneMsg:
		m.SetProcessing(false)
		if msg.err != nil {
			m.AddSystemMessage("Error: " + msg.err.Error())
		}
		return m, m.loadInstalled(false)

	case resultsMsg:
		m.results = msg.records
		if !m.running {
			m.statusMessage = "Ready"
		}
		m.AddSystemMessage(FormatSkillList(msg.title, msg.records))
		return m, nil

	case installedMsg:
		if msg.err != nil {
			m.AddSystemMessage("Error: " + msg.err.Error())
			return m, nil
		}
		m.installed = len(msg.records)
		if msg.show {
			m.AddSystemMessage(FormatSkillList("Installed skills", msg.records))
		}
		return m, nil

	case skillsChangedMsg:
		return m, tea.Batch(m.loadInstalled(false), m.waitForSkillsChange())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 1
		footerHeight := 6 // textarea, border and status bar
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight
		m.textarea.SetWidth(msg.Width - 2)
		m.formatter.SetWidth(msg.Width)

		m.ready = true
		m.updateViewportContent()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.running {
		m.spinnerIdx++
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	inputBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(0, 2).
		Width(m.width - 2).
		Render(m.textarea.View())

	parts := []string{
		lipgloss.NewStyle().PaddingBottom(1).Render(m.viewport.View()),
		inputBox,
	}

	input := m.textarea.Value()
	if ShouldShowCommandDropdown(input, m.availableCommands, m.running) {
		hint := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Render(strings.Join(MatchingCommands(input, m.availableCommands), "  ") + "   (Tab: complete)")
		parts = append(parts, hint)
	}

	parts = append(parts, m.statusView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) statusView() string {
	statusText := m.statusMessage
	if m.running {
		statusText = fmt.Sprintf("%s %s", GetSpinnerChar(m.spinnerIdx), m.statusMessage)
	}

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Background(lipgloss.Color("236")).
		Padding(0, 1).
		Bold(true).
		Render(statusText + " │ " + FormatWorkspaceInfo(m.workspace, m.installed) + " │ Ctrl+C (twice): Quit │ Ctrl+H: Help │ Ctrl+S: Send")
}
