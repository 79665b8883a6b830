package tui

import (
	"strings"
)

// Command represents a console slash command
type Command string

const (
	CommandHelp      Command = "help"
	CommandClear     Command = "clear"
	CommandSearch    Command = "search"
	CommandInstalled Command = "installed"
	CommandInstall   Command = "install"
	CommandRun       Command = "run"
	CommandStop      Command = "stop"
)

var commands = []Command{
	CommandSearch,
	CommandInstalled,
	CommandInstall,
	CommandRun,
	CommandStop,
	CommandHelp,
	CommandClear,
}

// GetAvailableCommands returns the list of available slash commands
func GetAvailableCommands() []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		out = append(out, "/"+string(c))
	}
	return out
}

// ParseCommand parses a user input and returns the command name, arguments, and whether it's a valid command
func ParseCommand(input string) (command string, args string, isCommand bool) {
	input = strings.TrimSpace(input)

	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}

	parts := strings.SplitN(input, " ", 2)
	commandName := strings.TrimPrefix(parts[0], "/")

	var arguments string
	if len(parts) > 1 {
		arguments = strings.TrimSpace(parts[1])
	}

	for _, c := range commands {
		if string(c) == commandName {
			return commandName, arguments, true
		}
	}
	return "", "", false
}

// GetHelpText returns the help text for keyboard shortcuts and commands
func GetHelpText() string {
	return `SKILLHUB CONSOLE HELP

KEYBOARD SHORTCUTS
   Ctrl+C (twice)    → Quit the console
   Ctrl+S            → Send
   Ctrl+H            → Show this help
   Ctrl+L            → Clear screen
   PageUp/PageDown   → Scroll history
   Tab               → Complete command

AVAILABLE COMMANDS
   /search [query]            → Browse the catalog (popular skills when empty)
   /installed                 → List skills installed in the workspace
   /install <n|id|name|url>   → Ask the agent to install a skill
   /run <instruction>         → Run the agent with an instruction
   /stop                      → Stop the running agent
   /help                      → Show this help message
   /clear                     → Clear the screen

Plain text starts a run, or answers the agent while one is in flight.
The agent accepts one answer per run.`
}

// IsCommandComplete checks if the current input is a complete command
// (i.e., starts with a known command prefix)
func IsCommandComplete(input string, commands []string) bool {
	for _, cmd := range commands {
		if input == cmd || strings.HasPrefix(input, cmd+" ") {
			return true
		}
	}
	return false
}

// MatchingCommands returns the commands that start with input
func MatchingCommands(input string, commands []string) []string {
	var matches []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, input) {
			matches = append(matches, cmd)
		}
	}
	return matches
}
