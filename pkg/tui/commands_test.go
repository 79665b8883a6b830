package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantCommand   string
		wantArgs      string
		wantIsCommand bool
	}{
		{"help command", "/help", "help", "", true},
		{"search without query", "/search", "search", "", true},
		{"search with query", "/search  pdf tools ", "search", "pdf tools", true},
		{"install by index", "/install 2", "install", "2", true},
		{"run with instruction", "/run summarise my skills", "run", "summarise my skills", true},
		{"surrounding whitespace", "  /stop  ", "stop", "", true},
		{"not a command", "just a message", "", "", false},
		{"unknown command", "/bash ls", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, args, isCommand := ParseCommand(tt.input)
			assert.Equal(t, tt.wantCommand, command)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantIsCommand, isCommand)
		})
	}
}

func TestGetAvailableCommands(t *testing.T) {
	cmds := GetAvailableCommands()
	assert.Contains(t, cmds, "/search")
	assert.Contains(t, cmds, "/install")
	assert.Contains(t, cmds, "/help")
	for _, c := range cmds {
		_, _, ok := ParseCommand(c)
		assert.True(t, ok, c)
	}
}

func TestGetHelpText(t *testing.T) {
	help := GetHelpText()
	for _, c := range GetAvailableCommands() {
		assert.Contains(t, help, c)
	}
	assert.Contains(t, help, "Ctrl+S")
}

func TestIsCommandComplete(t *testing.T) {
	cmds := GetAvailableCommands()
	assert.True(t, IsCommandComplete("/search", cmds))
	assert.True(t, IsCommandComplete("/install 1", cmds))
	assert.False(t, IsCommandComplete("/inst", cmds))
	assert.False(t, IsCommandComplete("/installx", cmds))
}

func TestMatchingCommands(t *testing.T) {
	cmds := GetAvailableCommands()
	assert.Equal(t, []string{"/installed", "/install"}, MatchingCommands("/inst", cmds))
	assert.Len(t, MatchingCommands("/", cmds), len(cmds))
	assert.Empty(t, MatchingCommands("/zzz", cmds))
}
