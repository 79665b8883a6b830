package tui

import (
	"fmt"
	"strings"
)

// GetSpinnerChar returns the spinner character for the given index
func GetSpinnerChar(index int) string {
	spinChars := []string{".", "∘", "○", "◌", "◍", "◉", "◎", "●"}
	return spinChars[index%len(spinChars)]
}

// ShouldShowCommandDropdown determines if the command dropdown should be shown
func ShouldShowCommandDropdown(input string, commands []string, isProcessing bool) bool {
	if isProcessing {
		return false
	}

	if !strings.HasPrefix(input, "/") || strings.Contains(input, " ") {
		return false
	}

	if IsCommandComplete(input, commands) {
		return false
	}

	return len(MatchingCommands(input, commands)) > 0
}

// FormatWorkspaceInfo summarises the workspace for the status bar
func FormatWorkspaceInfo(workspace string, installed int) string {
	noun := "skills"
	if installed == 1 {
		noun = "skill"
	}
	return fmt.Sprintf("%s (%d %s)", workspace, installed, noun)
}
