package presenter

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jingkaihe/skillhub/pkg/types/console"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestNew(t *testing.T) {
	p := New()
	require.NotNil(t, p)
	assert.Equal(t, os.Stdout, p.output)
	assert.Equal(t, os.Stderr, p.errorOutput)
	assert.False(t, p.IsQuiet())
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		color    string
		expected ColorMode
	}{
		{"NO_COLOR set", "1", "always", ColorNever},
		{"always", "", "always", ColorAlways},
		{"force", "", "force", ColorAlways},
		{"never", "", "never", ColorNever},
		{"off", "", "off", ColorNever},
		{"auto", "", "auto", ColorAuto},
		{"unset", "", "", ColorAuto},
		{"invalid", "", "sometimes", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLHUB_COLOR", tt.color)
			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestMessages(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "Failed to search catalog")
	p.Error(errors.New("plain"), "")
	p.Error(nil, "ignored")
	p.Success("Installed pdf")
	p.Warning("No skills installed")
	p.Info("hello")
	p.Section("Skills")
	p.Separator()

	assert.Equal(t, "[ERROR] Failed to search catalog: boom\n[ERROR] plain\n", errOut.String())
	text := out.String()
	assert.Contains(t, text, "✓ Installed pdf\n")
	assert.Contains(t, text, "⚠ No skills installed\n")
	assert.Contains(t, text, "hello\n")
	assert.Contains(t, text, "Skills\n------\n")
	assert.Contains(t, text, strings.Repeat("-", 60)+"\n")
}

func TestQuiet(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("x")
	p.Warning("x")
	p.Info("x")
	p.Section("x")
	p.Separator()
	p.Skills([]skilltypes.SkillRecord{{Name: "x"}})
	p.HandleEvent(console.NewEvent(console.KindSystem, "exit status 0"))
	p.Error(errors.New("still shown"), "")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "still shown")
}

func TestPrompt(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.input = strings.NewReader("  yes \n")

	assert.Equal(t, "yes", p.Prompt("Install pdf?", "y", "n"))
	assert.Equal(t, "Install pdf? [y/n]: ", out.String())

	p.input = strings.NewReader("")
	assert.Equal(t, "", p.Prompt("Name"))
}

func TestSkills(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Skills([]skilltypes.SkillRecord{
		{Name: "pdf", Stars: 1240, UpdatedAt: 1700000000, Source: skilltypes.SourceRemote, Description: "Work with\nPDF files"},
		{Name: "foo-skill", Source: skilltypes.SourceLocal, Description: strings.Repeat("a", 80)},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[2], "1.2k")
	assert.Contains(t, lines[2], "2023-11-14")
	assert.Contains(t, lines[2], "Work with PDF files")
	assert.Contains(t, lines[3], "foo-skill")
	assert.Contains(t, lines[3], strings.Repeat("a", 57)+"...")
	assert.NotContains(t, lines[3], strings.Repeat("a", 58))
}

func TestHandleEvent(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.HandleEvent(console.NewEvent(console.KindStdout, "working"))
	p.HandleEvent(console.NewEvent(console.KindStderr, "warning"))
	p.HandleEvent(console.NewEvent(console.KindInputEcho, "yes"))
	p.HandleEvent(console.NewEvent(console.KindSystem, "process finished with exit status 0"))

	assert.Equal(t, "working\n> yes\n[process finished with exit status 0]\n", out.String())
	assert.Equal(t, "warning\n", errOut.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ünïcødé...", truncate("ünïcødéstring", 10))
}
