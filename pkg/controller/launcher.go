package controller

import (
	"path/filepath"

	"github.com/jingkaihe/skillhub/pkg/session"
	"github.com/jingkaihe/skillhub/pkg/skills"
)

const (
	// DefaultScript is the agent entry point inside the workspace
	DefaultScript = "main.py"
	// APIKeyEnv carries the agent credential to the subprocess
	APIKeyEnv = "ANTHROPIC_API_KEY"
)

// DefaultFlags keep the interpreter output unbuffered so lines stream live
var DefaultFlags = []string{"-u"}

// Launcher describes how the agent process is started for a workspace
type Launcher struct {
	Workspace   string
	Interpreter string
	Script      string
	Flags       []string
	APIKey      string
	Env         map[string]string
	SkillsDir   string
}

// venvBin is the workspace virtualenv bin directory
func (l Launcher) venvBin() string {
	return filepath.Join(l.Workspace, ".venv", "bin")
}

func (l Launcher) withDefaults() Launcher {
	if l.Interpreter == "" {
		l.Interpreter = filepath.Join(l.venvBin(), "python")
	}
	if l.Script == "" {
		l.Script = DefaultScript
	}
	if l.Flags == nil {
		l.Flags = DefaultFlags
	}
	if l.SkillsDir == "" {
		l.SkillsDir = filepath.Join(l.Workspace, skills.DefaultSkillsDir)
	}
	return l
}

// Spec builds the process description for one instruction
func (l Launcher) Spec(instruction string) session.Spec {
	l = l.withDefaults()

	args := make([]string, 0, len(l.Flags)+2)
	args = append(args, l.Flags...)
	args = append(args, l.Script, instruction)

	env := map[string]string{
		"PYTHONIOENCODING": "utf-8",
		"PATH":             l.venvBin(),
	}
	if l.APIKey != "" {
		env[APIKeyEnv] = l.APIKey
	}
	for k, v := range l.Env {
		env[k] = v
	}

	return session.Spec{
		Command: l.Interpreter,
		Args:    args,
		Dir:     l.Workspace,
		Env:     env,
	}
}
