package controller

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLauncherSpec(t *testing.T) {
	ws := filepath.Join("/tmp", "my-skills")
	l := Launcher{Workspace: ws, APIKey: "sk-test"}

	spec := l.Spec("list my skills")

	assert.Equal(t, filepath.Join(ws, ".venv", "bin", "python"), spec.Command)
	assert.Equal(t, []string{"-u", "main.py", "list my skills"}, spec.Args)
	assert.Equal(t, ws, spec.Dir)
	assert.Equal(t, "sk-test", spec.Env[APIKeyEnv])
	assert.Equal(t, "utf-8", spec.Env["PYTHONIOENCODING"])
	assert.Equal(t, filepath.Join(ws, ".venv", "bin"), spec.Env["PATH"])
}

func TestLauncherSpecOverrides(t *testing.T) {
	l := Launcher{
		Workspace:   "/ws",
		Interpreter: "/usr/bin/python3",
		Script:      "agent.py",
		Flags:       []string{},
		Env:         map[string]string{"PYTHONIOENCODING": "latin-1", "EXTRA": "1"},
	}

	spec := l.Spec("go")

	assert.Equal(t, "/usr/bin/python3", spec.Command)
	assert.Equal(t, []string{"agent.py", "go"}, spec.Args)
	assert.Equal(t, "latin-1", spec.Env["PYTHONIOENCODING"])
	assert.Equal(t, "1", spec.Env["EXTRA"])
	_, hasKey := spec.Env[APIKeyEnv]
	assert.False(t, hasKey, "no credential configured")
}

func TestLauncherDefaults(t *testing.T) {
	l := Launcher{Workspace: "/ws"}.withDefaults()
	assert.Equal(t, filepath.Join("/ws", ".claude", "skills"), l.SkillsDir)
	assert.Equal(t, DefaultScript, l.Script)
	assert.Equal(t, DefaultFlags, l.Flags)
}
