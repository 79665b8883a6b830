//go:build unix

package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jingkaihe/skillhub/pkg/types/console"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallRunsAgent(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	bin := filepath.Join(cfg.Workspace, ".venv", "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "python"), []byte("#!/bin/sh\necho \"$3\"\n"), 0o755))

	a := New(cfg)
	var seen []console.Event
	sink := console.SinkFunc(func(ev console.Event) { seen = append(seen, ev) })

	err := a.Install(context.Background(), skilltypes.SkillRecord{
		Name:      "pdf",
		GitHubURL: "https://github.com/acme/pdf",
	}, sink)
	require.NoError(t, err)

	var out []string
	for _, ev := range seen {
		if ev.Kind == console.KindStdout {
			out = append(out, ev.Text)
		}
	}
	expected := "Download skill https://github.com/acme/pdf into " + filepath.Join(cfg.Workspace, ".claude", "skills")
	assert.Equal(t, expected, strings.Join(out, "\n"))
	assert.Equal(t, seen, a.Controller.Transcript())
}
