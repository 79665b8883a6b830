package main

import (
	"testing"

	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/stretchr/testify/assert"
)

func TestFormatMetadata(t *testing.T) {
	meta := skills.Metadata{
		Name:         "pdf",
		Description:  "Work with PDF files",
		Version:      "1.2.0",
		AllowedTools: []string{"bash", "file_read"},
	}

	out := formatMetadata(meta, "/ws/.claude/skills/pdf")
	assert.Equal(t, "Description:  Work with PDF files\n"+
		"Version:      1.2.0\n"+
		"Allowed tools: bash, file_read\n"+
		"Directory:    /ws/.claude/skills/pdf", out)
}

func TestFormatMetadataEmpty(t *testing.T) {
	assert.Equal(t, "", formatMetadata(skills.Metadata{Name: "x"}, ""))
}
