package skills

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Metadata is the full YAML front matter of a SKILL.md, used when showing
// a single installed skill in detail
type Metadata struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Version      string   `yaml:"version,omitempty"`
	License      string   `yaml:"license,omitempty"`
	Author       string   `yaml:"author,omitempty"`
	AllowedTools []string `yaml:"allowed-tools,omitempty"`
}

// ParseMetadata decodes the front matter as YAML and returns it together
// with the markdown body
func ParseMetadata(content string) (Metadata, string, error) {
	block, body, err := splitFrontMatter(content)
	if err != nil {
		return Metadata{}, "", err
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return Metadata{}, "", errors.Wrap(err, "failed to parse SKILL.md front matter")
	}

	return meta, body, nil
}
