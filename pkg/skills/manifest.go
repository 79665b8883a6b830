// Package skills discovers skill packages installed in a workspace. A skill
// is a directory holding a SKILL.md file whose front matter, delimited by
// "---" lines, names and describes it.
package skills

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	skillFileName     = "SKILL.md"
	frontMatterMarker = "---"
	nameKey           = "name:"
	descriptionKey    = "description:"
	byteOrderMark     = "\ufeff"
	quoteCharacters   = `"'`
)

var (
	// ErrNoFrontMatter is returned when the content does not open with a
	// "---" line followed by a closing "---" line
	ErrNoFrontMatter = errors.New("no front matter found")
	// ErrIncompleteManifest is returned when name or description is missing
	ErrIncompleteManifest = errors.New("front matter requires both name and description")
)

// Manifest is the name/description pair read from a SKILL.md front matter
type Manifest struct {
	Name        string
	Description string
}

// ParseManifest extracts name and description from SKILL.md content.
// The first occurrence of each key wins and one layer of matching quotes is
// stripped from values. It never returns a partially-filled manifest.
func ParseManifest(content string) (Manifest, error) {
	block, _, err := splitFrontMatter(content)
	if err != nil {
		return Manifest{}, err
	}

	var name, description *string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, nameKey) && name == nil:
			v := unquote(strings.TrimSpace(trimmed[len(nameKey):]))
			name = &v
		case strings.HasPrefix(trimmed, descriptionKey) && description == nil:
			v := unquote(strings.TrimSpace(trimmed[len(descriptionKey):]))
			description = &v
		}
	}

	if name == nil || *name == "" || description == nil {
		return Manifest{}, ErrIncompleteManifest
	}

	return Manifest{Name: *name, Description: *description}, nil
}

// splitFrontMatter returns the text between the opening and closing marker
// lines, and the body after the closing marker
func splitFrontMatter(content string) (string, string, error) {
	content = strings.TrimPrefix(content, byteOrderMark)
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || !isMarker(lines[0]) {
		return "", "", ErrNoFrontMatter
	}

	for i := 1; i < len(lines); i++ {
		if isMarker(lines[i]) {
			block := strings.Join(lines[1:i], "\n")
			body := strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
			return block, body, nil
		}
	}

	return "", "", ErrNoFrontMatter
}

func isMarker(line string) bool {
	return strings.TrimRight(line, " \t\r") == frontMatterMarker
}

// unquote strips exactly one layer of matching single or double quotes
func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if first == last && strings.IndexByte(quoteCharacters, first) >= 0 {
		return v[1 : len(v)-1]
	}
	return v
}
