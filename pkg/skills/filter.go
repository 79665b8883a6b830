package skills

import (
	"github.com/gobwas/glob"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/pkg/errors"
)

// Filter keeps the records whose name matches the glob pattern.
// An empty pattern keeps everything.
func Filter(records []skilltypes.SkillRecord, pattern string) ([]skilltypes.SkillRecord, error) {
	if pattern == "" {
		return records, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid filter pattern %q", pattern)
	}

	filtered := make([]skilltypes.SkillRecord, 0, len(records))
	for _, r := range records {
		if g.Match(r.Name) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
