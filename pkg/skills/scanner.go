package skills

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jingkaihe/skillhub/pkg/logger"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/pkg/errors"
)

// DefaultSkillsDir is where installed skills live, relative to the workspace
var DefaultSkillsDir = filepath.Join(".claude", "skills")

// Scanner enumerates the skills installed in a workspace
type Scanner struct {
	workspace string
	skillsDir string
}

// Option is a function that configures a Scanner
type Option func(*Scanner)

// WithSkillsDir overrides the skills directory. Relative paths are resolved
// against the workspace.
func WithSkillsDir(dir string) Option {
	return func(s *Scanner) {
		if dir == "" {
			return
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(s.workspace, dir)
		}
		s.skillsDir = dir
	}
}

// NewScanner creates a scanner rooted at the given workspace directory
func NewScanner(workspace string, opts ...Option) *Scanner {
	s := &Scanner{
		workspace: workspace,
		skillsDir: filepath.Join(workspace, DefaultSkillsDir),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workspace returns the workspace root
func (s *Scanner) Workspace() string {
	return s.workspace
}

// SkillsDir returns the directory scanned for installed skills
func (s *Scanner) SkillsDir() string {
	return s.skillsDir
}

// Scan returns one record per immediate, non-hidden subdirectory holding a
// valid SKILL.md, sorted by name. Entries without a valid manifest are
// skipped. A missing skills directory yields an empty result.
func (s *Scanner) Scan(ctx context.Context) ([]skilltypes.SkillRecord, error) {
	entries, err := os.ReadDir(s.skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []skilltypes.SkillRecord{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read skills directory %s", s.skillsDir)
	}

	records := make([]skilltypes.SkillRecord, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		entryPath := filepath.Join(s.skillsDir, entry.Name())

		// os.Stat follows symlinks so linked skill directories are included
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		record, err := loadRecord(entryPath)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("dir", entryPath).Debug("skipping skill directory")
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Name == records[j].Name {
			return records[i].Directory < records[j].Directory
		}
		return records[i].Name < records[j].Name
	})

	return records, nil
}

// Find returns the installed skill with the given name
func (s *Scanner) Find(ctx context.Context, name string) (skilltypes.SkillRecord, error) {
	records, err := s.Scan(ctx)
	if err != nil {
		return skilltypes.SkillRecord{}, err
	}
	for _, r := range records {
		if r.Name == name {
			return r, nil
		}
	}
	return skilltypes.SkillRecord{}, errors.Errorf("skill '%s' not found", name)
}

func loadRecord(dir string) (skilltypes.SkillRecord, error) {
	path := filepath.Join(dir, skillFileName)
	info, err := os.Stat(path)
	if err != nil {
		return skilltypes.SkillRecord{}, errors.Wrap(err, "failed to stat skill file")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return skilltypes.SkillRecord{}, errors.Wrap(err, "failed to read skill file")
	}

	manifest, err := ParseManifest(string(content))
	if err != nil {
		return skilltypes.SkillRecord{}, err
	}

	return skilltypes.SkillRecord{
		ID:          uuid.New().String(),
		Name:        manifest.Name,
		Description: manifest.Description,
		Stars:       0,
		UpdatedAt:   info.ModTime().Unix(),
		Source:      skilltypes.SourceLocal,
		Directory:   dir,
	}, nil
}

// ReadMetadata loads the full front matter and body of an installed skill
func ReadMetadata(record skilltypes.SkillRecord) (Metadata, string, error) {
	if record.Directory == "" {
		return Metadata{}, "", errors.Errorf("skill '%s' is not installed locally", record.Name)
	}
	content, err := os.ReadFile(filepath.Join(record.Directory, skillFileName))
	if err != nil {
		return Metadata{}, "", errors.Wrap(err, "failed to read skill file")
	}
	return ParseMetadata(string(content))
}
