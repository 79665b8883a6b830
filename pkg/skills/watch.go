package skills

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/pkg/errors"
)

// DefaultDebounce is the quiet period before a burst of filesystem events
// is reported as one change
const DefaultDebounce = 300 * time.Millisecond

// Watch calls onChange whenever skills are added, edited or removed, until
// ctx is cancelled. Events are debounced so that an install writing many
// files triggers a single callback. The skills directory is created if it
// does not exist yet.
func (s *Scanner) Watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := os.MkdirAll(s.skillsDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create skills directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(s.skillsDir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", s.skillsDir)
	}
	// fsnotify is not recursive; SKILL.md edits happen one level down
	entries, _ := os.ReadDir(s.skillsDir)
	for _, entry := range entries {
		if entry.IsDir() {
			_ = watcher.Add(filepath.Join(s.skillsDir, entry.Name()))
		}
	}

	log := logger.G(ctx).WithField("dir", s.skillsDir)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			log.WithField("file", event.Name).WithField("operation", event.Op.String()).Debug("skills directory changed")
			pending = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("error watching skills directory")
		case <-pending:
			pending = nil
			onChange()
		}
	}
}
