package main

import (
	"context"
	"os"
	"time"

	"github.com/jingkaihe/skillhub/pkg/app"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	DebounceTime int
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceTime: int(skills.DefaultDebounce / time.Millisecond),
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	if c.DebounceTime < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the installed skills whenever they change",
	Long: `Watch <workspace>/.claude/skills and print the installed skills every time a
skill is added, edited or removed. Stop with Ctrl+C.`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getWatchConfigFromFlags(cmd)
		if err := config.Validate(); err != nil {
			presenter.Error(err, "Invalid watch options")
			os.Exit(1)
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := mustApp()
		presenter.Info("Watching " + a.Scanner.SkillsDir())
		printInstalled(ctx, a)

		debounce := time.Duration(config.DebounceTime) * time.Millisecond
		err := a.Scanner.Watch(ctx, debounce, func() {
			printInstalled(ctx, a)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			presenter.Error(err, "Failed to watch the skills directory")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().Int("debounce", defaults.DebounceTime, "Milliseconds to wait for changes to settle")
	rootCmd.AddCommand(watchCmd)
}

func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounce
	}
	return config
}

func printInstalled(ctx context.Context, a *app.App) {
	records, err := a.InstalledSkills(ctx)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to scan skills")
		return
	}
	presenter.Section("Installed skills")
	if len(records) == 0 {
		presenter.Info("No skills installed")
		return
	}
	presenter.Skills(records)
}
