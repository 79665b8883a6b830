package main

import (
	"os"

	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/spf13/cobra"
)

// ListConfig holds configuration for the list command
type ListConfig struct {
	Filter string
	JSON   bool
}

// NewListConfig creates a new ListConfig with default values
func NewListConfig() *ListConfig {
	return &ListConfig{
		Filter: "",
		JSON:   false,
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills installed in the workspace",
	Long: `List the skills installed under <workspace>/.claude/skills.

Examples:
  skillhub list
  skillhub list --filter 'pdf*'`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getListConfigFromFlags(cmd)

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := mustApp()
		records, err := a.InstalledSkills(ctx)
		if err != nil {
			presenter.Error(err, "Failed to scan the workspace")
			os.Exit(1)
		}

		records, err = skills.Filter(records, config.Filter)
		if err != nil {
			presenter.Error(err, "Invalid filter")
			os.Exit(1)
		}

		if config.JSON {
			printJSON(records)
			return
		}
		if len(records) == 0 {
			presenter.Info("No skills installed in " + a.Scanner.SkillsDir())
			return
		}
		presenter.Skills(records)
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().StringP("filter", "f", defaults.Filter, "Glob pattern matched against skill names")
	listCmd.Flags().Bool("json", defaults.JSON, "Print results as JSON")
	rootCmd.AddCommand(listCmd)
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if filter, err := cmd.Flags().GetString("filter"); err == nil {
		config.Filter = filter
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}
