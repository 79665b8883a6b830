package main

import (
	"context"
	"os"

	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <id|name|github-url>",
	Short: "Install a skill into the workspace",
	Long: `Ask the skill agent to download a skill into <workspace>/.claude/skills.

The skill is looked up by catalog id or name, or taken directly from a
GitHub URL.

Examples:
  skillhub install pdf
  skillhub install https://github.com/anthropics/skills/tree/main/pdf`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getAgentConfigFromFlags(cmd)

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := mustApp()
		skill, err := a.FindSkill(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Run 'skillhub search' to find skills")
			os.Exit(1)
		}

		presenter.Info("Installing " + skill.Name + " from " + skill.GitHubURL)
		runAgent(ctx, a, config, func(ctx context.Context) error {
			return a.Install(ctx, skill, presenter.Default())
		})
		presenter.Success("Installed " + skill.Name)
	},
}

func init() {
	addAgentFlags(installCmd)
	rootCmd.AddCommand(installCmd)
}
