package main

import (
	"context"
	"strings"

	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <instruction>",
	Short: "Run the skill agent with an instruction",
	Long: `Run the skill agent in the workspace and stream its output.

With --interactive the first line typed on stdin is forwarded to the agent,
which is how questions such as "overwrite existing skill?" are answered.

Examples:
  skillhub run "list the skills you can use"
  skillhub run -i "update the pdf skill"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getAgentConfigFromFlags(cmd)

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := mustApp()
		instruction := strings.Join(args, " ")
		runAgent(ctx, a, config, func(ctx context.Context) error {
			return a.Run(ctx, instruction, presenter.Default())
		})
	},
}

func init() {
	addAgentFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addAgentFlags(cmd *cobra.Command) {
	defaults := NewAgentConfig()
	cmd.Flags().BoolP("interactive", "i", defaults.Interactive, "Forward the first line of stdin to the agent")
	cmd.Flags().BoolP("quiet", "q", defaults.Quiet, "Hide status lines and only print agent output")
}

func getAgentConfigFromFlags(cmd *cobra.Command) *AgentConfig {
	config := NewAgentConfig()
	if interactive, err := cmd.Flags().GetBool("interactive"); err == nil {
		config.Interactive = interactive
	}
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		config.Quiet = quiet
	}
	return config
}
