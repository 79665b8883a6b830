package main

import (
	"os"

	"github.com/jingkaihe/skillhub/pkg/config"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/tui"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive console",
	Long: `Start the full-screen console: browse the catalog, install skills and talk
to the agent. Logs are written to ~/.skillhub/skillhub.log while it runs.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := mustApp()

		logFile, err := config.LogFile()
		if err != nil {
			presenter.Warning("Could not locate the log file, logs stay on stderr: " + err.Error())
			logFile = ""
		}

		if err := tui.StartConsole(ctx, a, logFile); err != nil {
			presenter.Error(err, "Console exited with an error")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
