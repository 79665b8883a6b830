package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show an installed skill",
	Long:  `Show the front matter and instructions of a skill installed in the workspace.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := mustApp()
		record, err := a.Scanner.Find(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Run 'skillhub list' to see installed skills")
			os.Exit(1)
		}

		meta, body, err := skills.ReadMetadata(record)
		if err != nil {
			presenter.Error(err, "Failed to read skill")
			os.Exit(1)
		}

		presenter.Section(meta.Name)
		fmt.Println(formatMetadata(meta, record.Directory))
		if body = strings.TrimSpace(body); body != "" {
			presenter.Separator()
			fmt.Println(body)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// formatMetadata renders the non-empty front matter fields one per line
func formatMetadata(meta skills.Metadata, dir string) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-13s %s", label+":", value))
		}
	}

	add("Description", meta.Description)
	add("Version", meta.Version)
	add("Author", meta.Author)
	add("License", meta.License)
	add("Allowed tools", strings.Join(meta.AllowedTools, ", "))
	add("Directory", dir)

	return strings.Join(lines, "\n")
}
