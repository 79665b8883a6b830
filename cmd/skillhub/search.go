package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jingkaihe/skillhub/pkg/catalog"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// SearchConfig holds configuration for the search command
type SearchConfig struct {
	Page   int
	Limit  int
	SortBy string
	JSON   bool
}

// NewSearchConfig creates a new SearchConfig with default values
func NewSearchConfig() *SearchConfig {
	return &SearchConfig{
		Page:   1,
		Limit:  catalog.DefaultLimit,
		SortBy: catalog.DefaultSortBy,
		JSON:   false,
	}
}

// Validate validates the SearchConfig and returns an error if invalid
func (c *SearchConfig) Validate() error {
	if c.Page < 1 {
		return errors.Errorf("page must be at least 1, got %d", c.Page)
	}
	if c.Limit < 1 {
		return errors.Errorf("limit must be at least 1, got %d", c.Limit)
	}
	if strings.TrimSpace(c.SortBy) == "" {
		return errors.New("sort order cannot be empty")
	}
	return nil
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the skill catalog",
	Long: `Search the public skill catalog. Without a query the popular skills are listed.

Examples:
  skillhub search
  skillhub search pdf
  skillhub search "web scraping" --limit 10 --page 2`,
	Run: func(cmd *cobra.Command, args []string) {
		config := getSearchConfigFromFlags(cmd)
		if err := config.Validate(); err != nil {
			presenter.Error(err, "Invalid search options")
			os.Exit(1)
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := mustApp()
		query := strings.TrimSpace(strings.Join(args, " "))

		var (
			records []skilltypes.SkillRecord
			err     error
		)
		if query == "" {
			records, err = a.Catalog.Popular(ctx)
		} else {
			records, err = a.SearchSkills(ctx, catalog.Query{
				Q:      query,
				Page:   config.Page,
				Limit:  config.Limit,
				SortBy: config.SortBy,
			})
		}
		if err != nil {
			presenter.Error(err, "Failed to search the catalog")
			os.Exit(1)
		}

		if config.JSON {
			printJSON(records)
			return
		}
		if len(records) == 0 {
			presenter.Info("No skills found")
			return
		}
		presenter.Skills(records)
	},
}

func init() {
	defaults := NewSearchConfig()
	searchCmd.Flags().Int("page", defaults.Page, "Result page, starting at 1")
	searchCmd.Flags().Int("limit", defaults.Limit, "Maximum number of results")
	searchCmd.Flags().String("sort", defaults.SortBy, "Sort order understood by the catalog, e.g. stars")
	searchCmd.Flags().Bool("json", defaults.JSON, "Print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func getSearchConfigFromFlags(cmd *cobra.Command) *SearchConfig {
	config := NewSearchConfig()
	if page, err := cmd.Flags().GetInt("page"); err == nil {
		config.Page = page
	}
	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		config.Limit = limit
	}
	if sortBy, err := cmd.Flags().GetString("sort"); err == nil {
		config.SortBy = sortBy
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to encode JSON")
		os.Exit(1)
	}
	fmt.Println(string(out))
}
