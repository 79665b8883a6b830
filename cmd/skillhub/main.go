package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jingkaihe/skillhub/pkg/app"
	"github.com/jingkaihe/skillhub/pkg/config"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	config.Init(viper.GetViper())

	// Load config file if it exists
	if err := config.ReadInConfig(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skillhub",
	Short: "Discover, install and run agent skills",
	Long: `skillhub browses the public agent skill catalog, lists the skills installed
in your workspace and drives the skill agent that installs and runs them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logger.Configure(viper.GetString("log_level"), viper.GetString("log_format"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	rootCmd.PersistentFlags().StringP("workspace", "w", "", "Agent workspace directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text or json)")
	rootCmd.PersistentFlags().String("catalog-url", "", "Catalog search endpoint (overrides config)")

	bindFlag("workspace", "workspace")
	bindFlag("log_level", "log-level")
	bindFlag("log_format", "log-format")
	bindFlag("catalog.base_url", "catalog-url")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bindFlag binds a persistent flag to a viper key; an unset flag leaves
// the config file and environment value in place
func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// newApp loads the configuration and builds the application context
func newApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return app.New(cfg), nil
}

// mustApp is newApp for commands that cannot continue without it
func mustApp() *app.App {
	a, err := newApp()
	if err != nil {
		presenter.Error(err, "Invalid configuration")
		os.Exit(1)
	}
	return a
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.G(ctx).Debug("received interrupt, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
