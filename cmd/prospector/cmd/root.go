package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/prospector/internal/core/config"
	"github.com/solatis/prospector/internal/logger"
)

// Version is the release version reported by serve.
const Version = "0.1.0"

var (
	configFile string
	workspace  string
)

var rootCmd = &cobra.Command{
	Use:           "prospector",
	Short:         "Prospector CRM filter engine",
	Long:          `Prospector filters leads and companies with rule chains, builds the field catalog and imports spreadsheets.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path")
	flags.String("db-url", "", "database connection URL (sqlite://path or postgres://...)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, text)")
	flags.StringVarP(&workspace, "workspace", "w", "default", "workspace id for local commands")
}

// Execute runs the root command.
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

// loadConfig resolves configuration for cmd and initialises the global logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}
