// Package commands defines the bankfeed CLI.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/buildinfo"
	"github.com/bankfeed-dev/bankfeed/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "bankfeed",
		Short:   "Belfius bank statement import service",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; the config file carries defaults.
			_ = godotenv.Load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "bankfeed.yaml", "path to config file")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newImportCommand(&configPath))
	rootCmd.AddCommand(newMigrateCommand(&configPath))
	rootCmd.AddCommand(newSeedCommand(&configPath))

	return rootCmd
}

// loadConfig reads the config file, falling back to defaults when the
// file does not exist. Environment overrides apply either way.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
