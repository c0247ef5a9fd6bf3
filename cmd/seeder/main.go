package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ampnm-backend/config"

	"github.com/spf13/cobra"
)

var (
	configFile string
	cfg        *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "ampnm-seeder",
	Short:   "AMPNM database setup tool",
	Long:    "Migrates and seeds the AMPNM application and portal databases, and manages users from the command line.",
	Version: config.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
				return err
			}
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		config.SetupLogger(cfg.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(installationIDCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
