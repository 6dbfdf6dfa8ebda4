package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/topicrooms/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command. Running it without a subcommand serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topicrooms",
		Short: "Player accounts and topic rooms over a JSON API",
		Long: `topicrooms serves player registration, sessions, the topic catalog
and time-boxed rooms. Settings come from config.yaml and TOPICROOMS_* variables.`,
		RunE:         runServe,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default ./config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

func loadConfig() (*config.AppConfig, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
