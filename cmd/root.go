package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/config"
	"github.com/pable/zeratul/internal/logger"
	"github.com/pable/zeratul/internal/stats"
	"github.com/pable/zeratul/internal/storage"
)

var (
	configPath string
	dbPath     string
	logLevel   string

	cfg    *config.Config
	appLog zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "zeratul",
	Short: "StarCraft II replay statistics",
	Long:  "Import StarCraft II replays into a local database and report map, matchup and player statistics.",
	// Config and logger are loaded once for every subcommand.
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultConfig := filepath.Join(mustUserHome(), ".zeratul", "config.yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		c.Database.Path = dbPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c
	appLog = logger.New(os.Stderr, cfg.Log.Level)
	return nil
}

// openStorage opens the configured database, creating its directory first.
func openStorage() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newStats(db *storage.DB) *stats.Service {
	return stats.New(db, cfg.MapsURL(), appLog)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
