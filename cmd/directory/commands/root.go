package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/config"
	"github.com/Skotchmaster/local_directory/internal/db"
	"github.com/Skotchmaster/local_directory/internal/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "directory",
	Short: "Local business directory API",
	Long: `directory serves the REST API for users, businesses, reviews and
categories, and carries the schema and seed maintenance commands.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional env file loaded before reading the environment")
}

// loadConfig reads the environment and installs the default logger.
func loadConfig() (config.Config, *slog.Logger) {
	config.LoadEnvFile(envFile)
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return cfg, logger
}

func openDB(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
}
