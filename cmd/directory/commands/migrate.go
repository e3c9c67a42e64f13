package commands

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/local_directory/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig()
		if err := cfg.ValidateStore(); err != nil {
			return err
		}

		gdb, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		logger.Info("schema migrated", "driver", cfg.DBDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
