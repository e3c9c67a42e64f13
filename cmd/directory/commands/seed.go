package commands

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/local_directory/internal/db"
	"github.com/Skotchmaster/local_directory/internal/events"
	"github.com/Skotchmaster/local_directory/internal/logging"
	"github.com/Skotchmaster/local_directory/internal/repo"
	"github.com/Skotchmaster/local_directory/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default categories that are missing",
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

		svc := &service.CategoryService{Repo: repo.New(gdb), Events: events.Nop{}}
		n, err := svc.EnsureDefaults(logging.IntoContext(cmd.Context(), logger))
		if err != nil {
			return err
		}
		cmd.Printf("%d categories created\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
