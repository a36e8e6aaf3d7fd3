package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/store"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Database)
			if err != nil {
				return err
			}

			if err := store.New(db).Migrate(); err != nil {
				return err
			}
			cmd.Println("database migrated")
			return nil
		},
	}
}
