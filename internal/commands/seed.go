package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/seed"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

func newSeedCommand(configPath *string) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake transactions for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Database)
			if err != nil {
				return err
			}

			if err := seed.Transactions(db, count); err != nil {
				return err
			}
			cmd.Printf("seeded %d transactions\n", count)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 100, "number of transactions to generate")

	return cmd
}
