package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/api"
	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/logger"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			log := logger.New()

			db, err := store.Open(cfg.Database)
			if err != nil {
				return err
			}
			st := store.New(db)

			parser := importer.DefaultRegistry().Get(cfg.Import.Format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", cfg.Import.Format)
			}

			svc := importer.NewService(st, parser, log)
			server := api.NewServer(svc, st, log)

			addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
			return server.Run(addr)
		},
	}
}
