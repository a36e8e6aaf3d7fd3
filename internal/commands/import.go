package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/logger"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

func newImportCommand(configPath *string) *cobra.Command {
	var dir string
	var format string

	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import Belfius statement CSV files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && dir == "" {
				return errors.New("provide a file argument or --dir")
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Import.Format
			}

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", format)
			}

			db, err := store.Open(cfg.Database)
			if err != nil {
				return err
			}
			svc := importer.NewService(store.New(db), parser, logger.New())

			if len(args) == 1 {
				return importOne(cmd, svc, args[0])
			}
			return importDir(cmd, svc, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "import every CSV in a directory, moving handled files to processed/")
	cmd.Flags().StringVar(&format, "format", "", "statement format (belfius or belfius-legacy); defaults to the config value")

	return cmd
}

func importOne(cmd *cobra.Command, svc *importer.Service, path string) error {
	summary, err := svc.ImportFile(cmd.Context(), path)
	if err != nil {
		return err
	}
	printSummary(cmd, summary)
	return nil
}

// importDir imports every CSV in dir in name order. A duplicate file
// still counts as handled and is moved aside; anything else stops the run.
func importDir(cmd *cobra.Command, svc *importer.Service, dir string) error {
	files, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("no CSV files to import")
		return nil
	}

	for _, file := range files {
		summary, err := svc.ImportFile(cmd.Context(), file.Path)
		if err != nil {
			var dup *importer.DuplicateFileError
			if errors.As(err, &dup) {
				cmd.Printf("%s: %s\n", file.Name, dup.Error())
			} else {
				return fmt.Errorf("importing %s: %w", file.Name, err)
			}
		} else {
			printSummary(cmd, summary)
		}

		if err := importer.MarkProcessed(dir, file.Name); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary *importer.Summary) {
	cmd.Printf("%s: %d records, %d imported, %d skipped, %d errors\n",
		summary.Filename, summary.TotalRecords, summary.Imported, summary.Skipped, summary.Errored)
	for _, rowErr := range summary.RowErrors {
		cmd.Printf("  row %d: %s\n", rowErr.Row, rowErr.Message)
	}
}
