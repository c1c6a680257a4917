package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospector/internal/export"
)

var (
	exportOut   string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recent search history to an XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.SearchLog == nil {
			return eris.New("search log not configured: set PROSPECTOR_STORE_DRIVER to postgres or sqlite")
		}

		entries, err := env.SearchLog.Recent(ctx, exportLimit)
		if err != nil {
			return err
		}

		if err := export.WriteHistoryXLSX(exportOut, entries); err != nil {
			return err
		}
		fmt.Printf("wrote %d history entries to %s\n", len(entries), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "searches.xlsx", "output file path")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 100, "number of history entries to export")
	rootCmd.AddCommand(exportCmd)
}
