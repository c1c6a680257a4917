package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospector/internal/router"
)

var usageHistoryLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show engine budget usage and recent search history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ENGINE\tUSED\tBUDGET\tPCT")
		_, _ = fmt.Fprintln(w, "------\t----\t------\t---")
		for _, eng := range router.Engines {
			u := env.Router.UsageSummary()[eng]
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", eng, u.Count, u.Budget, u.PctUsed)
		}
		_ = w.Flush()

		if env.SearchLog == nil {
			return nil
		}

		entries, err := env.SearchLog.Recent(ctx, usageHistoryLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		fmt.Println()
		hw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(hw, "WHEN\tKIND\tENGINE\tRESULTS\tCACHED\tQUERY")
		_, _ = fmt.Fprintln(hw, "----\t----\t------\t-------\t------\t-----")
		for _, e := range entries {
			_, _ = fmt.Fprintf(hw, "%s\t%s\t%s\t%d\t%t\t%s\n",
				e.ExecutedAt.Format(time.RFC3339), e.QueryKind, e.EngineUsed,
				e.ResultCount, e.CacheHit, e.Query)
		}
		return hw.Flush()
	},
}

func init() {
	usageCmd.Flags().IntVar(&usageHistoryLimit, "limit", 20, "number of history entries to show")
	rootCmd.AddCommand(usageCmd)
}
