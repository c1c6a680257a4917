package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/dedupe"
	"github.com/sells-group/prospector/internal/export"
	"github.com/sells-group/prospector/internal/model"
)

var (
	searchVerticals       []string
	searchRegions         []string
	searchSizes           []string
	searchSignals         []string
	searchExcludeExisting bool
	searchLimit           int
	searchXLSX            string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find companies matching a query or cohort description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		req := model.SearchRequest{
			FreeText: strings.Join(args, " "),
			Limit:    searchLimit,
			Filters: model.FilterState{
				Verticals:       searchVerticals,
				Regions:         searchRegions,
				SizeBuckets:     searchSizes,
				SignalTypes:     searchSignals,
				ExcludeExisting: searchExcludeExisting,
			},
		}

		resp, err := env.Orchestrator.Run(ctx, req)
		if err != nil {
			var serr *model.SearchError
			if errors.As(err, &serr) {
				fmt.Printf("search failed: %s\n", serr.Message)
				if serr.SuggestedAction != "" {
					fmt.Printf("suggestion: %s\n", serr.SuggestedAction)
				}
				return err
			}
			return err
		}

		printCompanies(resp)

		if searchXLSX != "" {
			if err := export.WriteXLSX(searchXLSX, resp.Companies); err != nil {
				return err
			}
			fmt.Printf("\nwrote %d companies to %s\n", len(resp.Companies), searchXLSX)
		}

		zap.L().Info("search complete",
			zap.String("request_id", resp.Meta.RequestID),
			zap.String("engine", resp.Meta.EngineUsed),
			zap.Bool("cache_hit", resp.Meta.CacheHit),
			zap.Int("companies", len(resp.Companies)),
		)
		return nil
	},
}

func printCompanies(resp *model.SearchResponse) {
	w := tabwriter.NewWriter(rootCmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCORE\tDOMAIN\tNAME\tVERTICAL\tEMPLOYEES\tSOURCES")
	_, _ = fmt.Fprintln(w, "-----\t------\t----\t--------\t---------\t-------")

	for _, c := range resp.Companies {
		sources := dedupe.SourceLabel(c.Sources)
		if sources == "" {
			sources = strings.Join(c.Sources, ", ")
		}
		_, _ = fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\t%d\t%s\n",
			c.ICPScore, c.Domain, c.Name, c.Vertical, c.EmployeeCount, sources)
	}
	_ = w.Flush()

	kind := "cohort search"
	if resp.Meta.QueryKind == model.QueryKindName {
		kind = "name lookup"
	}
	fmt.Printf("\n%d companies (%s via %s, %s)\n",
		len(resp.Companies), kind, resp.Meta.EngineUsed,
		resp.Meta.TotalDuration.Round(time.Millisecond))
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchVerticals, "vertical", nil, "filter by vertical (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchRegions, "region", nil, "filter by region (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchSizes, "size", nil, `employee size bucket, e.g. "11-50" or "1000+"`)
	searchCmd.Flags().StringSliceVar(&searchSignals, "signal", nil, "buying signal type to look for")
	searchCmd.Flags().BoolVar(&searchExcludeExisting, "exclude-existing", false, "drop companies already in a connected CRM")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max companies to return (default from config)")
	searchCmd.Flags().StringVar(&searchXLSX, "xlsx", "", "also write results to an XLSX file")
	rootCmd.AddCommand(searchCmd)
}
