package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/report"
)

var summaryMetrics []string

// summaryCmd is the cobra command for displaying the dashboard.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display the dashboard: player, map and game counts, average and total game
length, APM averages, per-race win rates, unit and resource tallies per race
and result, and 1v1 matchup statistics across all maps.

Use --metric to restrict the tally table to one or more metrics, e.g.
--metric apm --metric army_lost.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringSliceVar(&summaryMetrics, "metric", nil, "restrict the metric table to these keys (repeatable)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	metrics, err := model.ParseMetrics(summaryMetrics)
	if err != nil {
		return err
	}
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	d, err := newStats(db).Dashboard(cmd.Context(), metrics...)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}
	if d.GameCount == 0 {
		fmt.Fprintln(os.Stdout, "No games stored yet. Run 'zeratul import <dir>' to add some.")
		return nil
	}
	report.PrintDashboard(os.Stdout, d)
	return nil
}
