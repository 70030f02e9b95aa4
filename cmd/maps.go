package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/report"
	"github.com/pable/zeratul/internal/stats"
)

var mapsCmd = &cobra.Command{
	Use:   "maps [slug]",
	Short: "List maps, or show matchup statistics and games for one map",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMaps,
}

func runMaps(cmd *cobra.Command, args []string) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()
	svc := newStats(db)

	if len(args) == 1 {
		d, err := svc.MapDetail(cmd.Context(), args[0])
		if errors.Is(err, stats.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No map with slug %q\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("get map: %w", err)
		}
		report.PrintMapDetail(os.Stdout, d)
		return nil
	}

	maps, err := svc.Maps(cmd.Context())
	if err != nil {
		return fmt.Errorf("list maps: %w", err)
	}
	if len(maps) == 0 {
		fmt.Fprintln(os.Stdout, "No maps stored yet. Run 'zeratul import <dir>' to add some.")
		return nil
	}
	report.PrintMapTable(os.Stdout, maps)
	return nil
}
