package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/report"
	"github.com/pable/zeratul/internal/stats"
)

// playerCmd prints career records for the named players, or for everyone.
var playerCmd = &cobra.Command{
	Use:   "player [name...]",
	Short: "Career win/loss and APM records for players",
	RunE:  runPlayer,
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		recs, err := db.ListPlayers(cmd.Context())
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		if len(recs) == 0 {
			fmt.Fprintln(os.Stdout, "No players stored yet. Run 'zeratul import <dir>' to add some.")
			return nil
		}
		report.PrintPlayerRecords(os.Stdout, recs)
		return nil
	}

	svc := newStats(db)
	var recs []model.PlayerRecord
	for _, name := range args {
		rec, err := svc.PlayerRecord(cmd.Context(), name)
		if errors.Is(err, stats.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No data found for player %q\n", name)
			continue
		}
		if err != nil {
			return fmt.Errorf("query record for %s: %w", name, err)
		}
		recs = append(recs, *rec)
	}
	if len(recs) > 0 {
		report.PrintPlayerRecords(os.Stdout, recs)
	}
	return nil
}
