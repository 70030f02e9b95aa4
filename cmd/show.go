package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/report"
	"github.com/pable/zeratul/internal/stats"
)

var showCmd = &cobra.Command{
	Use:   "show <game-id>",
	Short: "Show a stored game with per-player statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid game id %q: %w", args[0], err)
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	d, err := newStats(db).GameDetail(cmd.Context(), id)
	if errors.Is(err, stats.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "No game with id %d\n", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	report.PrintGameDetail(os.Stdout, d)
	return nil
}
