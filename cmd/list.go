package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/report"
)

var (
	listPage    int
	listPerPage int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored games, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listPerPage, "per-page", 0, "games per page (default server.page_size)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	perPage := listPerPage
	if perPage <= 0 {
		perPage = cfg.Server.PageSize
	}
	page, err := newStats(db).Games(cmd.Context(), listPage, perPage)
	if err != nil {
		return fmt.Errorf("list games: %w", err)
	}
	if page.Total == 0 {
		fmt.Fprintln(os.Stdout, "No games stored yet. Run 'zeratul import <dir>' to add some.")
		return nil
	}
	report.PrintGamePage(os.Stdout, page)
	return nil
}
