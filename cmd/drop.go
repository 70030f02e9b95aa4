package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes the database file and stored map thumbnails.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the database and stored thumbnails",
	Long:  "Permanently delete the SQLite database and the map thumbnails under media.root. All imported games will be lost. Re-import your replays afterwards to rebuild.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", cfg.Database.Path)
		fmt.Fprintf(os.Stderr, "                         and: %s\n", cfg.MapsDir())
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.RemoveAll(cfg.MapsDir()); err != nil {
		return fmt.Errorf("remove thumbnails: %w", err)
	}
	if err := os.Remove(cfg.Database.Path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", cfg.Database.Path)
	return nil
}
