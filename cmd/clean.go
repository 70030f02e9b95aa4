package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanForce bool

// cleanCmd deletes every imported row but keeps the database and its schema.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all imported games, players and maps",
	Long:  "Remove every stored row while keeping the database file and schema. Equivalent to 'import --delete' without importing anything.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "skip confirmation prompt")
}

func runClean(cmd *cobra.Command, args []string) error {
	if !cleanForce {
		fmt.Fprintf(os.Stderr, "This will delete all imported data in: %s\n", cfg.Database.Path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Clean(cmd.Context()); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Cleaned: %s\n", cfg.Database.Path)
	return nil
}
