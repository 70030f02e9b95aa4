package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/ingest"
	"github.com/pable/zeratul/internal/replay"
	"github.com/pable/zeratul/internal/report"
	"github.com/pable/zeratul/internal/storage"
	"github.com/pable/zeratul/internal/thumbnail"
)

var (
	importDelete bool
	importMax    int
)

var importCmd = &cobra.Command{
	Use:   "import [dir-or-replay...]",
	Short: "Import replays into the database",
	Long: `Discover .SC2Replay files (optionally .gz, .bz2 or .zst compressed) under the
given paths, or under replays.directories from the config when none are given,
and store maps, players, games and per-player statistics.

Replays with computer players are skipped. A replay that fails to decode is
reported and does not stop the batch.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDelete, "delete", false, "delete all stored data before importing")
	importCmd.Flags().IntVar(&importMax, "max", 0, "stop after importing this many games (0 = no limit)")
}

// importStore adapts storage.DB to the importer's transaction interface.
type importStore struct {
	db *storage.DB
}

func (s importStore) InTx(ctx context.Context, fn func(ingest.Tx) error) error {
	return s.db.InTx(ctx, func(tx *storage.Tx) error { return fn(tx) })
}

func (s importStore) Clean(ctx context.Context) error {
	return s.db.Clean(ctx)
}

func runImport(cmd *cobra.Command, args []string) error {
	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.Replays.Directories
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no replay paths given and replays.directories is empty in %s", configPath)
	}

	paths, err := replay.Discover(replay.SourceConfig{
		Directories: dirs,
		Exclude:     cfg.Replays.Exclude,
		FollowLinks: cfg.Replays.FollowLinks,
		Depth:       cfg.Replays.Depth,
	})
	if err != nil {
		return fmt.Errorf("discover replays: %w", err)
	}

	decoder, err := replay.NewS2Decoder(replay.DecoderConfig{
		MapCacheDirs: cfg.Replays.MapCacheDirs,
		MinimapDir:   cfg.Replays.MinimapDir,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	thumbs := &thumbnail.Writer{Dir: cfg.MapsDir(), MaxSize: cfg.Media.ThumbnailMax}
	im := ingest.New(importStore{db}, decoder, thumbs, ingest.Config{StripPrefixes: cfg.Maps.StripPrefixes}, appLog)

	fmt.Fprintf(os.Stdout, "Found %d replays.\n", len(paths))
	sum, err := im.Run(cmd.Context(), paths, ingest.Options{Delete: importDelete, Max: importMax})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	report.PrintImportSummary(os.Stdout, sum)
	return nil
}
