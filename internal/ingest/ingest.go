// Package ingest imports decoded replays into the store: one transaction per
// replay, find-or-create for maps and players, and a structured Result for
// every file.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pable/zeratul/internal/aggregator"
	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/replay"
	"github.com/pable/zeratul/internal/slug"
)

// ErrComputerPlayer marks a replay skipped because it has a non-human player.
var ErrComputerPlayer = errors.New("replay has a computer player")

// Tx is the write surface one replay's import needs.
type Tx interface {
	EnsureMap(ctx context.Context, m model.Map) (model.Map, bool, error)
	SetMapMinimap(ctx context.Context, mapID int64, filename string) error
	EnsurePlayer(ctx context.Context, p model.Player) (model.Player, bool, error)
	CreateGame(ctx context.Context, g model.Game) (int64, error)
	CreateTeam(ctx context.Context, t model.GameTeam) (int64, error)
	CreateGamePlayer(ctx context.Context, gp model.GamePlayer) (int64, error)
}

// Store runs transactions and supports a full reset.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	Clean(ctx context.Context) error
}

// Thumbnails stores a map's minimap and returns the stored file name.
type Thumbnails interface {
	Save(mapName string, data []byte) (string, error)
	Remove(file string) error
}

// Config is the importer's fixed configuration.
type Config struct {
	// StripPrefixes are removed from the start of map names before lookup.
	StripPrefixes []string
}

// DefaultStripPrefixes is used when Config.StripPrefixes is nil.
var DefaultStripPrefixes = []string{"[League] "}

// Options control one batch.
type Options struct {
	Delete bool // wipe the store before importing
	Max    int  // stop after this many imported games; 0 means no limit
}

// Importer runs the per-replay state machine.
type Importer struct {
	store   Store
	decoder replay.Decoder
	thumbs  Thumbnails
	cfg     Config
	log     zerolog.Logger
}

// New builds an Importer. thumbs may be nil, in which case minimaps are not stored.
func New(store Store, decoder replay.Decoder, thumbs Thumbnails, cfg Config, log zerolog.Logger) *Importer {
	if cfg.StripPrefixes == nil {
		cfg.StripPrefixes = DefaultStripPrefixes
	}
	return &Importer{store: store, decoder: decoder, thumbs: thumbs, cfg: cfg, log: log}
}

// NormalizeMapName strips the first matching prefix and surrounding spaces.
func NormalizeMapName(name string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			name = strings.TrimPrefix(name, p)
			break
		}
	}
	return strings.TrimSpace(name)
}

// Run imports the given paths in order and returns the batch summary. A
// failing replay is logged and recorded; it never stops the batch. Only a
// failed reset or a cancelled context returns an error.
func (im *Importer) Run(ctx context.Context, paths []string, opts Options) (Summary, error) {
	var sum Summary

	if opts.Delete {
		im.log.Info().Msg("Deleting all existing data")
		if err := im.store.Clean(ctx); err != nil {
			return sum, fmt.Errorf("clean store: %w", err)
		}
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if opts.Max > 0 && sum.Counts.Games >= opts.Max {
			im.log.Info().Int("max", opts.Max).Msg("Import cap reached")
			break
		}

		im.log.Info().Str("path", path).Msgf("Importing replay %d/%d", i+1, len(paths))
		res := im.safeImport(ctx, path)
		sum.add(res)

		switch res.Status {
		case StatusSkipped:
			im.log.Info().Str("path", path).Str("reason", res.Reason).Msg("Skipped replay")
		case StatusFailed:
			im.log.Error().Str("path", path).Str("error_type", errorType(res.Err)).
				Err(res.Err).Msg("Failed to import replay")
		}
	}

	c := sum.Counts
	im.log.Info().
		Int("maps", c.Maps).Int("players", c.Players).Int("games", c.Games).
		Int("game_teams", c.GameTeams).Int("game_players", c.GamePlayers).
		Int("skipped", sum.Skipped).Int("failed", sum.Failed).
		Msg("Import finished")
	return sum, nil
}

func (im *Importer) safeImport(ctx context.Context, path string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Path: path}.fail(fmt.Errorf("panic: %v", p))
		}
	}()
	return im.Import(ctx, path)
}

// errorType names the innermost wrapped error's type.
func errorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}

// Import runs one replay through gate, map, game and team/player import.
func (im *Importer) Import(ctx context.Context, path string) Result {
	res := Result{Path: path}

	r, err := im.decoder.Decode(path)
	if err != nil {
		return res.fail(fmt.Errorf("decode: %w", err))
	}

	if cpus := r.Computers(); len(cpus) > 0 {
		res.Status = StatusSkipped
		res.Reason = fmt.Sprintf("computer player %q", cpus[0].Name)
		res.Err = ErrComputerPlayer
		return res
	}

	stats, err := aggregator.Aggregate(r)
	if err != nil {
		return res.fail(fmt.Errorf("aggregate: %w", err))
	}

	var (
		counts  Counts
		pending *minimap
	)
	err = im.store.InTx(ctx, func(tx Tx) error {
		counts = Counts{}
		mapID, mm, err := im.resolveMap(ctx, tx, r.Map, &counts)
		if err != nil {
			return err
		}
		pending = mm

		gameID, err := tx.CreateGame(ctx, model.Game{
			StartedAt:     r.StartTime,
			LengthSeconds: r.LengthSeconds(),
			Version:       r.Release,
			Type:          r.RealType,
			Region:        r.Region,
			MapID:         mapID,
		})
		if err != nil {
			return err
		}
		counts.Games++
		res.GameID = gameID

		for _, team := range r.Teams {
			if err := im.importTeam(ctx, tx, gameID, team, stats, &counts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		res.GameID = 0
		return res.fail(err)
	}
	if pending != nil {
		im.storeMinimap(ctx, pending)
	}

	res.Status = StatusImported
	res.Counts = counts
	return res
}

// minimap is the thumbnail of a map created in a transaction that has not
// committed yet.
type minimap struct {
	mapID int64
	name  string
	data  []byte
}

// resolveMap finds or creates the replay's map. A newly created map with a
// minimap is returned as pending; its file is written only after commit.
func (im *Importer) resolveMap(ctx context.Context, tx Tx, info replay.MapInfo, counts *Counts) (int64, *minimap, error) {
	name := NormalizeMapName(info.Name, im.cfg.StripPrefixes)
	if name == "" {
		return 0, nil, fmt.Errorf("replay has no map name")
	}
	m, created, err := tx.EnsureMap(ctx, model.Map{
		Name:        name,
		Slug:        slug.Make(name),
		Author:      info.Author,
		Website:     info.Website,
		Description: info.Description,
	})
	if err != nil {
		return 0, nil, err
	}
	if !created {
		return m.ID, nil, nil
	}
	counts.Maps++

	if im.thumbs == nil || len(info.Minimap) == 0 {
		return m.ID, nil, nil
	}
	return m.ID, &minimap{mapID: m.ID, name: name, data: info.Minimap}, nil
}

// storeMinimap writes a committed map's thumbnail and links it to the row.
// Failures only cost the picture, so they are logged and not returned.
func (im *Importer) storeMinimap(ctx context.Context, mm *minimap) {
	file, err := im.thumbs.Save(mm.name, mm.data)
	if err != nil {
		im.log.Warn().Err(err).Str("map", mm.name).Msg("Could not store minimap")
		return
	}
	err = im.store.InTx(ctx, func(tx Tx) error {
		return tx.SetMapMinimap(ctx, mm.mapID, file)
	})
	if err == nil {
		return
	}
	im.log.Warn().Err(err).Str("map", mm.name).Msg("Could not link minimap")
	if err := im.thumbs.Remove(file); err != nil {
		im.log.Warn().Err(err).Str("file", file).Msg("Could not remove unlinked minimap")
	}
}

func (im *Importer) importTeam(ctx context.Context, tx Tx, gameID int64, team *replay.Team, stats map[*replay.Player]aggregator.PlayerStats, counts *Counts) error {
	teamID, err := tx.CreateTeam(ctx, model.GameTeam{
		GameID: gameID,
		Number: team.Number,
		Result: model.Result(team.Result),
	})
	if err != nil {
		return err
	}
	counts.GameTeams++

	for _, p := range team.Players {
		player, created, err := tx.EnsurePlayer(ctx, model.Player{
			Name:          p.Name,
			Region:        p.Region,
			URL:           p.URL,
			HighestLeague: p.HighestLeague,
		})
		if err != nil {
			return err
		}
		if created {
			counts.Players++
		}

		st := stats[p]
		if _, err := tx.CreateGamePlayer(ctx, model.GamePlayer{
			TeamID:   teamID,
			PlayerID: player.ID,
			Color:    p.Color,
			Race:     model.ParseRace(p.Race),
			Handicap: p.Handicap,
			IsHuman:  p.IsHuman,
			APM:      st.APM,
			Tally:    st.Tally,
		}); err != nil {
			return err
		}
		counts.GamePlayers++
	}
	return nil
}
