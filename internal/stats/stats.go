// Package stats assembles the read-side views (map listing and detail, game
// pages, dashboard, player records) from stored games.
package stats

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pable/zeratul/internal/matchup"
	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/storage"
)

// ErrNotFound is returned for unknown map slugs, game ids and player names.
var ErrNotFound = storage.ErrNotFound

// DefaultPerPage is the game listing page size when none is given.
const DefaultPerPage = 20

// Reader is the query surface the service needs.
type Reader interface {
	Counts(ctx context.Context) (players, maps, games int, err error)
	ListMaps(ctx context.Context) ([]model.MapListing, error)
	MapBySlug(ctx context.Context, slug string) (model.MapListing, error)
	ListGames(ctx context.Context, f storage.GameFilter) ([]model.MapGame, error)
	CountGames(ctx context.Context, f storage.GameFilter) (int, error)
	GameByID(ctx context.Context, id int64) (model.MapGame, error)
	Rosters(ctx context.Context, gameIDs []int64) (map[int64][]model.Roster, error)
	Duels(ctx context.Context, mapID int64) ([]model.Duel, error)
	LengthStats(ctx context.Context, mapID int64) (avg float64, total int64, err error)
	APMStats(ctx context.Context) (avg, avgBest float64, err error)
	RaceRecords(ctx context.Context) ([]model.RaceRecord, error)
	PlayerRecord(ctx context.Context, name string) (model.PlayerRecord, error)
	MetricAggregate(ctx context.Context, m model.Metric, f model.MetricFilter) (model.MetricAggregate, error)
}

// Service builds views over a Reader.
type Service struct {
	r        Reader
	mediaURL string // URL prefix of stored thumbnails, e.g. "/media/maps/"
	log      zerolog.Logger
}

// New returns a Service. minimapURL is prepended to stored thumbnail names.
func New(r Reader, minimapURL string, log zerolog.Logger) *Service {
	return &Service{r: r, mediaURL: minimapURL, log: log}
}

func (s *Service) minimapURL(m model.Map) string {
	if m.Minimap == "" {
		return ""
	}
	return s.mediaURL + m.Minimap
}

// Maps lists every map with its play count.
func (s *Service) Maps(ctx context.Context) ([]model.MapListing, error) {
	maps, err := s.r.ListMaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	for i := range maps {
		maps[i].MinimapURL = s.minimapURL(maps[i].Map)
	}
	return maps, nil
}

// MapDetail returns a map's listing, matchup table, games and durations.
func (s *Service) MapDetail(ctx context.Context, slug string) (*model.MapDetail, error) {
	l, err := s.r.MapBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	l.MinimapURL = s.minimapURL(l.Map)

	duels, err := s.r.Duels(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("map duels: %w", err)
	}
	games, err := s.r.ListGames(ctx, storage.GameFilter{MapID: l.ID})
	if err != nil {
		return nil, fmt.Errorf("map games: %w", err)
	}
	summaries, err := s.summaries(ctx, games)
	if err != nil {
		return nil, err
	}
	avg, total, err := s.r.LengthStats(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("map lengths: %w", err)
	}

	return &model.MapDetail{
		MapListing:    l,
		Stats:         matchup.Stats(duels),
		Games:         summaries,
		AvgGameLength: model.MinutesSeconds(int(avg)),
		TotalPlayed:   model.DaysHoursMinutesSeconds(int(total)),
	}, nil
}

// Games returns one page of the game listing, newest first. Out-of-range
// pages are clamped to the first or last page.
func (s *Service) Games(ctx context.Context, page, perPage int) (*model.GamePage, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total, err := s.r.CountGames(ctx, storage.GameFilter{})
	if err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}
	pages := max(1, (total+perPage-1)/perPage)
	page = min(max(page, 1), pages)

	games, err := s.r.ListGames(ctx, storage.GameFilter{Limit: perPage, Offset: (page - 1) * perPage})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	summaries, err := s.summaries(ctx, games)
	if err != nil {
		return nil, err
	}
	return &model.GamePage{Games: summaries, Total: total, Page: page, PerPage: perPage, Pages: pages}, nil
}

// GameDetail returns one game with full per-player detail.
func (s *Service) GameDetail(ctx context.Context, id int64) (*model.GameDetail, error) {
	g, err := s.r.GameByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rosters, err := s.r.Rosters(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("game rosters: %w", err)
	}
	teams := rosters[id]

	d := &model.GameDetail{
		GameHeader: s.header(g, teams),
		Version:    g.Version,
		Winner:     s.winner(g.ID, teams),
		Leaders:    leaders(teams),
	}
	for _, t := range teams {
		td := model.TeamDetail{Number: t.Number, IsWinningTeam: t.IsWinner()}
		for _, p := range t.Players {
			td.Players = append(td.Players, model.NewPlayerDetail(p.Name, p.GamePlayer))
		}
		d.Teams = append(d.Teams, td)
	}
	return d, nil
}

// leaders picks the top player of every metric. Ties go to the player listed
// first; metrics where nobody scored are left out.
func leaders(teams []model.Roster) []model.MetricLeader {
	out := []model.MetricLeader{}
	for _, m := range model.Metrics {
		var best model.MetricLeader
		for _, t := range teams {
			for _, p := range t.Players {
				if v := m.Value(p.GamePlayer); v > best.Value {
					best = model.MetricLeader{Metric: m.Key(), Player: p.Name, Value: v}
				}
			}
		}
		if best.Value > 0 {
			out = append(out, best)
		}
	}
	return out
}

// PlayerRecord returns a player's career totals.
func (s *Service) PlayerRecord(ctx context.Context, name string) (*model.PlayerRecord, error) {
	r, err := s.r.PlayerRecord(ctx, name)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) summaries(ctx context.Context, games []model.MapGame) ([]model.GameSummary, error) {
	if len(games) == 0 {
		return []model.GameSummary{}, nil
	}
	ids := make([]int64, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	rosters, err := s.r.Rosters(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("game rosters: %w", err)
	}

	out := make([]model.GameSummary, 0, len(games))
	for _, g := range games {
		teams := rosters[g.ID]
		gs := model.GameSummary{GameHeader: s.header(g, teams)}
		for _, t := range teams {
			ts := model.TeamSummary{Number: t.Number, IsWinningTeam: t.IsWinner()}
			for _, p := range t.Players {
				ts.Players = append(ts.Players, model.PlayerSummary{Name: p.Name, Race: p.Race})
			}
			gs.Teams = append(gs.Teams, ts)
		}
		out = append(out, gs)
	}
	return out, nil
}

func (s *Service) header(g model.MapGame, teams []model.Roster) model.GameHeader {
	lineup := make([][]model.Race, len(teams))
	for i, t := range teams {
		lineup[i] = t.Races()
	}
	return model.GameHeader{
		ID:            g.ID,
		Length:        model.MinutesSeconds(g.LengthSeconds),
		StartedAt:     g.StartedAt,
		Type:          matchup.GameType(lineup, g.Type),
		Region:        g.Region,
		MapName:       g.Map.Name,
		MapSlug:       g.Map.Slug,
		MapImageURL:   s.minimapURL(g.Map),
		Expansion:     g.Expansion(),
		ExpansionAbbr: model.ExpansionAbbreviation(g.Version),
	}
}

// winner names the winning player of a 1v1. A 1v1 without exactly one
// winning team is logged and reported as no winner.
func (s *Service) winner(gameID int64, teams []model.Roster) string {
	sizes := make([]int, len(teams))
	results := make([]model.Result, len(teams))
	for i, t := range teams {
		sizes[i] = len(t.Players)
		results[i] = t.Result
	}
	if !matchup.Is1v1(sizes) {
		return ""
	}
	i, ok := matchup.Winner(results)
	if !ok {
		s.log.Warn().Int64("game_id", gameID).Interface("results", results).Msg("1v1 game without a single winning team")
		return ""
	}
	return teams[i].Players[0].Name
}

// Dashboard computes the home page aggregate. Independent sections are
// queried concurrently. metrics restricts the metric table; none means every
// metric in model.Metrics.
func (s *Service) Dashboard(ctx context.Context, metrics ...model.Metric) (*model.Dashboard, error) {
	var d model.Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		d.PlayerCount, d.MapCount, d.GameCount, err = s.r.Counts(ctx)
		if err != nil {
			return fmt.Errorf("counts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		avg, total, err := s.r.LengthStats(ctx, 0)
		if err != nil {
			return fmt.Errorf("length stats: %w", err)
		}
		d.AvgGameLength = model.MinutesSeconds(int(avg))
		d.TotalPlayed = model.DaysHoursMinutesSeconds(int(total))
		return nil
	})
	g.Go(func() error {
		var err error
		d.AvgAPM, d.AvgBestAPM, err = s.r.APMStats(ctx)
		if err != nil {
			return fmt.Errorf("apm stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		recs, err := s.r.RaceRecords(ctx)
		if err != nil {
			return fmt.Errorf("race records: %w", err)
		}
		d.Races = raceTable(recs)
		return nil
	})
	g.Go(func() error {
		rows, err := s.metricTable(ctx, metrics)
		if err != nil {
			return err
		}
		d.Metrics = rows
		return nil
	})
	g.Go(func() error {
		duels, err := s.r.Duels(ctx, 0)
		if err != nil {
			return fmt.Errorf("duels: %w", err)
		}
		d.Matchups = matchup.Stats(duels)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// raceTable orders records by model.Races, filling in races with no games.
func raceTable(recs []model.RaceRecord) []model.RaceRecord {
	byRace := make(map[model.Race]model.RaceRecord, len(recs))
	for _, r := range recs {
		byRace[r.Race] = r
	}
	out := make([]model.RaceRecord, 0, len(model.Races))
	for _, race := range model.Races {
		r := byRace[race]
		r.Race = race
		r.WinRate = matchup.WinRate(r.Wins, r.Games)
		out = append(out, r)
	}
	return out
}

func (s *Service) metricTable(ctx context.Context, metrics []model.Metric) ([]model.MetricRow, error) {
	if len(metrics) == 0 {
		metrics = model.Metrics
	}
	rows := make([]model.MetricRow, 0, len(metrics))
	for _, m := range metrics {
		all, err := s.r.MetricAggregate(ctx, m, model.MetricFilter{})
		if err != nil {
			return nil, err
		}
		row := model.MetricRow{Metric: m.Key(), All: all}
		for _, race := range model.Races {
			rm := model.RaceMetric{Race: race}
			if rm.All, err = s.r.MetricAggregate(ctx, m, model.MetricFilter{Race: race}); err != nil {
				return nil, err
			}
			if rm.Win, err = s.r.MetricAggregate(ctx, m, model.MetricFilter{Race: race, Result: model.ResultWin}); err != nil {
				return nil, err
			}
			if rm.Loss, err = s.r.MetricAggregate(ctx, m, model.MetricFilter{Race: race, Result: model.ResultLoss}); err != nil {
				return nil, err
			}
			row.ByRace = append(row.ByRace, rm)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
