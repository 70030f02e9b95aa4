package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/storage"
)

func openMemDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type side struct {
	player string
	race   model.Race
	result model.Result
	apm    int
}

var t0 = time.Date(2015, 11, 10, 20, 0, 0, 0, time.UTC)

func seed(t *testing.T, db *storage.DB, m model.Map, started time.Time, length int, sides ...side) int64 {
	t.Helper()
	ctx := context.Background()
	var gameID int64
	err := db.InTx(ctx, func(tx *storage.Tx) error {
		stored, _, err := tx.EnsureMap(ctx, m)
		if err != nil {
			return err
		}
		gameID, err = tx.CreateGame(ctx, model.Game{StartedAt: started, LengthSeconds: length, Version: "3.1.1.39948", Type: "1v1", Region: "eu", MapID: stored.ID})
		if err != nil {
			return err
		}
		for i, s := range sides {
			teamID, err := tx.CreateTeam(ctx, model.GameTeam{GameID: gameID, Number: i + 1, Result: s.result})
			if err != nil {
				return err
			}
			p, _, err := tx.EnsurePlayer(ctx, model.Player{Name: s.player})
			if err != nil {
				return err
			}
			if _, err := tx.CreateGamePlayer(ctx, model.GamePlayer{TeamID: teamID, PlayerID: p.ID, Race: s.race, IsHuman: true, APM: s.apm}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return gameID
}

var iceAge = model.Map{Name: "Ice Age", Slug: "ice-age", Minimap: "ice-age.png"}

func newService(db *storage.DB) *Service {
	return New(db, "/media/maps/", zerolog.Nop())
}

func TestMapDetail(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, iceAge, t0, 600, side{"a", model.RaceZerg, model.ResultWin, 100}, side{"b", model.RaceTerran, model.ResultLoss, 80})
	seed(t, db, iceAge, t0.Add(time.Hour), 300, side{"a", model.RaceZerg, model.ResultLoss, 100}, side{"b", model.RaceTerran, model.ResultWin, 80})
	seed(t, db, iceAge, t0.Add(2*time.Hour), 900, side{"a", model.RaceZerg, model.ResultWin, 100}, side{"c", model.RaceZerg, model.ResultLoss, 80})

	d, err := newService(db).MapDetail(context.Background(), "ice-age")
	if err != nil {
		t.Fatalf("MapDetail: %v", err)
	}
	if d.PlayCount != 3 || d.MinimapURL != "/media/maps/ice-age.png" {
		t.Errorf("listing: got play_count=%d url=%q", d.PlayCount, d.MinimapURL)
	}
	if d.AvgGameLength != (model.MinSec{Minutes: 10, Seconds: 0}) {
		t.Errorf("avg length: want 10:00, got %v", d.AvgGameLength)
	}
	if d.TotalPlayed != (model.DHMS{Minutes: 30}) {
		t.Errorf("total: want 30m, got %v", d.TotalPlayed)
	}
	if len(d.Games) != 3 || d.Games[0].Type != "ZvZ" || d.Games[2].Type != "ZvT" {
		t.Errorf("games should be newest first with matchup types, got %+v", d.Games)
	}

	for _, s := range d.Stats {
		switch s.Label {
		case "ZvT":
			if s.Count != 2 || s.WinsA != 1 || s.WinsB != 1 || s.PercentA != 50 {
				t.Errorf("ZvT: unexpected %+v", s)
			}
		case "ZvZ":
			if s.Count != 1 {
				t.Errorf("ZvZ: want 1 mirror, got %d", s.Count)
			}
		case "TvP":
			if s.Count != 0 || s.PercentA != 50 || s.PercentB != 50 {
				t.Errorf("TvP: expected 50/50 default, got %+v", s)
			}
		}
	}
}

func TestMapDetail_NotFound(t *testing.T) {
	db := openMemDB(t)
	if _, err := newService(db).MapDetail(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGames_Pagination(t *testing.T) {
	db := openMemDB(t)
	for i := 0; i < 5; i++ {
		seed(t, db, iceAge, t0.Add(time.Duration(i)*time.Hour), 60, side{"a", model.RaceZerg, model.ResultWin, 1}, side{"b", model.RaceTerran, model.ResultLoss, 1})
	}
	svc := newService(db)

	p, err := svc.Games(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if p.Total != 5 || p.Pages != 3 || p.Page != 2 || len(p.Games) != 2 {
		t.Errorf("unexpected page %+v", p)
	}

	last, err := svc.Games(context.Background(), 99, 2)
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if last.Page != 3 || len(last.Games) != 1 {
		t.Errorf("out-of-range page should clamp to last, got page=%d games=%d", last.Page, len(last.Games))
	}
	if len(last.Games[0].Teams) != 2 || last.Games[0].Teams[0].Players[0].Name != "a" || !last.Games[0].Teams[0].IsWinningTeam {
		t.Errorf("unexpected teams %+v", last.Games[0].Teams)
	}
	if last.Games[0].Expansion != "Legacy of the Void" {
		t.Errorf("expansion: got %q", last.Games[0].Expansion)
	}
}

func TestGames_Empty(t *testing.T) {
	p, err := newService(openMemDB(t)).Games(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if p.Total != 0 || p.Pages != 1 || p.PerPage != DefaultPerPage || len(p.Games) != 0 {
		t.Errorf("unexpected empty page %+v", p)
	}
}

func TestGameDetail_Winner(t *testing.T) {
	db := openMemDB(t)
	id := seed(t, db, iceAge, t0, 600, side{"a", model.RaceZerg, model.ResultLoss, 100}, side{"b", model.RaceTerran, model.ResultWin, 80})

	d, err := newService(db).GameDetail(context.Background(), id)
	if err != nil {
		t.Fatalf("GameDetail: %v", err)
	}
	if d.Winner != "b" {
		t.Errorf("winner: want b, got %q", d.Winner)
	}
	if d.Teams[0].Players[0].APM != 100 || d.Teams[1].IsWinningTeam != true {
		t.Errorf("unexpected teams %+v", d.Teams)
	}
}

func TestGameDetail_LeadersAndExpansion(t *testing.T) {
	db := openMemDB(t)
	id := seed(t, db, iceAge, t0, 600, side{"a", model.RaceZerg, model.ResultLoss, 100}, side{"b", model.RaceTerran, model.ResultWin, 140})

	d, err := newService(db).GameDetail(context.Background(), id)
	if err != nil {
		t.Fatalf("GameDetail: %v", err)
	}
	if d.Expansion != "Legacy of the Void" || d.ExpansionAbbr != "LoTV" {
		t.Errorf("expansion: got %q/%q", d.Expansion, d.ExpansionAbbr)
	}
	// Only APM is non-zero in the seeded snapshots.
	want := []model.MetricLeader{{Metric: "apm", Player: "b", Value: 140}}
	if len(d.Leaders) != 1 || d.Leaders[0] != want[0] {
		t.Errorf("leaders: want %+v, got %+v", want, d.Leaders)
	}
}

func TestGameDetail_WinnerAnomaly(t *testing.T) {
	db := openMemDB(t)
	id := seed(t, db, iceAge, t0, 600, side{"a", model.RaceZerg, model.ResultLoss, 100}, side{"b", model.RaceTerran, model.ResultLoss, 80})

	d, err := newService(db).GameDetail(context.Background(), id)
	if err != nil {
		t.Fatalf("anomaly must not fail the lookup: %v", err)
	}
	if d.Winner != "" {
		t.Errorf("expected no winner, got %q", d.Winner)
	}
}

func TestGameDetail_NotFound(t *testing.T) {
	if _, err := newService(openMemDB(t)).GameDetail(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, iceAge, t0, 600, side{"a", model.RaceZerg, model.ResultWin, 100}, side{"b", model.RaceTerran, model.ResultLoss, 50})
	seed(t, db, model.Map{Name: "Metalopolis", Slug: "metalopolis"}, t0, 300, side{"a", model.RaceZerg, model.ResultLoss, 60}, side{"b", model.RaceTerran, model.ResultWin, 40})

	d, err := newService(db).Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.PlayerCount != 2 || d.MapCount != 2 || d.GameCount != 2 {
		t.Errorf("counts: got %d/%d/%d", d.PlayerCount, d.MapCount, d.GameCount)
	}
	if d.AvgAPM != 62.5 || d.AvgBestAPM != 75 {
		t.Errorf("apm: got %v/%v", d.AvgAPM, d.AvgBestAPM)
	}
	if len(d.Races) != 3 || d.Races[0].Race != model.RaceZerg || d.Races[0].Wins != 1 || d.Races[0].WinRate != 50 {
		t.Errorf("races: unexpected %+v", d.Races)
	}
	if d.Races[2].Race != model.RaceProtoss || d.Races[2].Games != 0 || d.Races[2].WinRate != 50 {
		t.Errorf("protoss with no games: unexpected %+v", d.Races[2])
	}
	if len(d.Metrics) != len(model.Metrics) {
		t.Fatalf("expected %d metric rows, got %d", len(model.Metrics), len(d.Metrics))
	}
	for _, row := range d.Metrics {
		if row.Metric != "apm" {
			continue
		}
		if row.All.Total != 250 || row.ByRace[0].Win.Total != 100 || row.ByRace[0].Loss.Total != 60 {
			t.Errorf("apm row: unexpected %+v", row)
		}
	}
	if len(d.Matchups) != 6 {
		t.Errorf("expected 6 matchups, got %d", len(d.Matchups))
	}
}

func TestDashboard_MetricSubset(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, iceAge, t0, 600, side{"a", model.RaceZerg, model.ResultWin, 100}, side{"b", model.RaceTerran, model.ResultLoss, 50})

	d, err := newService(db).Dashboard(context.Background(), model.MetricAPM, model.MetricArmyLost)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(d.Metrics) != 2 || d.Metrics[0].Metric != "apm" || d.Metrics[1].Metric != "army_lost" {
		t.Fatalf("expected apm and army_lost rows in order, got %+v", d.Metrics)
	}
	if d.Metrics[0].All.Total != 150 {
		t.Errorf("apm total: want 150, got %d", d.Metrics[0].All.Total)
	}
}

func TestPlayerRecord(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, iceAge, t0, 600, side{"a", model.RaceZerg, model.ResultWin, 100}, side{"b", model.RaceTerran, model.ResultLoss, 50})

	svc := newService(db)
	r, err := svc.PlayerRecord(context.Background(), "a")
	if err != nil {
		t.Fatalf("PlayerRecord: %v", err)
	}
	if r.Wins != 1 || r.MaxAPM != 100 {
		t.Errorf("unexpected record %+v", r)
	}
	if _, err := svc.PlayerRecord(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
