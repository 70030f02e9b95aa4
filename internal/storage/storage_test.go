package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pable/zeratul/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
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

// seedGame stores a game with one team per side.
func seedGame(t *testing.T, db *DB, mapName string, started time.Time, length int, sides ...side) int64 {
	t.Helper()
	ctx := context.Background()
	var gameID int64
	err := db.InTx(ctx, func(tx *Tx) error {
		m, _, err := tx.EnsureMap(ctx, model.Map{Name: mapName, Slug: mapName})
		if err != nil {
			return err
		}
		gameID, err = tx.CreateGame(ctx, model.Game{StartedAt: started, LengthSeconds: length, Version: "3.1.1", Type: "1v1", Region: "eu", MapID: m.ID})
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
			gp := model.GamePlayer{TeamID: teamID, PlayerID: p.ID, Race: s.race, IsHuman: true, APM: s.apm}
			gp.MineralsSpent = s.apm * 10
			if _, err := tx.CreateGamePlayer(ctx, gp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return gameID
}

var t0 = time.Date(2015, 11, 10, 20, 0, 0, 0, time.UTC)

func TestEnsureMap_FindOrCreate(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	var first, second model.Map
	var created1, created2 bool
	err := db.InTx(ctx, func(tx *Tx) error {
		var err error
		first, created1, err = tx.EnsureMap(ctx, model.Map{Name: "Ice Age", Slug: "ice-age", Author: "Blizzard"})
		if err != nil {
			return err
		}
		second, created2, err = tx.EnsureMap(ctx, model.Map{Name: "Ice Age", Slug: "ice-age", Author: "someone else"})
		return err
	})
	if err != nil {
		t.Fatalf("EnsureMap: %v", err)
	}
	if !created1 || created2 {
		t.Errorf("created flags: want true/false, got %v/%v", created1, created2)
	}
	if first.ID != second.ID {
		t.Errorf("expected same map id, got %d and %d", first.ID, second.ID)
	}
	if second.Author != "Blizzard" {
		t.Errorf("existing map must not be updated, got author %q", second.Author)
	}
}

func TestEnsureMap_SlugCollision(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	err := db.InTx(ctx, func(tx *Tx) error {
		if _, _, err := tx.EnsureMap(ctx, model.Map{Name: "Ice Age", Slug: "ice-age"}); err != nil {
			return err
		}
		_, _, err := tx.EnsureMap(ctx, model.Map{Name: "Ice-Age", Slug: "ice-age"})
		return err
	})
	if err == nil {
		t.Error("expected slug collision error")
	}
}

func TestEnsurePlayer_KeepsFirstValues(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	var a, b model.Player
	err := db.InTx(ctx, func(tx *Tx) error {
		var err error
		if a, _, err = tx.EnsurePlayer(ctx, model.Player{Name: "Zeratul", Region: "eu", HighestLeague: 5}); err != nil {
			return err
		}
		b, _, err = tx.EnsurePlayer(ctx, model.Player{Name: "Zeratul", Region: "us", HighestLeague: 6})
		return err
	})
	if err != nil {
		t.Fatalf("EnsurePlayer: %v", err)
	}
	if a.ID != b.ID || b.Region != "eu" || b.HighestLeague != 5 {
		t.Errorf("expected first row reused unchanged, got %+v", b)
	}
}

func TestInTx_RollbackOnError(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.InTx(ctx, func(tx *Tx) error {
		if _, _, err := tx.EnsureMap(ctx, model.Map{Name: "Ice Age", Slug: "ice-age"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_, maps, _, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if maps != 0 {
		t.Errorf("expected rollback to leave 0 maps, got %d", maps)
	}
}

func TestListGamesAndRosters(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	older := seedGame(t, db, "ice-age", t0, 600,
		side{"alice", model.RaceZerg, model.ResultWin, 100}, side{"bob", model.RaceTerran, model.ResultLoss, 80})
	newer := seedGame(t, db, "ice-age", t0.Add(time.Hour), 900,
		side{"bob", model.RaceTerran, model.ResultWin, 90}, side{"carol", model.RaceProtoss, model.ResultLoss, 70})

	games, err := db.ListGames(ctx, GameFilter{})
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 2 || games[0].ID != newer || games[1].ID != older {
		t.Fatalf("expected newest first, got %+v", games)
	}
	if !games[0].StartedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("started_at round trip: got %v", games[0].StartedAt)
	}
	if games[0].Map.Name != "ice-age" {
		t.Errorf("map join: got %q", games[0].Map.Name)
	}

	page, err := db.ListGames(ctx, GameFilter{Limit: 1, Offset: 1})
	if err != nil || len(page) != 1 || page[0].ID != older {
		t.Errorf("paging: expected [older], got %+v err=%v", page, err)
	}

	rosters, err := db.Rosters(ctx, []int64{older, newer})
	if err != nil {
		t.Fatalf("Rosters: %v", err)
	}
	teams := rosters[older]
	if len(teams) != 2 || teams[0].Number != 1 || teams[1].Number != 2 {
		t.Fatalf("expected two ordered teams, got %+v", teams)
	}
	if teams[0].Players[0].Name != "alice" || teams[0].Players[0].APM != 100 || teams[0].Players[0].MineralsSpent != 1000 {
		t.Errorf("roster player mismatch: %+v", teams[0].Players[0])
	}
	if !teams[0].IsWinner() {
		t.Error("team 1 should be the winner")
	}
}

func TestGameByID_NotFound(t *testing.T) {
	db := openMemDB(t)
	if _, err := db.GameByID(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := db.MapBySlug(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuels_OnlyOneVsOne(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	seedGame(t, db, "ice-age", t0, 600,
		side{"a", model.RaceZerg, model.ResultWin, 1}, side{"b", model.RaceTerran, model.ResultLoss, 1})
	// FFA: three teams.
	seedGame(t, db, "ice-age", t0, 600,
		side{"a", model.RaceZerg, model.ResultWin, 1}, side{"b", model.RaceTerran, model.ResultLoss, 1},
		side{"c", model.RaceProtoss, model.ResultLoss, 1})
	other := seedGame(t, db, "metalopolis", t0, 600,
		side{"c", model.RaceProtoss, model.ResultLoss, 1}, side{"d", model.RaceProtoss, model.ResultWin, 1})

	duels, err := db.Duels(ctx, 0)
	if err != nil {
		t.Fatalf("Duels: %v", err)
	}
	if len(duels) != 2 {
		t.Fatalf("expected 2 duels, got %d", len(duels))
	}
	d := duels[0]
	if d.Sides[0].Race != model.RaceZerg || d.Sides[0].Result != model.ResultWin || d.Sides[1].Race != model.RaceTerran {
		t.Errorf("unexpected first duel %+v", d)
	}

	g, err := db.GameByID(ctx, other)
	if err != nil {
		t.Fatalf("GameByID: %v", err)
	}
	onMap, err := db.Duels(ctx, g.MapID)
	if err != nil {
		t.Fatalf("Duels(map): %v", err)
	}
	if len(onMap) != 1 || onMap[0].GameID != other {
		t.Errorf("expected only the metalopolis duel, got %+v", onMap)
	}
}

func TestMetricAggregate_Filters(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	seedGame(t, db, "m", t0, 600,
		side{"a", model.RaceZerg, model.ResultWin, 100}, side{"b", model.RaceTerran, model.ResultLoss, 50})
	seedGame(t, db, "m", t0, 600,
		side{"a", model.RaceZerg, model.ResultLoss, 60}, side{"b", model.RaceTerran, model.ResultWin, 40})

	all, err := db.MetricAggregate(ctx, model.MetricMineralsSpent, model.MetricFilter{})
	if err != nil {
		t.Fatalf("MetricAggregate: %v", err)
	}
	if all.Total != 2500 || all.Average != 625 {
		t.Errorf("all: want 2500/625, got %+v", all)
	}

	zergWins, err := db.MetricAggregate(ctx, model.MetricAPM, model.MetricFilter{Race: model.RaceZerg, Result: model.ResultWin})
	if err != nil {
		t.Fatalf("MetricAggregate: %v", err)
	}
	if zergWins.Total != 100 {
		t.Errorf("zerg wins apm: want 100, got %+v", zergWins)
	}

	none, err := db.MetricAggregate(ctx, model.MetricAPM, model.MetricFilter{Race: model.RaceProtoss})
	if err != nil {
		t.Fatalf("MetricAggregate: %v", err)
	}
	if none.Total != 0 || none.Average != 0 {
		t.Errorf("no rows should aggregate to zero, got %+v", none)
	}

	if _, err := db.MetricAggregate(ctx, model.Metric(99), model.MetricFilter{}); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestPlayerRecordAndAPMStats(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	seedGame(t, db, "m", t0, 600,
		side{"a", model.RaceZerg, model.ResultWin, 100}, side{"b", model.RaceTerran, model.ResultLoss, 50})
	seedGame(t, db, "m", t0, 300,
		side{"a", model.RaceZerg, model.ResultLoss, 60}, side{"b", model.RaceTerran, model.ResultWin, 40})

	r, err := db.PlayerRecord(ctx, "a")
	if err != nil {
		t.Fatalf("PlayerRecord: %v", err)
	}
	if r.Games != 2 || r.Wins != 1 || r.Losses != 1 || r.MaxAPM != 100 {
		t.Errorf("unexpected record %+v", r)
	}
	if _, err := db.PlayerRecord(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	avg, best, err := db.APMStats(ctx)
	if err != nil {
		t.Fatalf("APMStats: %v", err)
	}
	if avg != 62.5 || best != 75 {
		t.Errorf("APM stats: want 62.5/75, got %v/%v", avg, best)
	}

	lenAvg, lenTotal, err := db.LengthStats(ctx, 0)
	if err != nil {
		t.Fatalf("LengthStats: %v", err)
	}
	if lenAvg != 450 || lenTotal != 900 {
		t.Errorf("length stats: want 450/900, got %v/%v", lenAvg, lenTotal)
	}
}

func TestClean(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	seedGame(t, db, "m", t0, 600,
		side{"a", model.RaceZerg, model.ResultWin, 100}, side{"b", model.RaceTerran, model.ResultLoss, 50})

	if err := db.Clean(ctx); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	players, maps, games, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if players+maps+games != 0 {
		t.Errorf("expected empty store, got players=%d maps=%d games=%d", players, maps, games)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	cols, rows, err := db.QueryRaw("SELECT 1 AS one, 'x' AS two, NULL AS three")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[0] != "one" {
		t.Errorf("unexpected columns %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "1" || rows[0][1] != "x" || rows[0][2] != "NULL" {
		t.Errorf("unexpected rows %v", rows)
	}
}
