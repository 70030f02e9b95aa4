package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pable/zeratul/internal/model"
)

// Counts returns the number of players, maps and games.
func (db *DB) Counts(ctx context.Context) (players, maps, games int, err error) {
	err = db.conn.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(1) FROM players),
		       (SELECT COUNT(1) FROM maps),
		       (SELECT COUNT(1) FROM games)`).
		Scan(&players, &maps, &games)
	return
}

// ListMaps returns all maps with their play counts, ordered by name.
func (db *DB) ListMaps(ctx context.Context) ([]model.MapListing, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT m.id, m.name, m.slug, m.author, m.website, m.description, m.minimap,
		       COUNT(g.id)
		FROM maps m LEFT JOIN games g ON g.map_id = m.id
		GROUP BY m.id
		ORDER BY m.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MapListing
	for rows.Next() {
		var l model.MapListing
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug, &l.Author, &l.Website, &l.Description, &l.Minimap,
			&l.PlayCount); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// MapBySlug returns the map with the given slug and its play count.
func (db *DB) MapBySlug(ctx context.Context, slug string) (model.MapListing, error) {
	var l model.MapListing
	err := db.conn.QueryRowContext(ctx, `
		SELECT m.id, m.name, m.slug, m.author, m.website, m.description, m.minimap,
		       (SELECT COUNT(1) FROM games g WHERE g.map_id = m.id)
		FROM maps m WHERE m.slug = ?`, slug).
		Scan(&l.ID, &l.Name, &l.Slug, &l.Author, &l.Website, &l.Description, &l.Minimap, &l.PlayCount)
	if err == sql.ErrNoRows {
		return model.MapListing{}, fmt.Errorf("map %q: %w", slug, ErrNotFound)
	}
	return l, err
}

// GameFilter narrows ListGames and CountGames. Zero values mean no filter.
type GameFilter struct {
	MapID  int64
	Limit  int
	Offset int
}

func gameSelect() sq.SelectBuilder {
	return sq.Select(
		"g.id", "g.started_at", "g.length_seconds", "g.version", "g.type", "g.region", "g.map_id",
		"m.name", "m.slug", "m.author", "m.website", "m.description", "m.minimap",
	).From("games g").Join("maps m ON m.id = g.map_id")
}

func scanMapGame(s interface{ Scan(...any) error }) (model.MapGame, error) {
	var mg model.MapGame
	var started int64
	err := s.Scan(&mg.ID, &started, &mg.LengthSeconds, &mg.Version, &mg.Type, &mg.Region, &mg.MapID,
		&mg.Map.Name, &mg.Map.Slug, &mg.Map.Author, &mg.Map.Website, &mg.Map.Description, &mg.Map.Minimap)
	if err != nil {
		return mg, err
	}
	mg.StartedAt = time.Unix(started, 0).UTC()
	mg.Map.ID = mg.MapID
	return mg, nil
}

// ListGames returns games newest first.
func (db *DB) ListGames(ctx context.Context, f GameFilter) ([]model.MapGame, error) {
	q := gameSelect().OrderBy("g.started_at DESC", "g.id DESC")
	if f.MapID != 0 {
		q = q.Where(sq.Eq{"g.map_id": f.MapID})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(max(f.Offset, 0)))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build game query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MapGame
	for rows.Next() {
		mg, err := scanMapGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mg)
	}
	return out, rows.Err()
}

// CountGames counts games matching the map filter.
func (db *DB) CountGames(ctx context.Context, f GameFilter) (int, error) {
	q := sq.Select("COUNT(1)").From("games g")
	if f.MapID != 0 {
		q = q.Where(sq.Eq{"g.map_id": f.MapID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	err = db.conn.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// GameByID returns one game with its map.
func (db *DB) GameByID(ctx context.Context, id int64) (model.MapGame, error) {
	query, args, err := gameSelect().Where(sq.Eq{"g.id": id}).ToSql()
	if err != nil {
		return model.MapGame{}, fmt.Errorf("build game query: %w", err)
	}
	mg, err := scanMapGame(db.conn.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return model.MapGame{}, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}
	return mg, err
}

// Rosters returns the teams and players of each game, keyed by game id.
// Teams are ordered by team number and players by insertion.
func (db *DB) Rosters(ctx context.Context, gameIDs []int64) (map[int64][]model.Roster, error) {
	out := make(map[int64][]model.Roster)
	if len(gameIDs) == 0 {
		return out, nil
	}
	query, args, err := sq.Select(
		"gt.id", "gt.game_id", "gt.team_number", "gt.result",
		"gp.id", "gp.player_id", "p.name", "gp.color", "gp.race", "gp.handicap", "gp.is_human", "gp.apm",
		"gp.army_created", "gp.army_lost", "gp.army_killed",
		"gp.buildings_created", "gp.buildings_lost", "gp.buildings_killed",
		"gp.workers_created", "gp.workers_lost", "gp.workers_killed",
		"gp.minerals_spent", "gp.minerals_lost", "gp.vespene_spent", "gp.vespene_lost",
	).
		From("game_teams gt").
		LeftJoin("game_players gp ON gp.team_id = gt.id").
		LeftJoin("players p ON p.id = gp.player_id").
		Where(sq.Eq{"gt.game_id": gameIDs}).
		OrderBy("gt.game_id", "gt.team_number", "gp.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build roster query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			team     model.GameTeam
			result   string
			gpID     sql.NullInt64
			playerID sql.NullInt64
			name     sql.NullString
			color    sql.NullString
			race     sql.NullString
			handicap sql.NullInt64
			isHuman  sql.NullInt64
			apm      sql.NullInt64
			c        [13]sql.NullInt64
		)
		if err := rows.Scan(&team.ID, &team.GameID, &team.Number, &result,
			&gpID, &playerID, &name, &color, &race, &handicap, &isHuman, &apm,
			&c[0], &c[1], &c[2], &c[3], &c[4], &c[5], &c[6], &c[7], &c[8], &c[9], &c[10], &c[11], &c[12],
		); err != nil {
			return nil, err
		}
		team.Result = model.Result(result)

		teams := out[team.GameID]
		if n := len(teams); n == 0 || teams[n-1].ID != team.ID {
			teams = append(teams, model.Roster{GameTeam: team})
		}
		if gpID.Valid {
			last := &teams[len(teams)-1]
			last.Players = append(last.Players, model.RosterPlayer{
				Name: name.String,
				GamePlayer: model.GamePlayer{
					ID: gpID.Int64, TeamID: team.ID, PlayerID: playerID.Int64,
					Color: color.String, Race: model.Race(race.String),
					Handicap: int(handicap.Int64), IsHuman: isHuman.Int64 != 0, APM: int(apm.Int64),
					Tally: model.Tally{
						ArmyCreated: int(c[0].Int64), ArmyLost: int(c[1].Int64), ArmyKilled: int(c[2].Int64),
						BuildingsCreated: int(c[3].Int64), BuildingsLost: int(c[4].Int64), BuildingsKilled: int(c[5].Int64),
						WorkersCreated: int(c[6].Int64), WorkersLost: int(c[7].Int64), WorkersKilled: int(c[8].Int64),
						MineralsSpent: int(c[9].Int64), MineralsLost: int(c[10].Int64),
						VespeneSpent: int(c[11].Int64), VespeneLost: int(c[12].Int64),
					},
				},
			})
		}
		out[team.GameID] = teams
	}
	return out, rows.Err()
}

// oneVsOneGames selects ids of games with exactly two teams of one player each.
const oneVsOneGames = `
	SELECT gt.game_id FROM game_teams gt
	WHERE (SELECT COUNT(1) FROM game_players gp WHERE gp.team_id = gt.id) = 1
	GROUP BY gt.game_id
	HAVING COUNT(1) = 2
	   AND (SELECT COUNT(1) FROM game_teams t2 WHERE t2.game_id = gt.game_id) = 2`

// Duels returns the race/result view of every 1v1 game, optionally on one map.
func (db *DB) Duels(ctx context.Context, mapID int64) ([]model.Duel, error) {
	q := sq.Select("g.id", "g.map_id", "gt.result", "gp.race").
		From("games g").
		Join("game_teams gt ON gt.game_id = g.id").
		Join("game_players gp ON gp.team_id = gt.id").
		Where("g.id IN (" + oneVsOneGames + ")").
		OrderBy("g.id", "gt.team_number")
	if mapID != 0 {
		q = q.Where(sq.Eq{"g.map_id": mapID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build duel query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Duel
	side := 0
	for rows.Next() {
		var (
			gameID, gameMap int64
			result, race    string
		)
		if err := rows.Scan(&gameID, &gameMap, &result, &race); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].GameID != gameID {
			out = append(out, model.Duel{GameID: gameID, MapID: gameMap})
			side = 0
		}
		if side < 2 {
			out[len(out)-1].Sides[side] = model.DuelSide{Race: model.Race(race), Result: model.Result(result)}
		}
		side++
	}
	return out, rows.Err()
}

// LengthStats returns the average and total game length in seconds,
// optionally on one map.
func (db *DB) LengthStats(ctx context.Context, mapID int64) (avg float64, total int64, err error) {
	q := sq.Select("COALESCE(AVG(length_seconds), 0)", "COALESCE(SUM(length_seconds), 0)").From("games")
	if mapID != 0 {
		q = q.Where(sq.Eq{"map_id": mapID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build length query: %w", err)
	}
	err = db.conn.QueryRowContext(ctx, query, args...).Scan(&avg, &total)
	return
}

// APMStats returns the average APM over all player-games, and the average of
// each player's best APM.
func (db *DB) APMStats(ctx context.Context) (avg, avgBest float64, err error) {
	err = db.conn.QueryRowContext(ctx, `
		SELECT COALESCE((SELECT AVG(apm) FROM game_players), 0),
		       COALESCE((SELECT AVG(best) FROM (SELECT MAX(apm) AS best FROM game_players GROUP BY player_id)), 0)`).
		Scan(&avg, &avgBest)
	return
}

// RaceRecords returns games, wins and losses per race across all player-games.
// Win rates are left for the caller.
func (db *DB) RaceRecords(ctx context.Context) ([]model.RaceRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT gp.race, COUNT(1),
		       COALESCE(SUM(gt.result = 'Win'), 0),
		       COALESCE(SUM(gt.result = 'Loss'), 0)
		FROM game_players gp JOIN game_teams gt ON gt.id = gp.team_id
		GROUP BY gp.race
		ORDER BY gp.race`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RaceRecord
	for rows.Next() {
		var r model.RaceRecord
		if err := rows.Scan(&r.Race, &r.Games, &r.Wins, &r.Losses); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PlayerRecord returns a player with their career totals.
func (db *DB) PlayerRecord(ctx context.Context, name string) (model.PlayerRecord, error) {
	var r model.PlayerRecord
	err := db.conn.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.region, p.url, p.highest_league,
		       COUNT(gp.id),
		       COALESCE(SUM(gt.result = 'Win'), 0),
		       COALESCE(SUM(gt.result = 'Loss'), 0),
		       COALESCE(MAX(gp.apm), 0)
		FROM players p
		LEFT JOIN game_players gp ON gp.player_id = p.id
		LEFT JOIN game_teams gt ON gt.id = gp.team_id
		WHERE p.name = ?
		GROUP BY p.id`, name).
		Scan(&r.ID, &r.Name, &r.Region, &r.URL, &r.HighestLeague, &r.Games, &r.Wins, &r.Losses, &r.MaxAPM)
	if err == sql.ErrNoRows {
		return model.PlayerRecord{}, fmt.Errorf("player %q: %w", name, ErrNotFound)
	}
	return r, err
}

// ListPlayers returns every player's record, most games first.
func (db *DB) ListPlayers(ctx context.Context) ([]model.PlayerRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.name, p.region, p.url, p.highest_league,
		       COUNT(gp.id),
		       COALESCE(SUM(gt.result = 'Win'), 0),
		       COALESCE(SUM(gt.result = 'Loss'), 0),
		       COALESCE(MAX(gp.apm), 0)
		FROM players p
		LEFT JOIN game_players gp ON gp.player_id = p.id
		LEFT JOIN game_teams gt ON gt.id = gp.team_id
		GROUP BY p.id
		ORDER BY COUNT(gp.id) DESC, p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerRecord
	for rows.Next() {
		var r model.PlayerRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Region, &r.URL, &r.HighestLeague,
			&r.Games, &r.Wins, &r.Losses, &r.MaxAPM); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
