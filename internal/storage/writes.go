package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pable/zeratul/internal/model"
)

// EnsureMap inserts m unless a map with the same name exists, and returns the
// stored row. created reports whether this call inserted it.
func (t *Tx) EnsureMap(ctx context.Context, m model.Map) (model.Map, bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO maps(name, slug, author, website, description, minimap)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		m.Name, m.Slug, m.Author, m.Website, m.Description, m.Minimap,
	)
	if err != nil {
		return model.Map{}, false, fmt.Errorf("insert map: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Map{}, false, err
	}

	var out model.Map
	err = t.tx.QueryRowContext(ctx, `
		SELECT id, name, slug, author, website, description, minimap
		FROM maps WHERE name = ?`, m.Name).
		Scan(&out.ID, &out.Name, &out.Slug, &out.Author, &out.Website, &out.Description, &out.Minimap)
	if err == sql.ErrNoRows {
		// The insert was ignored because another map already owns the slug.
		return model.Map{}, false, fmt.Errorf("map %q: slug %q already taken", m.Name, m.Slug)
	}
	if err != nil {
		return model.Map{}, false, fmt.Errorf("select map: %w", err)
	}
	return out, n > 0, nil
}

// SetMapMinimap records the thumbnail file name for a map.
func (t *Tx) SetMapMinimap(ctx context.Context, mapID int64, filename string) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE maps SET minimap = ? WHERE id = ?", filename, mapID)
	if err != nil {
		return fmt.Errorf("update map minimap: %w", err)
	}
	return nil
}

// EnsurePlayer inserts p unless a player with the same name exists, and
// returns the stored row. Existing rows are never updated.
func (t *Tx) EnsurePlayer(ctx context.Context, p model.Player) (model.Player, bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO players(name, region, url, highest_league)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		p.Name, p.Region, p.URL, p.HighestLeague,
	)
	if err != nil {
		return model.Player{}, false, fmt.Errorf("insert player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Player{}, false, err
	}

	var out model.Player
	err = t.tx.QueryRowContext(ctx, `
		SELECT id, name, region, url, highest_league FROM players WHERE name = ?`, p.Name).
		Scan(&out.ID, &out.Name, &out.Region, &out.URL, &out.HighestLeague)
	if err != nil {
		return model.Player{}, false, fmt.Errorf("select player: %w", err)
	}
	return out, n > 0, nil
}

// CreateGame inserts a game and returns its id.
func (t *Tx) CreateGame(ctx context.Context, g model.Game) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO games(started_at, length_seconds, version, type, region, map_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.StartedAt.UTC().Unix(), g.LengthSeconds, g.Version, g.Type, g.Region, g.MapID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return res.LastInsertId()
}

// CreateTeam inserts a game team and returns its id.
func (t *Tx) CreateTeam(ctx context.Context, gt model.GameTeam) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO game_teams(game_id, team_number, result) VALUES (?, ?, ?)`,
		gt.GameID, gt.Number, string(gt.Result),
	)
	if err != nil {
		return 0, fmt.Errorf("insert game team: %w", err)
	}
	return res.LastInsertId()
}

// CreateGamePlayer inserts one player's snapshot for a game and returns its id.
func (t *Tx) CreateGamePlayer(ctx context.Context, gp model.GamePlayer) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO game_players(
			team_id, player_id, color, race, handicap, is_human, apm,
			army_created, army_lost, army_killed,
			buildings_created, buildings_lost, buildings_killed,
			workers_created, workers_lost, workers_killed,
			minerals_spent, minerals_lost, vespene_spent, vespene_lost
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		gp.TeamID, gp.PlayerID, gp.Color, string(gp.Race), gp.Handicap, boolInt(gp.IsHuman), gp.APM,
		gp.ArmyCreated, gp.ArmyLost, gp.ArmyKilled,
		gp.BuildingsCreated, gp.BuildingsLost, gp.BuildingsKilled,
		gp.WorkersCreated, gp.WorkersLost, gp.WorkersKilled,
		gp.MineralsSpent, gp.MineralsLost, gp.VespeneSpent, gp.VespeneLost,
	)
	if err != nil {
		return 0, fmt.Errorf("insert game player: %w", err)
	}
	return res.LastInsertId()
}
