package model

import "time"

// ---- Read-side contracts consumed by the CLI reports and the JSON API ----

// MapListing is a map with its thumbnail URL and play count.
type MapListing struct {
	Map
	MinimapURL string `json:"minimap_url"`
	PlayCount  int    `json:"play_count"`
}

// MatchupStat reports one 1v1 matchup. For mirror matchups only Count is set
// and the win fields stay zero.
type MatchupStat struct {
	Label    string  `json:"label"`
	RaceA    Race    `json:"race_a"`
	RaceB    Race    `json:"race_b"`
	Count    int     `json:"count"`
	WinsA    int     `json:"wins_a"`
	WinsB    int     `json:"wins_b"`
	PercentA float64 `json:"percent_a"`
	PercentB float64 `json:"percent_b"`
	Mirror   bool    `json:"mirror"`
}

// MapDetail is a map listing plus its matchup statistics and games.
type MapDetail struct {
	MapListing
	Stats         []MatchupStat `json:"stats"`
	Games         []GameSummary `json:"games"`
	AvgGameLength MinSec        `json:"avg_game_length"`
	TotalPlayed   DHMS          `json:"total_time_played"`
}

// PlayerSummary is the short per-player view shown in game lists.
type PlayerSummary struct {
	Name string `json:"name"`
	Race Race   `json:"race"`
}

// CountBlock groups created/killed/lost counters for one unit class.
type CountBlock struct {
	Created int `json:"created"`
	Killed  int `json:"killed"`
	Lost    int `json:"lost"`
}

// ResourceBlock groups spent/lost totals for one resource.
type ResourceBlock struct {
	Spent int `json:"spent"`
	Lost  int `json:"lost"`
}

// PlayerDetail is the full per-player view shown on a game page.
type PlayerDetail struct {
	PlayerSummary
	Color     string        `json:"color"`
	Handicap  int           `json:"handicap"`
	APM       int           `json:"apm"`
	Army      CountBlock    `json:"army"`
	Buildings CountBlock    `json:"buildings"`
	Workers   CountBlock    `json:"workers"`
	Minerals  ResourceBlock `json:"minerals"`
	Vespene   ResourceBlock `json:"vespene"`
}

// NewPlayerDetail builds the detail view from a stored snapshot.
func NewPlayerDetail(name string, gp GamePlayer) PlayerDetail {
	return PlayerDetail{
		PlayerSummary: PlayerSummary{Name: name, Race: gp.Race},
		Color:         gp.Color,
		Handicap:      gp.Handicap,
		APM:           gp.APM,
		Army:          CountBlock{Created: gp.ArmyCreated, Killed: gp.ArmyKilled, Lost: gp.ArmyLost},
		Buildings:     CountBlock{Created: gp.BuildingsCreated, Killed: gp.BuildingsKilled, Lost: gp.BuildingsLost},
		Workers:       CountBlock{Created: gp.WorkersCreated, Killed: gp.WorkersKilled, Lost: gp.WorkersLost},
		Minerals:      ResourceBlock{Spent: gp.MineralsSpent, Lost: gp.MineralsLost},
		Vespene:       ResourceBlock{Spent: gp.VespeneSpent, Lost: gp.VespeneLost},
	}
}

// TeamSummary is one team in a game listing.
type TeamSummary struct {
	Number        int             `json:"team_number"`
	IsWinningTeam bool            `json:"is_winning_team"`
	Players       []PlayerSummary `json:"players"`
}

// TeamDetail is one team on a game page.
type TeamDetail struct {
	Number        int            `json:"team_number"`
	IsWinningTeam bool           `json:"is_winning_team"`
	Players       []PlayerDetail `json:"players"`
}

// GameHeader holds the fields shared by the summary and detail views of a game.
type GameHeader struct {
	ID            int64     `json:"id"`
	Length        MinSec    `json:"length"`
	StartedAt     time.Time `json:"started_at"`
	Type          string    `json:"type"` // 1v1 matchup label when classified, raw type otherwise
	Region        string    `json:"region"`
	MapName       string    `json:"map_name"`
	MapSlug       string    `json:"map_slug"`
	MapImageURL   string    `json:"map_image_url"`
	Expansion     string    `json:"expansion"`
	ExpansionAbbr string    `json:"expansion_abbreviation"`
}

// GameSummary is a row of the paginated game listing.
type GameSummary struct {
	GameHeader
	Teams []TeamSummary `json:"teams"`
}

// GameDetail is a single game with full per-player detail.
type GameDetail struct {
	GameHeader
	Version string         `json:"version"`
	Winner  string         `json:"winner,omitempty"` // set for 1v1 games with a single winning team
	Teams   []TeamDetail   `json:"teams"`
	Leaders []MetricLeader `json:"leaders"`
}

// MetricLeader is the player with the highest value of one metric in a game.
type MetricLeader struct {
	Metric string `json:"metric"`
	Player string `json:"player"`
	Value  int    `json:"value"`
}

// GamePage is one page of the game listing.
type GamePage struct {
	Games   []GameSummary `json:"games"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Pages   int           `json:"pages"`
}

// RaceRecord is a race's win/loss tally across all player-games.
type RaceRecord struct {
	Race    Race    `json:"race"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

// MetricAggregate is a total and an average of one metric under a filter.
type MetricAggregate struct {
	Total   int64   `json:"total"`
	Average float64 `json:"average"`
}

// RaceMetric breaks one metric out for a single race.
type RaceMetric struct {
	Race Race            `json:"race"`
	All  MetricAggregate `json:"all"`
	Win  MetricAggregate `json:"win"`
	Loss MetricAggregate `json:"loss"`
}

// MetricRow is one line of the dashboard tally table.
type MetricRow struct {
	Metric string          `json:"metric"`
	All    MetricAggregate `json:"all"`
	ByRace []RaceMetric    `json:"by_race"`
}

// Dashboard is the home page aggregate.
type Dashboard struct {
	PlayerCount   int           `json:"player_count"`
	MapCount      int           `json:"map_count"`
	GameCount     int           `json:"game_count"`
	AvgGameLength MinSec        `json:"avg_game_length"`
	TotalPlayed   DHMS          `json:"total_time_played"`
	AvgAPM        float64       `json:"avg_apm"`
	AvgBestAPM    float64       `json:"avg_best_apm"`
	Races         []RaceRecord  `json:"races"`
	Metrics       []MetricRow   `json:"metrics"`
	Matchups      []MatchupStat `json:"matchups"`
}

// PlayerRecord is a player's identity plus career totals.
type PlayerRecord struct {
	Player
	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	MaxAPM int `json:"max_apm"`
}
