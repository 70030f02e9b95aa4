package model

import (
	"strings"
	"time"
)

// Race is a playable StarCraft II race as recorded in the replay.
type Race string

const (
	RaceZerg    Race = "Zerg"
	RaceTerran  Race = "Terran"
	RaceProtoss Race = "Protoss"
)

// Races lists the three playable races in display order.
var Races = []Race{RaceZerg, RaceTerran, RaceProtoss}

// Initial returns the one-letter abbreviation used in matchup labels.
func (r Race) Initial() string {
	if r == "" {
		return "?"
	}
	return string(r[:1])
}

// ParseRace maps a replay race string onto a Race. Unknown strings are kept as-is.
func ParseRace(s string) Race {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zerg", "zerg (random)":
		return RaceZerg
	case "terran", "terran (random)", "terraner":
		return RaceTerran
	case "protoss", "protoss (random)":
		return RaceProtoss
	}
	return Race(s)
}

// Result is a team's outcome label.
type Result string

const (
	ResultWin     Result = "Win"
	ResultLoss    Result = "Loss"
	ResultTie     Result = "Tie"
	ResultUnknown Result = "Unknown"
)

// ---- Persisted entities ----

// Map is a ladder or custom map, unique by normalized name.
type Map struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Author      string `json:"author"`
	Website     string `json:"website"`
	Description string `json:"description"`
	Minimap     string `json:"minimap"` // thumbnail filename relative to the media maps dir
}

// Player is a durable identity, unique by display name.
type Player struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Region        string `json:"region"`
	URL           string `json:"url"`
	HighestLeague int    `json:"highest_league"`
}

// Game is one imported replay.
type Game struct {
	ID            int64     `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	LengthSeconds int       `json:"length_seconds"`
	Version       string    `json:"version"`
	Type          string    `json:"type"` // raw engine type: "1v1", "2v2", "FFA", ...
	Region        string    `json:"region"`
	MapID         int64     `json:"map_id"`
}

// Expansion returns the expansion name implied by the version prefix.
func (g Game) Expansion() string {
	return ExpansionName(g.Version)
}

// ExpansionName maps a release string onto the expansion it shipped with.
func ExpansionName(version string) string {
	switch {
	case strings.HasPrefix(version, "1"):
		return "Wings of Liberty"
	case strings.HasPrefix(version, "2"):
		return "Heart of the Swarm"
	case strings.HasPrefix(version, "3"):
		return "Legacy of the Void"
	}
	return ""
}

// ExpansionAbbreviation is the short form of ExpansionName.
func ExpansionAbbreviation(version string) string {
	switch {
	case strings.HasPrefix(version, "1"):
		return "WoL"
	case strings.HasPrefix(version, "2"):
		return "HotS"
	case strings.HasPrefix(version, "3"):
		return "LoTV"
	}
	return ""
}

// GameTeam is one side of a game. Number orders teams within the game.
type GameTeam struct {
	ID     int64  `json:"id"`
	GameID int64  `json:"game_id"`
	Number int    `json:"team_number"`
	Result Result `json:"result"`
}

// IsWinner reports whether the team won.
func (t GameTeam) IsWinner() bool {
	return t.Result == ResultWin
}

// Tally holds a player's unit and resource counters for one game.
type Tally struct {
	ArmyCreated      int `json:"army_created"`
	ArmyLost         int `json:"army_lost"`
	ArmyKilled       int `json:"army_killed"`
	BuildingsCreated int `json:"buildings_created"`
	BuildingsLost    int `json:"buildings_lost"`
	BuildingsKilled  int `json:"buildings_killed"`
	WorkersCreated   int `json:"workers_created"`
	WorkersLost      int `json:"workers_lost"`
	WorkersKilled    int `json:"workers_killed"`
	MineralsSpent    int `json:"minerals_spent"`
	MineralsLost     int `json:"minerals_lost"`
	VespeneSpent     int `json:"vespene_spent"`
	VespeneLost      int `json:"vespene_lost"`
}

// GamePlayer binds a Player to one game's performance snapshot.
type GamePlayer struct {
	ID       int64  `json:"id"`
	TeamID   int64  `json:"team_id"`
	PlayerID int64  `json:"player_id"`
	Color    string `json:"color"`
	Race     Race   `json:"race"`
	Handicap int    `json:"handicap"`
	IsHuman  bool   `json:"is_human"`
	APM      int    `json:"apm"`
	Tally
}

// Duel is the race/result view of a 1v1 game, one side per team.
type Duel struct {
	GameID int64
	MapID  int64
	Sides  [2]DuelSide
}

// DuelSide is one team's sole player in a 1v1.
type DuelSide struct {
	Race   Race
	Result Result
}

// MapGame is a game joined with its map.
type MapGame struct {
	Game
	Map Map
}

// RosterPlayer is a game player snapshot with the player's display name.
type RosterPlayer struct {
	Name string
	GamePlayer
}

// Roster is a team with its players, in insertion order.
type Roster struct {
	GameTeam
	Players []RosterPlayer
}

// Races returns the race of each player on the team.
func (r Roster) Races() []Race {
	out := make([]Race, len(r.Players))
	for i, p := range r.Players {
		out[i] = p.Race
	}
	return out
}
