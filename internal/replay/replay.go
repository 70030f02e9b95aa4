// Package replay finds StarCraft II replay files on disk and decodes them into
// an in-memory object graph (map, teams, players, events and units).
package replay

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Decoder turns a replay file into a Replay.
type Decoder interface {
	Decode(path string) (*Replay, error)
}

// Replay is the decoded object graph of one replay file.
type Replay struct {
	Path      string
	Map       MapInfo
	StartTime time.Time
	Events    []Event // all game events, in order
	Release   string  // e.g. "3.1.1.39948"
	RealType  string  // "1v1", "2v2", "FFA", ...
	Region    string
	Teams     []*Team
}

// MapInfo is the map metadata and raw minimap image bytes.
type MapInfo struct {
	Name        string
	Author      string
	Website     string
	Description string
	Minimap     []byte
}

// Event is a single game event, reduced to what the extractor needs.
type Event struct {
	Second int // game seconds (loop / 16)
	Name   string
}

// Team is a side of the game in replay order.
type Team struct {
	Number  int
	Result  string // "Win", "Loss", "Tie" or "Unknown"
	Players []*Player
}

// Player is a participant and everything the replay recorded about them.
type Player struct {
	Name          string
	Region        string
	URL           string
	HighestLeague int
	Color         string
	Race          string
	Handicap      int
	IsHuman       bool

	Events []Event
	Units  []*Unit // units this player owned
	Kills  []*Unit // units this player killed
}

// Unit is a single unit lifecycle record. Loops are game loops; zero means
// "never" for DiedAt and "pre-placed or unfinished" for FinishedAt.
type Unit struct {
	Name       string
	Minerals   int
	Vespene    int
	IsArmy     bool
	IsWorker   bool
	IsBuilding bool
	StartedAt  int64
	FinishedAt int64
	DiedAt     int64
	Owner      *Player
	Killer     *Player
}

// Finished reports whether the unit reached its finished state after game start.
func (u *Unit) Finished() bool { return u.FinishedAt > 0 }

// Destroyed reports whether the unit died.
func (u *Unit) Destroyed() bool { return u.DiedAt > 0 }

// Players returns every player across all teams in team order.
func (r *Replay) Players() []*Player {
	var out []*Player
	for _, t := range r.Teams {
		out = append(out, t.Players...)
	}
	return out
}

// Computers returns the non-human players.
func (r *Replay) Computers() []*Player {
	var out []*Player
	for _, p := range r.Players() {
		if !p.IsHuman {
			out = append(out, p)
		}
	}
	return out
}

// LengthSeconds is the timestamp of the last game event, which is the real
// game length (the recorded end time includes post-game time).
func (r *Replay) LengthSeconds() int {
	last := 0
	for _, e := range r.Events {
		if e.Second > last {
			last = e.Second
		}
	}
	return last
}

// RealType derives the engine match type from team sizes: team sizes sorted
// ascending and joined with "v", or "FFA" for three or more single-player teams.
func RealType(teams []*Team) string {
	sizes := make([]int, 0, len(teams))
	total := 0
	for _, t := range teams {
		sizes = append(sizes, len(t.Players))
		total += len(t.Players)
	}
	if len(sizes) > 2 && total == len(sizes) {
		return "FFA"
	}
	sort.Ints(sizes)
	parts := make([]string, len(sizes))
	for i, n := range sizes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "v")
}
