package ingest

// Status is the terminal state of one replay's import.
type Status int

const (
	StatusImported Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusImported:
		return "imported"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Counts tallies rows created, per entity kind.
type Counts struct {
	Maps        int `json:"maps"`
	Players     int `json:"players"`
	Games       int `json:"games"`
	GameTeams   int `json:"game_teams"`
	GamePlayers int `json:"game_players"`
}

func (c *Counts) add(o Counts) {
	c.Maps += o.Maps
	c.Players += o.Players
	c.Games += o.Games
	c.GameTeams += o.GameTeams
	c.GamePlayers += o.GamePlayers
}

// Result is the outcome of importing one replay. Counts is only set for
// imported replays, after their transaction committed.
type Result struct {
	Path   string
	Status Status
	Reason string
	Err    error
	GameID int64
	Counts Counts
}

func (r Result) fail(err error) Result {
	r.Status = StatusFailed
	r.Err = err
	r.Reason = err.Error()
	return r
}

// Summary aggregates the results of a batch.
type Summary struct {
	Counts   Counts
	Imported int
	Skipped  int
	Failed   int
	Results  []Result
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusImported:
		s.Imported++
		s.Counts.add(r.Counts)
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}
