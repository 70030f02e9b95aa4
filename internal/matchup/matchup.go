// Package matchup classifies 1v1 games by race pairing and counts matchups,
// mirrors and wins over a set of duels.
package matchup

import "github.com/pable/zeratul/internal/model"

// Unclassified is the label of a game that is not a recognised 1v1 pairing.
const Unclassified = ""

// DefaultWinRate is reported when a pairing has no games.
const DefaultWinRate = 50.0

// Pair is an unordered race pairing, stored in model.Races order.
type Pair struct {
	A, B model.Race
}

// Pairs lists the six 1v1 pairings in display order.
var Pairs = []Pair{
	{model.RaceTerran, model.RaceProtoss},
	{model.RaceZerg, model.RaceProtoss},
	{model.RaceZerg, model.RaceTerran},
	{model.RaceProtoss, model.RaceProtoss},
	{model.RaceTerran, model.RaceTerran},
	{model.RaceZerg, model.RaceZerg},
}

// Label is the two-letter matchup name, e.g. "ZvT".
func (p Pair) Label() string {
	return p.A.Initial() + "v" + p.B.Initial()
}

// Mirror reports whether both sides play the same race.
func (p Pair) Mirror() bool { return p.A == p.B }

func raceOrder(r model.Race) int {
	for i, x := range model.Races {
		if x == r {
			return i
		}
	}
	return -1
}

// NewPair orders two races canonically. ok is false if either race is not
// one of the three playable races.
func NewPair(a, b model.Race) (Pair, bool) {
	ia, ib := raceOrder(a), raceOrder(b)
	if ia < 0 || ib < 0 {
		return Pair{}, false
	}
	if ia > ib {
		a, b = b, a
	}
	return Pair{A: a, B: b}, true
}

// Is1v1 reports whether the game has exactly two teams of one player each.
func Is1v1(teamSizes []int) bool {
	return len(teamSizes) == 2 && teamSizes[0] == 1 && teamSizes[1] == 1
}

// Type returns the matchup label for two races, or Unclassified. The result
// does not depend on argument order.
func Type(a, b model.Race) string {
	p, ok := NewPair(a, b)
	if !ok {
		return Unclassified
	}
	return p.Label()
}

// GameType labels a game for listings: the 1v1 matchup when the lineup is a
// classified 1v1, the raw engine type otherwise. teams holds each team's races.
func GameType(teams [][]model.Race, raw string) string {
	sizes := make([]int, len(teams))
	for i, t := range teams {
		sizes[i] = len(t)
	}
	if !Is1v1(sizes) {
		return raw
	}
	if label := Type(teams[0][0], teams[1][0]); label != Unclassified {
		return label
	}
	return raw
}

func (p Pair) matches(d model.Duel) bool {
	x, y := d.Sides[0].Race, d.Sides[1].Race
	return (x == p.A && y == p.B) || (x == p.B && y == p.A)
}

// CountMatchups counts duels whose race pair is exactly {a, b}.
func CountMatchups(duels []model.Duel, a, b model.Race) int {
	p := Pair{A: a, B: b}
	n := 0
	for _, d := range duels {
		if p.matches(d) {
			n++
		}
	}
	return n
}

// CountMirror counts duels in which neither side plays a race other than r.
func CountMirror(duels []model.Duel, r model.Race) int {
	n := 0
	for _, d := range duels {
		if d.Sides[0].Race == r && d.Sides[1].Race == r {
			n++
		}
	}
	return n
}

// CountWins counts duels in which race a won against race b.
func CountWins(duels []model.Duel, a, b model.Race) int {
	n := 0
	for _, d := range duels {
		for i := 0; i < 2; i++ {
			w, l := d.Sides[i], d.Sides[1-i]
			if w.Race == a && w.Result == model.ResultWin && l.Race == b && l.Result == model.ResultLoss {
				n++
				break
			}
		}
	}
	return n
}

// WinRate is wins as a percentage of total, or DefaultWinRate when total is zero.
func WinRate(wins, total int) float64 {
	if total == 0 {
		return DefaultWinRate
	}
	return float64(wins) / float64(total) * 100
}

// Stats computes the matchup table for a set of duels.
func Stats(duels []model.Duel) []model.MatchupStat {
	out := make([]model.MatchupStat, 0, len(Pairs))
	for _, p := range Pairs {
		s := model.MatchupStat{Label: p.Label(), RaceA: p.A, RaceB: p.B, Mirror: p.Mirror()}
		if p.Mirror() {
			s.Count = CountMirror(duels, p.A)
		} else {
			s.Count = CountMatchups(duels, p.A, p.B)
			s.WinsA = CountWins(duels, p.A, p.B)
			s.WinsB = CountWins(duels, p.B, p.A)
			s.PercentA = WinRate(s.WinsA, s.Count)
			s.PercentB = WinRate(s.WinsB, s.Count)
		}
		out = append(out, s)
	}
	return out
}

// Winner returns the index of the single winning team. ok is false when no
// team or more than one team won.
func Winner(results []model.Result) (index int, ok bool) {
	index = -1
	for i, r := range results {
		if r != model.ResultWin {
			continue
		}
		if index >= 0 {
			return -1, false
		}
		index = i
	}
	return index, index >= 0
}
