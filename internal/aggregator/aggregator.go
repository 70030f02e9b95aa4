// Package aggregator derives per-player statistics (APM and unit/resource
// tallies) from a decoded replay.
package aggregator

import (
	"errors"
	"fmt"

	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/replay"
)

// ErrNoEvents is returned when APM is undefined because the player has no
// events, or their last event is at second zero.
var ErrNoEvents = errors.New("player has no timed events")

// PlayerStats is everything the extractor computes for one player.
type PlayerStats struct {
	APM   int
	Tally model.Tally
}

// Aggregate computes PlayerStats for every player in the replay. Any player
// whose APM is undefined fails the whole replay.
func Aggregate(r *replay.Replay) (map[*replay.Player]PlayerStats, error) {
	if r == nil {
		return nil, fmt.Errorf("nil Replay")
	}
	out := make(map[*replay.Player]PlayerStats)
	for _, p := range r.Players() {
		apm, err := APM(p)
		if err != nil {
			return nil, fmt.Errorf("apm for %s: %w", p.Name, err)
		}
		out[p] = PlayerStats{APM: apm, Tally: Tally(p)}
	}
	return out, nil
}

// APM is the player's event count divided by the minute of their last event,
// truncated.
func APM(p *replay.Player) (int, error) {
	n := len(p.Events)
	if n == 0 {
		return 0, ErrNoEvents
	}
	last := 0
	for _, e := range p.Events {
		if e.Second > last {
			last = e.Second
		}
	}
	if last == 0 {
		return 0, ErrNoEvents
	}
	return int(float64(n) / (float64(last) / 60.0)), nil
}

// counters points at the created/lost/killed fields of one unit class.
type counters struct {
	created, lost, killed *int
}

func classCounters(t *model.Tally, u *replay.Unit) []counters {
	var out []counters
	if u.IsArmy {
		out = append(out, counters{&t.ArmyCreated, &t.ArmyLost, &t.ArmyKilled})
	}
	if u.IsWorker {
		out = append(out, counters{&t.WorkersCreated, &t.WorkersLost, &t.WorkersKilled})
	}
	if u.IsBuilding {
		out = append(out, counters{&t.BuildingsCreated, &t.BuildingsLost, &t.BuildingsKilled})
	}
	return out
}

// Tally accumulates the player's unit and resource counters. A unit in more
// than one class is counted once per class, cost included.
func Tally(p *replay.Player) model.Tally {
	var t model.Tally

	for _, u := range p.Units {
		for _, c := range classCounters(&t, u) {
			*c.created++
			if u.Finished() {
				t.MineralsSpent += u.Minerals
				t.VespeneSpent += u.Vespene
			}
			if u.Destroyed() {
				*c.lost++
				t.MineralsLost += u.Minerals
				t.VespeneLost += u.Vespene
			}
		}
	}

	// Killed counters follow the class of the victim.
	for _, u := range p.Kills {
		for _, c := range classCounters(&t, u) {
			*c.killed++
		}
	}
	return t
}
