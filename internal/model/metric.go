package model

import "fmt"

// Metric is a closed set of per-player counters that can be totalled or averaged.
type Metric int

const (
	MetricArmyCreated Metric = iota
	MetricArmyLost
	MetricArmyKilled
	MetricBuildingsCreated
	MetricBuildingsLost
	MetricBuildingsKilled
	MetricWorkersCreated
	MetricWorkersLost
	MetricWorkersKilled
	MetricMineralsSpent
	MetricMineralsLost
	MetricVespeneSpent
	MetricVespeneLost
	MetricAPM
)

// Metrics lists every supported metric in display order.
var Metrics = []Metric{
	MetricArmyCreated, MetricArmyLost, MetricArmyKilled,
	MetricBuildingsCreated, MetricBuildingsLost, MetricBuildingsKilled,
	MetricWorkersCreated, MetricWorkersLost, MetricWorkersKilled,
	MetricMineralsSpent, MetricMineralsLost,
	MetricVespeneSpent, MetricVespeneLost,
	MetricAPM,
}

var metricKeys = map[Metric]string{
	MetricArmyCreated:      "army_created",
	MetricArmyLost:         "army_lost",
	MetricArmyKilled:       "army_killed",
	MetricBuildingsCreated: "buildings_created",
	MetricBuildingsLost:    "buildings_lost",
	MetricBuildingsKilled:  "buildings_killed",
	MetricWorkersCreated:   "workers_created",
	MetricWorkersLost:      "workers_lost",
	MetricWorkersKilled:    "workers_killed",
	MetricMineralsSpent:    "minerals_spent",
	MetricMineralsLost:     "minerals_lost",
	MetricVespeneSpent:     "vespene_spent",
	MetricVespeneLost:      "vespene_lost",
	MetricAPM:              "apm",
}

// Key returns the snake_case name of the metric, which is also its column name.
func (m Metric) Key() string {
	return metricKeys[m]
}

func (m Metric) String() string { return m.Key() }

// Valid reports whether m is one of the enumerated metrics.
func (m Metric) Valid() bool {
	_, ok := metricKeys[m]
	return ok
}

// ParseMetric looks a metric up by key.
func ParseMetric(key string) (Metric, bool) {
	for m, k := range metricKeys {
		if k == key {
			return m, true
		}
	}
	return 0, false
}

// ParseMetrics parses metric keys in order, failing on the first unknown key.
func ParseMetrics(keys []string) ([]Metric, error) {
	out := make([]Metric, 0, len(keys))
	for _, k := range keys {
		m, ok := ParseMetric(k)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", k)
		}
		out = append(out, m)
	}
	return out, nil
}

// Value reads the metric from a game player snapshot.
func (m Metric) Value(gp GamePlayer) int {
	switch m {
	case MetricArmyCreated:
		return gp.ArmyCreated
	case MetricArmyLost:
		return gp.ArmyLost
	case MetricArmyKilled:
		return gp.ArmyKilled
	case MetricBuildingsCreated:
		return gp.BuildingsCreated
	case MetricBuildingsLost:
		return gp.BuildingsLost
	case MetricBuildingsKilled:
		return gp.BuildingsKilled
	case MetricWorkersCreated:
		return gp.WorkersCreated
	case MetricWorkersLost:
		return gp.WorkersLost
	case MetricWorkersKilled:
		return gp.WorkersKilled
	case MetricMineralsSpent:
		return gp.MineralsSpent
	case MetricMineralsLost:
		return gp.MineralsLost
	case MetricVespeneSpent:
		return gp.VespeneSpent
	case MetricVespeneLost:
		return gp.VespeneLost
	case MetricAPM:
		return gp.APM
	}
	return 0
}

// MetricFilter narrows a metric aggregate to one race and/or one team result.
// Zero values mean "any".
type MetricFilter struct {
	Race   Race
	Result Result // only ResultWin or ResultLoss are meaningful
}
