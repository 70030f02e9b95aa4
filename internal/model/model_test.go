package model

import "testing"

func TestExpansionName(t *testing.T) {
	cases := map[string]string{
		"1.5.4.24540": "Wings of Liberty",
		"2.1.9.34644": "Heart of the Swarm",
		"3.1.1.39948": "Legacy of the Void",
		"4.0.0.59587": "",
		"":            "",
	}
	for version, want := range cases {
		if got := ExpansionName(version); got != want {
			t.Errorf("ExpansionName(%q) = %q, want %q", version, got, want)
		}
	}
	if got := ExpansionAbbreviation("2.0.4"); got != "HotS" {
		t.Errorf("ExpansionAbbreviation: want HotS, got %q", got)
	}
}

func TestMinutesSeconds(t *testing.T) {
	got := MinutesSeconds(725)
	if got.Minutes != 12 || got.Seconds != 5 {
		t.Errorf("MinutesSeconds(725) = %+v", got)
	}
	if got.String() != "12:05" {
		t.Errorf("String: want 12:05, got %s", got.String())
	}
	if z := MinutesSeconds(-3); z.Minutes != 0 || z.Seconds != 0 {
		t.Errorf("negative input should clamp, got %+v", z)
	}
}

func TestDaysHoursMinutesSeconds(t *testing.T) {
	// 1 day, 2 hours, 3 minutes, 4 seconds.
	total := 86400 + 2*3600 + 3*60 + 4
	got := DaysHoursMinutesSeconds(total)
	want := DHMS{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}
	if got != want {
		t.Errorf("DaysHoursMinutesSeconds(%d) = %+v, want %+v", total, got, want)
	}
}

func TestMetricKeysRoundTrip(t *testing.T) {
	for _, m := range Metrics {
		if !m.Valid() {
			t.Errorf("metric %d should be valid", m)
		}
		got, ok := ParseMetric(m.Key())
		if !ok || got != m {
			t.Errorf("ParseMetric(%q) = %v, %v", m.Key(), got, ok)
		}
	}
	if _, ok := ParseMetric("minerals_spent; DROP TABLE games"); ok {
		t.Error("unknown metric key must not parse")
	}
	if Metric(99).Valid() {
		t.Error("out-of-range metric must be invalid")
	}
}

func TestParseMetrics(t *testing.T) {
	got, err := ParseMetrics([]string{"apm", "workers_lost"})
	if err != nil || len(got) != 2 || got[0] != MetricAPM || got[1] != MetricWorkersLost {
		t.Errorf("ParseMetrics: got %v, %v", got, err)
	}
	if _, err := ParseMetrics([]string{"apm", "mana"}); err == nil {
		t.Error("expected error for unknown key")
	}
	if got, err := ParseMetrics(nil); err != nil || len(got) != 0 {
		t.Errorf("empty input: got %v, %v", got, err)
	}
}

func TestMetricValue(t *testing.T) {
	gp := GamePlayer{APM: 120, Tally: Tally{MineralsSpent: 5000, WorkersLost: 7}}
	if v := MetricMineralsSpent.Value(gp); v != 5000 {
		t.Errorf("minerals_spent: want 5000, got %d", v)
	}
	if v := MetricWorkersLost.Value(gp); v != 7 {
		t.Errorf("workers_lost: want 7, got %d", v)
	}
	if v := MetricAPM.Value(gp); v != 120 {
		t.Errorf("apm: want 120, got %d", v)
	}
}

func TestParseRace(t *testing.T) {
	if ParseRace("zerg") != RaceZerg || ParseRace("Protoss") != RaceProtoss || ParseRace("Terran") != RaceTerran {
		t.Error("ParseRace did not normalise known races")
	}
	if ParseRace("Random") != Race("Random") {
		t.Error("unknown race strings should pass through")
	}
}
