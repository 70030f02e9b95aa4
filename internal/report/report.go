package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/zeratul/internal/ingest"
	"github.com/pable/zeratul/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// PrintImportSummary prints created-row counts and the per-status totals of
// an import batch, followed by one line per skipped or failed replay.
func PrintImportSummary(w io.Writer, s ingest.Summary) {
	table := newTable(w)
	table.Header("MAPS", "PLAYERS", "GAMES", "GAME_TEAMS", "GAME_PLAYERS")
	table.Append(
		strconv.Itoa(s.Counts.Maps),
		strconv.Itoa(s.Counts.Players),
		strconv.Itoa(s.Counts.Games),
		strconv.Itoa(s.Counts.GameTeams),
		strconv.Itoa(s.Counts.GamePlayers),
	)
	table.Render()

	fmt.Fprintf(w, "\nImported: %d  |  Skipped: %d  |  Failed: %d\n", s.Imported, s.Skipped, s.Failed)
	for _, r := range s.Results {
		if r.Status == ingest.StatusImported {
			continue
		}
		fmt.Fprintf(w, "  %-8s %s: %s\n", r.Status, r.Path, r.Reason)
	}
}

// PrintMapTable prints the map listing.
func PrintMapTable(w io.Writer, maps []model.MapListing) {
	table := newTable(w)
	table.Header("SLUG", "NAME", "PLAYED", "MINIMAP")
	for _, m := range maps {
		minimap := "—"
		if m.MinimapURL != "" {
			minimap = m.MinimapURL
		}
		table.Append(m.Slug, m.Name, strconv.Itoa(m.PlayCount), minimap)
	}
	table.Render()
}

// PrintMatchupTable prints 1v1 matchup counts and win percentages. Mirror
// matchups show only their count.
func PrintMatchupTable(w io.Writer, stats []model.MatchupStat) {
	table := newTable(w)
	table.Header("MATCHUP", "GAMES", "WINS_A", "WINS_B", "WIN%_A", "WIN%_B")
	for _, s := range stats {
		if s.Mirror {
			table.Append(s.Label, strconv.Itoa(s.Count), "—", "—", "—", "—")
			continue
		}
		table.Append(
			s.Label,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.WinsA),
			strconv.Itoa(s.WinsB),
			pct(s.PercentA),
			pct(s.PercentB),
		)
	}
	table.Render()
}

// PrintMapDetail prints a map header, its matchup table and its games.
func PrintMapDetail(w io.Writer, d *model.MapDetail) {
	fmt.Fprintf(w, "\nMap: %s  |  Played: %d  |  Avg length: %s  |  Total: %s\n",
		d.Name, d.PlayCount, d.AvgGameLength, d.TotalPlayed)
	if d.Author != "" {
		fmt.Fprintf(w, "Author: %s\n", d.Author)
	}
	if d.Description != "" {
		fmt.Fprintf(w, "%s\n", d.Description)
	}
	fmt.Fprintln(w)
	PrintMatchupTable(w, d.Stats)
	fmt.Fprintln(w)
	PrintGameTable(w, d.Games)
}

func teamLine(t model.TeamSummary) string {
	names := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Race))
	}
	s := strings.Join(names, ", ")
	if t.IsWinningTeam {
		s += " *"
	}
	return s
}

// PrintGameTable prints game summaries. Winning teams are marked with "*".
func PrintGameTable(w io.Writer, games []model.GameSummary) {
	table := newTable(w)
	table.Header("ID", "DATE", "MAP", "TYPE", "EXP", "LENGTH", "REGION", "TEAMS")
	for _, g := range games {
		teams := make([]string, 0, len(g.Teams))
		for _, t := range g.Teams {
			teams = append(teams, teamLine(t))
		}
		table.Append(
			strconv.FormatInt(g.ID, 10),
			g.StartedAt.Format("2006-01-02 15:04"),
			g.MapName,
			g.Type,
			g.ExpansionAbbr,
			g.Length.String(),
			g.Region,
			strings.Join(teams, " vs "),
		)
	}
	table.Render()
}

// PrintGamePage prints one page of the game listing with a page footer.
func PrintGamePage(w io.Writer, p *model.GamePage) {
	PrintGameTable(w, p.Games)
	fmt.Fprintf(w, "Page %d of %d  (%d games)\n", p.Page, p.Pages, p.Total)
}

// PrintGameDetail prints a game header, the full per-player table and the
// per-metric leaders.
func PrintGameDetail(w io.Writer, d *model.GameDetail) {
	fmt.Fprintf(w, "\nGame %d  |  Map: %s  |  Date: %s  |  Type: %s  |  Length: %s  |  Version: %s (%s)\n",
		d.ID, d.MapName, d.StartedAt.Format("2006-01-02 15:04"), d.Type, d.Length, d.Version, d.Expansion)
	if d.Winner != "" {
		fmt.Fprintf(w, "Winner: %s\n", d.Winner)
	}
	fmt.Fprintln(w)

	table := newTable(w)
	table.Header(" ", "TEAM", "NAME", "RACE", "APM",
		"ARMY_C", "ARMY_K", "ARMY_L", "BLD_C", "BLD_K", "BLD_L", "WRK_C", "WRK_K", "WRK_L",
		"MIN_S", "MIN_L", "GAS_S", "GAS_L")
	for _, t := range d.Teams {
		marker := " "
		if t.IsWinningTeam {
			marker = "*"
		}
		for _, p := range t.Players {
			table.Append(
				marker,
				strconv.Itoa(t.Number),
				p.Name,
				string(p.Race),
				strconv.Itoa(p.APM),
				strconv.Itoa(p.Army.Created),
				strconv.Itoa(p.Army.Killed),
				strconv.Itoa(p.Army.Lost),
				strconv.Itoa(p.Buildings.Created),
				strconv.Itoa(p.Buildings.Killed),
				strconv.Itoa(p.Buildings.Lost),
				strconv.Itoa(p.Workers.Created),
				strconv.Itoa(p.Workers.Killed),
				strconv.Itoa(p.Workers.Lost),
				strconv.Itoa(p.Minerals.Spent),
				strconv.Itoa(p.Minerals.Lost),
				strconv.Itoa(p.Vespene.Spent),
				strconv.Itoa(p.Vespene.Lost),
			)
		}
	}
	table.Render()

	if len(d.Leaders) == 0 {
		return
	}
	fmt.Fprintln(w)
	leaders := newTable(w)
	leaders.Header("METRIC", "LEADER", "VALUE")
	for _, l := range d.Leaders {
		leaders.Append(l.Metric, l.Player, strconv.Itoa(l.Value))
	}
	leaders.Render()
}

// PrintDashboard prints the overall counts, race records, metric table and
// matchup table.
func PrintDashboard(w io.Writer, d *model.Dashboard) {
	fmt.Fprintf(w, "\nPlayers: %d  |  Maps: %d  |  Games: %d  |  Avg length: %s  |  Total played: %s\n",
		d.PlayerCount, d.MapCount, d.GameCount, d.AvgGameLength, d.TotalPlayed)
	fmt.Fprintf(w, "Avg APM: %.1f  |  Avg best APM: %.1f\n\n", d.AvgAPM, d.AvgBestAPM)

	races := newTable(w)
	races.Header("RACE", "GAMES", "W", "L", "WIN%")
	for _, r := range d.Races {
		races.Append(string(r.Race), strconv.Itoa(r.Games), strconv.Itoa(r.Wins), strconv.Itoa(r.Losses), pct(r.WinRate))
	}
	races.Render()
	fmt.Fprintln(w)

	PrintMetricTable(w, d.Metrics)
	fmt.Fprintln(w)
	PrintMatchupTable(w, d.Matchups)
}

// PrintMetricTable prints metric averages overall and per race, split by
// result as "avg (win/loss)".
func PrintMetricTable(w io.Writer, rows []model.MetricRow) {
	if len(rows) == 0 {
		return
	}
	header := []any{"METRIC", "TOTAL", "AVG"}
	for _, rm := range rows[0].ByRace {
		header = append(header, strings.ToUpper(string(rm.Race)))
	}
	table := newTable(w)
	table.Header(header...)
	for _, row := range rows {
		cells := []any{row.Metric, strconv.FormatInt(row.All.Total, 10), fmt.Sprintf("%.1f", row.All.Average)}
		for _, rm := range row.ByRace {
			cells = append(cells, fmt.Sprintf("%.1f (%.1f/%.1f)", rm.All.Average, rm.Win.Average, rm.Loss.Average))
		}
		table.Append(cells...)
	}
	table.Render()
}

// PrintPlayerRecords prints career totals, one row per player.
func PrintPlayerRecords(w io.Writer, recs []model.PlayerRecord) {
	table := newTable(w)
	table.Header("NAME", "GAMES", "W", "L", "WIN%", "MAX_APM")
	for _, r := range recs {
		winPct := "—"
		if r.Games > 0 {
			winPct = pct(float64(r.Wins) / float64(r.Games) * 100)
		}
		table.Append(r.Name, strconv.Itoa(r.Games), strconv.Itoa(r.Wins), strconv.Itoa(r.Losses), winPct, strconv.Itoa(r.MaxAPM))
	}
	table.Render()
}
