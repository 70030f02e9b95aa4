package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the database",
	Long: `Run an arbitrary SQL query against the database and print results as a table.

Schema overview:
  maps(id, name, slug, author, website, description, minimap)
  players(id, name, region, url, highest_league)
  games(id, started_at, length_seconds, version, type, region, map_id)
  game_teams(id, game_id, team_number, result)
  game_players(id, team_id, player_id, color, race, handicap, is_human, apm,
    army_created, army_lost, army_killed, buildings_created, buildings_lost,
    buildings_killed, workers_created, workers_lost, workers_killed,
    minerals_spent, minerals_lost, vespene_spent, vespene_lost)

Note: started_at is unix seconds. Use datetime(started_at, 'unixepoch') to read it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}

