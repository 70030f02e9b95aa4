package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/report"
	"github.com/pable/zeratul/internal/stats"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, _ []string) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()
	svc := newStats(db)
	ctx := cmd.Context()

	cGreeting.Println("zeratul shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("zeratul")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		var err error
		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "summary":
			err = shellSummary(ctx, svc, args)
		case "maps":
			err = shellMaps(ctx, svc, args)
		case "games":
			err = shellGames(ctx, svc, args)
		case "game":
			err = shellGame(ctx, svc, args)
		case "player":
			err = shellPlayer(ctx, svc, args)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
		switch {
		case errors.Is(err, stats.ErrNotFound):
			cWarn.Fprintln(os.Stderr, "not found")
		case err != nil:
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"summary [metric...]", "dashboard over all stored games"},
		{"maps", "list maps"},
		{"maps <slug>", "matchup statistics and games for one map"},
		{"games [page]", "list games, newest first"},
		{"game <id>", "show a game's per-player statistics"},
		{"player <name> [...]", "career records for one or more players"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-24s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellSummary(ctx context.Context, svc *stats.Service, args []string) error {
	metrics, err := model.ParseMetrics(args)
	if err != nil {
		return err
	}
	d, err := svc.Dashboard(ctx, metrics...)
	if err != nil {
		return err
	}
	report.PrintDashboard(os.Stdout, d)
	return nil
}

func shellMaps(ctx context.Context, svc *stats.Service, args []string) error {
	if len(args) > 0 {
		d, err := svc.MapDetail(ctx, args[0])
		if err != nil {
			return err
		}
		report.PrintMapDetail(os.Stdout, d)
		return nil
	}
	maps, err := svc.Maps(ctx)
	if err != nil {
		return err
	}
	if len(maps) == 0 {
		cMuted.Println("No maps stored yet.")
		return nil
	}
	report.PrintMapTable(os.Stdout, maps)
	return nil
}

func shellGames(ctx context.Context, svc *stats.Service, args []string) error {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid page %q", args[0])
		}
		page = n
	}
	p, err := svc.Games(ctx, page, cfg.Server.PageSize)
	if err != nil {
		return err
	}
	if p.Total == 0 {
		cMuted.Println("No games stored yet.")
		return nil
	}
	report.PrintGamePage(os.Stdout, p)
	return nil
}

func shellGame(ctx context.Context, svc *stats.Service, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: game <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid game id %q", args[0])
	}
	d, err := svc.GameDetail(ctx, id)
	if err != nil {
		return err
	}
	report.PrintGameDetail(os.Stdout, d)
	return nil
}

func shellPlayer(ctx context.Context, svc *stats.Service, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: player <name> [<name>...]")
	}
	var recs []model.PlayerRecord
	for _, name := range args {
		rec, err := svc.PlayerRecord(ctx, name)
		if errors.Is(err, stats.ErrNotFound) {
			cWarn.Fprintf(os.Stderr, "no data for player %q\n", name)
			continue
		}
		if err != nil {
			return err
		}
		recs = append(recs, *rec)
	}
	if len(recs) > 0 {
		report.PrintPlayerRecords(os.Stdout, recs)
	}
	return nil
}
