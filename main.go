// Package main is the entry point for the zeratul CLI, which imports
// StarCraft II replays and reports map, matchup and player statistics.
package main

import "github.com/pable/zeratul/cmd"

func main() {
	cmd.Execute()
}
