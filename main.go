// Package main is the entry point for the footstats CLI tool, which loads a
// player-per-game football dataset and answers questions about players,
// teams and games.
package main

import "github.com/pable/footstats/cmd"

func main() {
	cmd.Execute()
}
