package main

import (
	"os"

	"github.com/wonny/jreit-finder/cmd/jreit/commands"
)

// main is the entry point for the J-REIT Finder CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/jreit [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
