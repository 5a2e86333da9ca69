package main

import (
	"os"

	"github.com/wonny/gainers/cmd/gainers/commands"
)

// main is the entry point for the gainers CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/gainers [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
