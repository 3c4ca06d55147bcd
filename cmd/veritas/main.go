package main

import (
	"os"

	"github.com/wonny/veritas/backend/cmd/veritas/commands"
)

// main is the entry point for the Veritas CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/veritas [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
