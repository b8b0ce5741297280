package main

import (
	"os"

	"github.com/wonny/ainavigator/backend/cmd/navigator/commands"
)

// main is the entry point for the AI Navigator CLI
// ⭐ single CLI entry point: go run ./cmd/navigator [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
