package main

import (
	"os"

	"github.com/wonny/magicformula/cmd/magic/commands"
)

// main is the entry point for the magic CLI
// ⭐ single CLI entry point: go run ./cmd/magic [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
