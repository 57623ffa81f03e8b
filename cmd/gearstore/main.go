// Package main is the entry point for the gearstore CLI.
//
// Usage:
//
//	gearstore [flags] <command> [args]
//
// Commands:
//
//	get      - Print a stored record
//	set      - Store a record from a JSON file or stdin
//	delete   - Remove a record
//	queue    - Telemetry queue (stats, peek, trim, drain)
//	salvage  - Repair a corrupt record file
//	paths    - Show resolved storage directories
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/gearstore/cmd/gearstore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
