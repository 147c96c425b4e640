// Package main provides the guardian clinical consult CLI.
//
// Usage:
//
//	guardian [flags] <command> [args]
//
// Commands:
//
//	consult  - Start, drive, and finalize consult sessions
//	live     - Full-duplex live session with audio capture and alerts
//	script   - Replay a scripted consult transcript against the backend
//	patient  - Look up patient records
//	demo     - Demo helpers (simulated dangerous prescription)
//	health   - Backend health check
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.guardian/
//	Use 'guardian config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/synapse-health/guardian/cmd/guardian/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
