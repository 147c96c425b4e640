// Package cli provides common utilities for the guardian command-line
// tool.
//
// This package includes:
//   - Configuration management (server contexts)
//   - Output formatting (JSON, YAML, raw)
//   - Request file loading (YAML/JSON)
//   - Terminal UI building blocks for the live session view
//
// Configuration is stored in ~/.guardian/, supporting multiple named
// contexts similar to kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//	ctx, err := cfg.GetCurrentContext()
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
