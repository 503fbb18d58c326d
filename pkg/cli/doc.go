// Package cli implements the grizzly command line.
//
// A single cobra command parses the flags, validates them with
// config.Validate and runs one engine under an orchestrator.Orchestrator.
// Exit status is derived from the orchestrator's Result: 0 after help or a
// clean shutdown, 1 for configuration errors and fatal engine failures.
package cli
