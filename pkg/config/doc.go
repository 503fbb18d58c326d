// Package config turns grizzly's command-line flags into a validated
// Configuration.
//
// Validation happens once, before any network activity. A failing rule
// yields a *ConfigurationError naming the offending flag; the CLI prints
// its message and exits with status 1. A help request short-circuits all
// other rules with ErrHelpRequested.
package config
