// Package logging builds the structured loggers used across grizzly.
//
// It wraps log/slog so every component logs the same way. Operator-facing
// notices (the listening address, port switches, fatal errors) are printed
// directly by the components that own them; this package covers the
// diagnostic log stream only.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//
//	logger.Info("engine bound", "port", 8443)
//
// Components accept a *slog.Logger through a WithLogger option and fall back
// to Nop when none is given.
package logging
