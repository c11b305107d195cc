// Package logging provides structured logging for the efidbg utilities.
//
// This package wraps a zap logger with a couple of convenience functions for
// the events the utilities care about: gdb commands sent and answered, and
// modules skipped during symbol resolution.
//
// # Log Levels
//
//   - Debug: every gdb command and its raw console output
//   - Info: pipeline milestones (log scanned, modules resolved, symbols loaded)
//   - Warn: recoverable per-module problems (file missing, bad architecture)
//   - Error: fatal problems (log file unreadable, gdb failed to start)
//
// # Configuration
//
// Logging is silent by default so that it does not interleave with the
// console diagnostics the commands print. Enable it with the environment:
//
//	EFIDBG_LOG_LEVEL=debug efidbg load-symbols
//
// or explicitly:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
package logging
