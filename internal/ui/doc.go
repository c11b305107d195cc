// Package ui provides the terminal output of the efidbg CLI.
//
// Lipgloss renders the framing around each command: a header box naming the
// operation and its inputs, and a result box (success, warning or failure)
// with ordered details and troubleshooting tips. Tablewriter renders the
// per-driver summaries. The interactive module picker used by
// "load-symbols --pick" is a small Bubble Tea program.
//
// The plain diagnostic lines printed while symbols are being loaded are not
// styled; they pass through Printer.Println as-is.
//
// # Logging Integration
//
// zap logging is silent unless EFIDBG_LOG_LEVEL (or --log-level) is set, so
// the curated output here is all the user sees by default.
package ui
