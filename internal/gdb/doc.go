// Package gdb drives GNU gdb for the UEFI symbol loader.
//
// The symbol loader needs a small, scriptable subset of gdb: set or clear the
// introspection target, scrape "info files", toggle pagination, register
// symbol files at addresses and attach to QEMU's gdb stub. This package
// provides that subset on top of a long-lived gdb process.
//
// # Architecture
//
//	┌─────────────────┐
//	│ Session         │  efi.Session issues console commands
//	│ (efi package)   │
//	└────────┬────────┘
//	         │ Debugger
//	         v
//	┌─────────────────┐
//	│ Recorder        │  Keeps state-changing commands for replay
//	└────────┬────────┘
//	         │ Debugger
//	         v
//	┌─────────────────┐
//	│ Process         │  gdb --interpreter=mi2, one command in flight
//	└────────┬────────┘
//	         │
//	         v
//	┌─────────────────┐
//	│ Parser          │  "info files", "show pagination", versions
//	└─────────────────┘
//
// # Transport
//
// Console commands are wrapped as
//
//	12-interpreter-exec console "info files"
//
// and the console stream records (~"...") emitted before the matching
// "12^done" are concatenated into the command output. A "12^error" record
// becomes a *CommandError.
//
// # Replay
//
// The Recorder renders the commands that changed the session (symbol-file,
// add-symbol-file, set, target) into a script:
//
//	rec := gdb.NewRecorder(proc, logger)
//	// ... run the session against rec ...
//	err := rec.WriteScript(afero.NewOsFs(), gdb.ScriptInfo{ScriptPath: "efi.gdb"})
//
// which can be sourced into another gdb or handed to a Launcher that opens an
// interactive gdb with the symbols already loaded.
package gdb
