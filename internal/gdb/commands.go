package gdb

import (
	"fmt"
	"strings"
)

// Console commands understood by gdb. Only the commands the symbol loader
// needs are modelled here.
const (
	CmdInfoFiles      = "info files"
	CmdShowPagination = "show pagination"
	CmdSymbolFile     = "symbol-file"
	CmdShowVersion    = "show version"
	CmdTargetRemote   = "target remote"
)

// File sets the introspection target. An empty path clears it.
func File(path string) string {
	if path == "" {
		return "file"
	}
	return "file " + path
}

// AddSymbolFile registers the symbols of path with .text at text and .data at
// data. Addresses are printed as lowercase hex without padding.
func AddSymbolFile(path string, text, data uint64) string {
	return fmt.Sprintf("add-symbol-file %s %#x -s .data %#x", path, text, data)
}

// SetPagination turns gdb pagination on or off.
func SetPagination(on bool) string {
	if on {
		return "set pagination on"
	}
	return "set pagination off"
}

// SetArchitecture selects gdb's instruction set.
func SetArchitecture(name string) string {
	return "set architecture " + name
}

// TargetRemote attaches gdb to a remote stub. An empty host means localhost.
func TargetRemote(host string, port int) string {
	return fmt.Sprintf("%s %s:%d", CmdTargetRemote, host, port)
}

// Replayable reports whether a command changes session state in a way that
// should be reproduced when the session is replayed from a script.
// Queries and transient introspection loads ("file <path>") are not.
func Replayable(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "file":
		return len(fields) == 1
	case "symbol-file", "add-symbol-file", "set", "target":
		return true
	default:
		return false
	}
}
