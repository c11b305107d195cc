package efi

import (
	"fmt"
	"strings"
)

// Arch selects the firmware architecture whose drivers are loaded.
type Arch int

const (
	IA32 Arch = iota
	X64
)

// String returns the EDK2 build directory token ("IA32" or "X64").
func (a Arch) String() string {
	switch a {
	case X64:
		return "X64"
	default:
		return "IA32"
	}
}

// FileType returns the file type gdb reports for images of this architecture.
func (a Arch) FileType() string {
	switch a {
	case X64:
		return "pei-x86-64"
	default:
		return "pei-i386"
	}
}

// GDBArchitecture returns the value for "set architecture", or "" when gdb's
// default is fine.
func (a Arch) GDBArchitecture() string {
	if a == X64 {
		return "i386:x86-64:intel"
	}
	return ""
}

// ParseArch parses "IA32" or "X64" (case-insensitive).
func ParseArch(s string) (Arch, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IA32", "":
		return IA32, nil
	case "X64":
		return X64, nil
	default:
		return IA32, fmt.Errorf("unknown architecture %q (expected IA32 or X64)", s)
	}
}
