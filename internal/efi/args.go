package efi

import (
	"strings"

	"github.com/samber/lo"
)

// Argument tokens understood by ParseArgs.
const (
	FlagRemote = "-r"
	FlagX64    = "-64"
)

// DefaultLogFile is the boot log read when none is configured.
const DefaultLogFile = "debug.log"

// DefaultRemotePort is the port QEMU's gdb stub listens on with -s.
const DefaultRemotePort = 1234

// Options configures one symbol loading run. It is fixed before the run
// starts and never modified during it.
type Options struct {
	Arch       Arch
	Modules    []string // allow-list; empty loads every driver in the log
	Remote     bool
	RemoteHost string
	RemotePort int

	LogFile    string
	Pattern    string
	WorkDir    string
	BuildDir   string
	DebugExt   string
	Introspect string // "gdb" or "pe"
}

// DefaultOptions returns the options of a bare invocation.
func DefaultOptions() Options {
	return Options{
		Arch:       IA32,
		RemotePort: DefaultRemotePort,
		LogFile:    DefaultLogFile,
		Pattern:    DefaultPattern,
		WorkDir:    ".",
		BuildDir:   DefaultBuildDir,
		DebugExt:   DefaultDebugExt,
		Introspect: IntrospectGDB,
	}
}

// ParseArgs applies a free-form argument string to base. Tokens not starting
// with "-" extend the allow-list, "-64" selects X64 and "-r" requests a
// remote connection. Other flags are ignored.
func ParseArgs(arg string, base Options) Options {
	tokens := strings.Fields(arg)
	opts := base

	names := lo.Filter(tokens, func(t string, _ int) bool {
		return !strings.HasPrefix(t, "-")
	})
	if len(names) > 0 {
		opts.Modules = append(append([]string(nil), base.Modules...), names...)
	}
	if lo.Contains(tokens, FlagX64) {
		opts.Arch = X64
	}
	if lo.Contains(tokens, FlagRemote) {
		opts.Remote = true
	}
	return opts
}
