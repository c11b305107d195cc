package efi

import (
	"context"
	"fmt"
	"io"

	"github.com/muurk/efidbg/internal/gdb"
	"github.com/muurk/efidbg/internal/logging"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Introspection backends.
const (
	IntrospectGDB = "gdb"
	IntrospectPE  = "pe"
)

// Session runs the symbol loading sequence against a debugger:
// clear symbols, disable pagination, scan the log, resolve and register
// drivers, restore pagination and optionally attach to the remote stub.
type Session struct {
	dbg    gdb.Debugger
	fs     afero.Fs
	opts   Options
	out    io.Writer
	logger *zap.Logger
	parser *gdb.Parser
}

// NewSession creates a Session. Diagnostics are printed to out.
func NewSession(dbg gdb.Debugger, fs afero.Fs, opts Options, out io.Writer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		dbg:    dbg,
		fs:     fs,
		opts:   opts,
		out:    out,
		logger: logger,
		parser: gdb.NewParser(),
	}
}

// Run executes the session. The returned error is non-nil only for
// conditions that end the whole run; per-driver problems are in the Report.
// Pagination is restored on every path once it has been turned off. A failed
// remote connection is reported as *gdb.ConnectionError with a complete
// Report, since every symbol was registered before the attempt.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	report := &Report{Arch: s.opts.Arch}

	if err := s.clearSymbols(ctx); err != nil {
		return report, err
	}

	if err := s.withPaginationOff(ctx, report, func() error {
		return s.load(ctx, report)
	}); err != nil {
		return report, err
	}

	if s.opts.Remote {
		if _, err := s.dbg.Execute(ctx, gdb.TargetRemote(s.opts.RemoteHost, s.opts.RemotePort)); err != nil {
			return report, &gdb.ConnectionError{Host: s.opts.RemoteHost, Port: s.opts.RemotePort, Err: err}
		}
		report.RemoteConnected = true
	}
	return report, nil
}

func (s *Session) clearSymbols(ctx context.Context) error {
	if _, err := s.dbg.Execute(ctx, gdb.File("")); err != nil {
		return fmt.Errorf("failed to clear executable: %w", err)
	}
	if _, err := s.dbg.Execute(ctx, gdb.CmdSymbolFile); err != nil {
		return fmt.Errorf("failed to clear symbols: %w", err)
	}
	return nil
}

// withPaginationOff runs fn with gdb pagination disabled, restoring it
// afterwards if it was on.
func (s *Session) withPaginationOff(ctx context.Context, report *Report, fn func() error) (err error) {
	out, err := s.dbg.Execute(ctx, gdb.CmdShowPagination)
	if err != nil {
		return fmt.Errorf("failed to read pagination: %w", err)
	}

	pagination, perr := s.parser.ParsePagination(out)
	if perr != nil {
		s.logger.Debug("pagination state unknown", zap.Error(perr))
	}

	if pagination == "on" {
		fmt.Fprintln(s.out, "Turning pagination off")
		if _, err := s.dbg.Execute(ctx, gdb.SetPagination(false)); err != nil {
			return fmt.Errorf("failed to disable pagination: %w", err)
		}
		defer func() {
			fmt.Fprintln(s.out, "Restoring pagination")
			if _, rerr := s.dbg.Execute(context.WithoutCancel(ctx), gdb.SetPagination(true)); rerr != nil {
				if err == nil {
					err = fmt.Errorf("failed to restore pagination: %w", rerr)
				}
				return
			}
			report.PaginationRestored = true
		}()
	}

	return fn()
}

func (s *Session) load(ctx context.Context, report *Report) error {
	if len(s.opts.Modules) > 0 {
		fmt.Fprintf(s.out, "Using pre-defined driver list: %v\n", s.opts.Modules)
	}
	if name := s.opts.Arch.GDBArchitecture(); name != "" {
		if _, err := s.dbg.Execute(ctx, gdb.SetArchitecture(name)); err != nil {
			return fmt.Errorf("failed to set architecture: %w", err)
		}
	}

	locator := NewLocator(s.fs, s.opts.WorkDir, s.opts.BuildDir, s.opts.DebugExt)
	if !locator.BuildDirExists() {
		fmt.Fprintf(s.out, "Directory %q is missing\n", locator.BuildDir())
	}

	fmt.Fprintf(s.out, "With architecture %s\n", s.opts.Arch)

	scanner, err := NewScanner(s.opts.Pattern, s.opts.Modules)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Looking for addresses in %s\n", s.opts.LogFile)
	table, err := ScanFile(s.fs, s.logPath(), scanner)
	if err != nil {
		return err
	}
	report.Found = table.Len()
	s.logger.Debug("boot log scanned", zap.String("log", s.opts.LogFile), zap.Int("drivers", table.Len()))

	resolver := NewResolver(locator, s.introspector(), s.opts.Arch, s.out, s.logger)
	resolved := &resolvedTable{}
	used := make(map[string]string)

	for _, rec := range table.Records() {
		mod, err := resolver.Resolve(ctx, rec)
		if err != nil {
			if !IsSkip(err) {
				return err
			}
			report.Skipped = append(report.Skipped, Skip{Module: rec.Module, Reason: err})
			logging.LogModuleSkipped(s.logger, rec.Module, err)
			continue
		}

		if prev, ok := used[mod.BaseAddress]; ok {
			fmt.Fprintf(s.out, "WARNING: duplicate base address %s\n", mod.BaseAddress)
			fmt.Fprintf(s.out, "(was previously provided for %s)\n", prev)
			fmt.Fprintln(s.out, "Only new file will be loaded")
			resolved.delete(prev)
			report.Collisions = append(report.Collisions, Collision{
				BaseAddress: mod.BaseAddress,
				Dropped:     prev,
				Kept:        mod.DebugPath,
			})
		}
		used[mod.BaseAddress] = mod.DebugPath
		resolved.put(mod)
	}

	modules := resolved.modules()
	n, err := NewSymbolLoader(s.dbg, s.out, s.logger).Load(ctx, modules)
	report.Loaded = modules[:n]
	return err
}

func (s *Session) introspector() Introspector {
	if s.opts.Introspect == IntrospectPE {
		return NewPEIntrospector(s.fs)
	}
	return NewGDBIntrospector(s.dbg)
}

func (s *Session) logPath() string {
	return NewLocator(s.fs, s.opts.WorkDir, "", "").path(s.opts.LogFile)
}
