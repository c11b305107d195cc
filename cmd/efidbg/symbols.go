package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/efidbg/internal/config"
	"github.com/muurk/efidbg/internal/efi"
	"github.com/muurk/efidbg/internal/gdb"
	"github.com/muurk/efidbg/internal/ui"
	"github.com/muurk/efidbg/internal/version"
)

// load-symbols flags
var (
	symArgs       string
	symRemote     bool
	symX64        bool
	symModules    []string
	symLogFile    string
	symBuildDir   string
	symDebugExt   string
	symPattern    string
	symIntrospect string
	symScriptOut  string
	symLaunch     bool
	symPick       bool
)

// loadSymbolsCmd implements the 'load-symbols' command
var loadSymbolsCmd = &cobra.Command{
	Use:   "load-symbols [-- TOKENS...]",
	Short: "Register EFI driver symbols with gdb",
	Long: `Read the "Loading ... at 0x... Name.efi" lines of the boot log and register
the debug symbols of every driver with gdb at the address it was loaded at.

This command will:
  1. Clear gdb's symbols and turn pagination off
  2. Scan the boot log for driver load lines (last load of a driver wins)
  3. Find each driver's .efi in the working directory or the Build tree
  4. Read its .text and .data offsets and add the load address
  5. Issue add-symbol-file for every driver (a later driver loaded at the
     same base address replaces the earlier one)
  6. Restore pagination and optionally connect to the QEMU gdb stub
  7. Write the state-changing commands to a gdb script (efi.gdb)

The tokens of the original gdb command are accepted after "--": driver
names restrict loading to those drivers, -64 selects X64 and -r connects
to the remote stub afterwards. Unknown tokens are ignored.

Use 'source efi.gdb' in your own gdb, or --launch to start one.`,
	Example: `  # Every IA32 driver in debug.log
  efidbg load-symbols

  # X64 drivers, then connect to QEMU
  efidbg load-symbols -- -64 -r

  # Same, with typed flags
  efidbg load-symbols --x64 --remote

  # Only selected drivers, chosen interactively
  efidbg load-symbols --pick

  # Resolve from the PE headers without running gdb, then open gdb
  efidbg load-symbols --introspect pe --launch`,
	Args: cobra.ArbitraryArgs,
	RunE: runLoadSymbols,
}

func init() {
	f := loadSymbolsCmd.Flags()
	f.StringVar(&symArgs, "args", "", "Argument string as typed at the gdb prompt (e.g., \"-64 -r PcdDxe\")")
	f.BoolVarP(&symRemote, "remote", "r", false, "Connect to the QEMU gdb stub after loading")
	f.BoolVar(&symX64, "x64", false, "Load X64 drivers (default: IA32)")
	f.StringSliceVarP(&symModules, "module", "m", nil, "Only load this driver (repeatable, with or without .efi)")
	f.StringVar(&symLogFile, "log-file", "", "Boot log to scan (default: debug.log)")
	f.StringVar(&symBuildDir, "build-dir", "", "EDK2 build output directory (default: Build)")
	f.StringVar(&symDebugExt, "debug-ext", "", "Extension of the debug files (default: debug)")
	f.StringVar(&symPattern, "pattern", "", "Load line pattern with two groups: address and driver name")
	f.StringVar(&symIntrospect, "introspect", "", "Section address source: gdb or pe (default: gdb)")
	f.StringVar(&symScriptOut, "script-out", "", "gdb script to write (default: efi.gdb, \"-\" to skip)")
	f.BoolVar(&symLaunch, "launch", false, "Start an interactive gdb that sources the script")
	f.BoolVar(&symPick, "pick", false, "Choose the drivers to load from the boot log interactively")
	f.StringVar(&remoteHost, "remote-host", "", "Host of the QEMU gdb stub (default: localhost)")
	f.IntVar(&remotePort, "remote-port", efi.DefaultRemotePort, "Port of the QEMU gdb stub")
}

// symbolOptions merges defaults, configuration, flags and free-form tokens,
// in that order of precedence (lowest first).
func symbolOptions(cfg *config.Config, tokens []string) (efi.Options, error) {
	opts := efi.DefaultOptions()

	arch, err := efi.ParseArch(cfg.Arch)
	if err != nil {
		return opts, err
	}
	opts.Arch = arch
	opts.RemoteHost = cfg.RemoteHost
	if cfg.RemotePort > 0 {
		opts.RemotePort = cfg.RemotePort
	}
	opts.LogFile = firstNonEmpty(symLogFile, cfg.LogFile, opts.LogFile)
	opts.BuildDir = firstNonEmpty(symBuildDir, cfg.BuildDir, opts.BuildDir)
	opts.DebugExt = firstNonEmpty(symDebugExt, cfg.DebugExt, opts.DebugExt)
	opts.Pattern = firstNonEmpty(symPattern, cfg.Pattern, opts.Pattern)
	opts.Introspect = firstNonEmpty(symIntrospect, cfg.Introspect, opts.Introspect)

	switch opts.Introspect {
	case efi.IntrospectGDB, efi.IntrospectPE:
	default:
		return opts, fmt.Errorf("unknown introspection %q (expected %s or %s)",
			opts.Introspect, efi.IntrospectGDB, efi.IntrospectPE)
	}

	if symX64 {
		opts.Arch = efi.X64
	}
	opts.Remote = symRemote
	opts.Modules = symModules

	// -r and -64 arrive as positional tokens after "--"
	return efi.ParseArgs(strings.Join(tokens, " ")+" "+symArgs, opts), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func runLoadSymbols(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := symbolOptions(cfg, args)
	if err != nil {
		return err
	}

	scriptOut := firstNonEmpty(symScriptOut, cfg.ScriptOut)
	if scriptOut == "-" {
		scriptOut = ""
	}
	if symLaunch && scriptOut == "" {
		return fmt.Errorf("--launch needs a script; set --script-out")
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	fsys := afero.NewOsFs()

	if symPick {
		modules, err := pickModules(fsys, opts)
		if errors.Is(err, ui.ErrPickerCancelled) {
			p.PrintWarning("Nothing loaded", ui.Detail{Key: "Reason", Value: "selection cancelled"})
			return nil
		}
		if err != nil {
			return err
		}
		opts.Modules = modules
	}

	gdbCfg := gdbConfig(cfg)
	p.PrintHeader("Load Symbols", "efidbg "+strings.Join(os.Args[1:], " "),
		ui.Param{Key: "Boot log", Value: opts.LogFile},
		ui.Param{Key: "Build dir", Value: opts.BuildDir},
		ui.Param{Key: "Arch", Value: opts.Arch.String()},
		ui.Param{Key: "Introspect", Value: opts.Introspect},
		ui.Param{Key: "Config", Value: displayPath(cfgPath)},
	)

	ctx, cancel := interruptContext()
	defer cancel()

	// PE introspection needs no live gdb: the commands are only recorded.
	var inner gdb.Debugger
	var proc *gdb.Process
	if opts.Introspect != efi.IntrospectPE {
		proc, err = gdb.Start(ctx, gdbCfg, logger)
		if err != nil {
			p.PrintError("Failed to start gdb", err, []string{
				"Run 'efidbg verify-setup' to check the gdb binary",
				"Use --introspect pe to resolve addresses without gdb",
			})
			return err
		}
		defer func() {
			if proc != nil {
				_ = proc.Close()
			}
		}()
		inner = proc
	}

	rec := gdb.NewRecorder(inner, logger)
	if scriptOut != "" {
		// Attaching from this short-lived gdb would detach again on exit and
		// let a QEMU started with -S run; the script attaches instead.
		rec.RecordOnly(gdb.CmdTargetRemote)
	}

	report, runErr := efi.NewSession(rec, fsys, opts, p.Writer(), logger).Run(ctx)
	if verbose {
		p.PrintTranscript(rec.Commands())
	}
	var connErr *gdb.ConnectionError
	if runErr != nil && !errors.As(runErr, &connErr) {
		p.PrintError("Symbol loading failed", runErr, loadTroubleshooting(runErr))
		return runErr
	}

	printReport(p, report)

	if scriptOut != "" {
		info := gdb.ScriptInfo{
			Version:    version.Get().Version,
			LogFile:    opts.LogFile,
			Arch:       opts.Arch.String(),
			ScriptPath: scriptOut,
			Generated:  time.Now(),
		}
		if err := rec.WriteScript(fsys, info); err != nil {
			p.PrintError("Failed to write gdb script", err, nil)
			return err
		}
	}

	details := []ui.Detail{
		{Key: "Drivers in log", Value: fmt.Sprint(report.Found)},
		{Key: "Loaded", Value: fmt.Sprint(len(report.Loaded))},
		{Key: "Skipped", Value: fmt.Sprint(len(report.Skipped))},
	}
	if scriptOut != "" {
		details = append(details, ui.Detail{Key: "Script", Value: scriptOut})
	}
	if report.RemoteConnected {
		remote := fmt.Sprintf("%s:%d", opts.RemoteHost, opts.RemotePort)
		if scriptOut != "" {
			remote += " (attached when the script is sourced)"
		}
		details = append(details, ui.Detail{Key: "Remote", Value: remote})
	}
	if err := report.Err(); err != nil {
		logger.Debug("drivers skipped", zap.Error(err))
	}
	if connErr != nil {
		p.PrintError("Remote connection failed", connErr, []string{
			"Start QEMU with -s (or -gdb tcp::PORT) and -S to wait for the debugger",
			"Run 'efidbg verify-setup' to check the stub",
		})
		return connErr
	}
	p.PrintSuccess(fmt.Sprintf("%d symbol files registered", len(report.Loaded)), details...)

	if symLaunch {
		// The MI gdb is done; hand over to an interactive one. Ctrl+C belongs
		// to that gdb from here on.
		if proc != nil {
			_ = proc.Close()
			proc = nil
		}
		return gdb.NewLauncher(gdbCfg, logger).Launch(context.WithoutCancel(ctx), scriptOut)
	}
	return nil
}

// pickModules scans the log and lets the user choose among its drivers.
func pickModules(fsys afero.Fs, opts efi.Options) ([]string, error) {
	scanner, err := efi.NewScanner(opts.Pattern, opts.Modules)
	if err != nil {
		return nil, err
	}
	table, err := efi.ScanFile(fsys, opts.LogFile, scanner)
	if err != nil {
		return nil, err
	}

	items := make([]ui.PickerItem, 0, table.Len())
	for _, rec := range table.Records() {
		items = append(items, ui.PickerItem{Name: rec.Module, Detail: rec.BaseAddress})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no driver load lines in %s", opts.LogFile)
	}

	selected, err := ui.RunPicker("Drivers in "+opts.LogFile, items, os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ui.ErrPickerCancelled
	}
	return selected, nil
}

func printReport(p *ui.Printer, report *efi.Report) {
	if len(report.Loaded) > 0 {
		rows := make([]ui.ModuleRow, 0, len(report.Loaded))
		for _, m := range report.Loaded {
			rows = append(rows, ui.ModuleRow{
				Module: m.Module,
				Base:   m.BaseAddress,
				Text:   fmt.Sprintf("0x%x", m.Text),
				Data:   fmt.Sprintf("0x%x", m.Data),
				Debug:  m.DebugPath,
			})
		}
		p.PrintModules(rows)
	}

	if len(report.Skipped) > 0 {
		rows := make([]ui.SkipRow, 0, len(report.Skipped))
		for _, s := range report.Skipped {
			rows = append(rows, ui.SkipRow{Module: s.Module, Reason: s.Reason.Error()})
		}
		p.PrintSkips(rows)
	}

	for _, c := range report.Collisions {
		p.PrintWarning("Duplicate base address "+c.BaseAddress,
			ui.Detail{Key: "Dropped", Value: c.Dropped},
			ui.Detail{Key: "Kept", Value: c.Kept},
		)
	}
}

func loadTroubleshooting(err error) []string {
	var logErr *efi.LogFileError
	var patternErr *efi.PatternError
	var timeoutErr *gdb.TimeoutError
	var execErr *gdb.ExecutionError

	switch {
	case errors.As(err, &logErr):
		return []string{
			"Run efidbg from the directory holding the boot log, or pass --log-file",
			"Start QEMU with -debugcon file:debug.log -global isa-debugcon.iobase=0x402",
		}
	case errors.As(err, &patternErr):
		return []string{
			"The pattern needs exactly two groups: the base address and the driver name",
		}
	case errors.As(err, &timeoutErr):
		return []string{
			"Increase --timeout (or command_timeout in .efidbg.yaml)",
		}
	case errors.As(err, &execErr):
		return []string{
			"Run 'efidbg verify-setup' to check the gdb binary",
			"Run with --log-level debug to see the gdb exchange",
		}
	default:
		return []string{
			"Run with --log-level debug for details",
		}
	}
}
