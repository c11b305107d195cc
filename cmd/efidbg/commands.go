package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/efidbg/internal/config"
	"github.com/muurk/efidbg/internal/gdb"
	"github.com/muurk/efidbg/internal/logging"
	"github.com/muurk/efidbg/internal/ui"
)

// Command flags
var (
	configPath string
	gdbPath    string
	gdbTimeout string
	logLevel   string
	verbose    bool // Show the recorded gdb commands
	remoteHost string
	remotePort int
	force      bool
	userConfig bool
)

func init() {
	// Common flags for all commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: ./.efidbg.yaml, then the user config)")
	rootCmd.PersistentFlags().StringVar(&gdbPath, "gdb-path", "gdb", "Path to the gdb binary")
	rootCmd.PersistentFlags().StringVar(&gdbTimeout, "timeout", "30s", "gdb command timeout (e.g., 30s, 2m)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+" or silent)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show the gdb commands that were issued")

	// Add subcommands
	rootCmd.AddCommand(loadSymbolsCmd)
	rootCmd.AddCommand(replaceGUIDsCmd)
	rootCmd.AddCommand(verifySetupCmd)
	rootCmd.AddCommand(initConfigCmd)
}

// newLogger initializes logging from --log-level or the environment
// (silent by default).
func newLogger() (*zap.Logger, error) {
	if err := logging.Initialize(logLevel); err != nil {
		return nil, fmt.Errorf("invalid --log-level or $%s: %w", logging.LogLevelEnvVar, err)
	}
	return logging.GetLogger(), nil
}

// loadConfig reads --config or the first configuration file found, then
// applies the persistent flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	fsys := afero.NewOsFs()

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if configPath != "" {
		path = configPath
		cfg, err = config.LoadFile(fsys, configPath)
	} else {
		cfg, path, err = config.Load(fsys, ".")
	}
	if err != nil {
		return nil, path, err
	}

	flags := cmd.Flags()
	if flags.Changed("gdb-path") {
		cfg.GDBPath = gdbPath
	}
	if flags.Changed("timeout") {
		timeout, err := time.ParseDuration(gdbTimeout)
		if err != nil {
			return nil, path, fmt.Errorf("invalid timeout value: %w", err)
		}
		cfg.CommandTimeout = timeout
	}
	if flags.Changed("remote-host") {
		cfg.RemoteHost = remoteHost
	}
	if flags.Changed("remote-port") {
		cfg.RemotePort = remotePort
	}
	return cfg, path, nil
}

// gdbConfig builds the gdb process settings from the configuration.
func gdbConfig(cfg *config.Config) gdb.Config {
	c := gdb.DefaultConfig()
	if cfg.GDBPath != "" {
		c.GDBPath = cfg.GDBPath
	}
	if cfg.CommandTimeout > 0 {
		c.Timeout = cfg.CommandTimeout
	}
	return c
}

func displayPath(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}

// verifySetupCmd implements the 'verify-setup' command
var verifySetupCmd = &cobra.Command{
	Use:   "verify-setup",
	Short: "Verify gdb and the QEMU gdb stub",
	Long: `Check that everything load-symbols needs is in place:

  - the gdb binary can be executed
  - the QEMU gdb stub accepts connections (only needed for -r)

Start QEMU with -s (or -gdb tcp::1234) to enable the stub.`,
	Example: `  # Verify default setup
  efidbg verify-setup

  # Verify with a cross gdb and a different stub port
  efidbg verify-setup --gdb-path x86_64-elf-gdb --remote-port 5555`,
	RunE: runVerifySetup,
}

func init() {
	verifySetupCmd.Flags().StringVar(&remoteHost, "remote-host", "", "Host of the QEMU gdb stub (default: localhost)")
	verifySetupCmd.Flags().IntVar(&remotePort, "remote-port", 1234, "Port of the QEMU gdb stub")
}

func runVerifySetup(cmd *cobra.Command, args []string) error {
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

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Setup Verification", "efidbg verify-setup",
		ui.Param{Key: "GDB Path", Value: cfg.GDBPath},
		ui.Param{Key: "Remote", Value: fmt.Sprintf("%s:%d", cfg.RemoteHost, cfg.RemotePort)},
		ui.Param{Key: "Config", Value: displayPath(cfgPath)},
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CommandTimeout)
	defer cancel()

	result := gdb.ValidatePrerequisites(ctx, cfg.GDBPath, cfg.RemoteHost, cfg.RemotePort)
	logger.Debug("prerequisites checked", zap.Bool("all_available", result.AllAvailable))
	p.Println(gdb.FormatPrerequisiteReport(result))

	if !result.AllAvailable {
		p.PrintError("Setup verification failed", firstMissing(result), []string{
			"Install gdb: apt install gdb (Linux) or brew install x86_64-elf-gdb (macOS)",
			"Point --gdb-path (or gdb_path in .efidbg.yaml) at the binary",
		})
		return fmt.Errorf("setup verification failed")
	}

	p.PrintSuccess("Setup verified",
		ui.Detail{Key: "GDB", Value: cfg.GDBPath},
	)
	return nil
}

// initConfigCmd implements the 'init-config' command
var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a commented default configuration file",
	Long: `Write a configuration file with every setting at its default value.

By default the file is .efidbg.yaml in the current directory, which applies
to runs started from this EDK2 workspace. With --user it is written to the
per-user configuration directory instead.`,
	Example: `  # Workspace configuration
  efidbg init-config

  # Per-user configuration, replacing an existing one
  efidbg init-config --user --force`,
	RunE: runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	initConfigCmd.Flags().BoolVar(&userConfig, "user", false, "Write the per-user configuration file")
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	path := config.LocalFile
	if configPath != "" {
		path = configPath
	} else if userConfig {
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	if err := config.WriteDefault(afero.NewOsFs(), path, force); err != nil {
		p.PrintError("Configuration not written", err, []string{
			"Use --force to replace an existing file",
		})
		return err
	}

	p.PrintSuccess("Configuration written",
		ui.Detail{Key: "Path", Value: path},
	)
	return nil
}

// firstMissing returns the error of the first required check that failed.
func firstMissing(result *gdb.PrerequisiteResult) error {
	for _, check := range result.Checks {
		if check.Required && !check.Available {
			if check.Error != nil {
				return check.Error
			}
			return &gdb.PrerequisiteError{Prerequisite: check.Name, Details: check.Message}
		}
	}
	return nil
}

// interruptContext returns a context cancelled on Ctrl+C.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
