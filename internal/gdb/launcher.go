package gdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Launcher starts an interactive gdb that sources a session script and then
// hands the terminal to the user.
type Launcher struct {
	config Config
	logger *zap.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher creates a Launcher wired to the process' standard streams.
func NewLauncher(config Config, logger *zap.Logger) *Launcher {
	return &Launcher{
		config: config,
		logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Command builds the gdb command line for scriptFile.
//
// -nx: Don't execute .gdbinit
// -x:  Execute commands from file
//
// -batch is deliberately absent so gdb stays interactive after the script.
func (l *Launcher) Command(ctx context.Context, scriptFile string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, l.config.GDBPath, "-nx", "-x", scriptFile)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	return cmd
}

// Launch runs the interactive gdb until the user quits it.
func (l *Launcher) Launch(ctx context.Context, scriptFile string) error {
	if _, err := os.Stat(scriptFile); err != nil {
		return fmt.Errorf("session script not available: %w", err)
	}

	l.logger.Info("launching interactive gdb",
		zap.String("gdb_path", l.config.GDBPath),
		zap.String("script", scriptFile),
	)

	start := time.Now()
	err := l.Command(ctx, scriptFile).Run()
	duration := time.Since(start)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &ExecutionError{Command: "interactive session", ExitCode: exitCode, Err: err}
	}

	l.logger.Info("interactive gdb exited", zap.Duration("duration", duration))
	return nil
}
