package gdb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/efidbg/internal/logging"
)

// Debugger runs gdb console commands and returns their console output.
type Debugger interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Config holds the configuration for the gdb process.
type Config struct {
	// GDBPath is the path to the gdb binary.
	// Default: "gdb" (searches PATH)
	GDBPath string

	// Timeout is the maximum time to wait for a single command.
	// Default: 30 seconds
	Timeout time.Duration

	// StartupTimeout is the maximum time to wait for the first MI prompt.
	// Default: 10 seconds
	StartupTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GDBPath:        "gdb",
		Timeout:        30 * time.Second,
		StartupTimeout: 10 * time.Second,
	}
}

// Process is a long-lived gdb driven through the GDB/MI interpreter.
// Console commands are wrapped in -interpreter-exec so their console
// output can be captured verbatim.
type Process struct {
	config Config
	logger *zap.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer

	lines   chan string
	readErr error

	mu    sync.Mutex
	token int
}

// Start launches gdb and waits for its first prompt.
func Start(ctx context.Context, config Config, logger *zap.Logger) (*Process, error) {
	cmd := exec.Command(config.GDBPath, "--interpreter=mi2", "-nx", "-q")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	logger.Info("starting gdb", zap.String("gdb_path", config.GDBPath))

	if err := cmd.Start(); err != nil {
		return nil, &ExecutionError{ExitCode: -1, Err: fmt.Errorf("failed to start gdb: %w", err)}
	}

	p := newProcess(config, logger, stdin, stdout)
	p.cmd = cmd
	p.stderr = stderr

	if err := p.handshake(ctx); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	return p, nil
}

// newProcess wires a Process to the given MI streams.
func newProcess(config Config, logger *zap.Logger, stdin io.WriteCloser, stdout io.Reader) *Process {
	p := &Process{
		config: config,
		logger: logger,
		stdin:  stdin,
		stderr: &bytes.Buffer{},
		lines:  make(chan string, 64),
	}
	go p.readLoop(stdout)
	return p
}

func (p *Process) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	p.readErr = scanner.Err()
	close(p.lines)
}

// handshake waits for the initial prompt and disables interactive queries.
func (p *Process) handshake(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.config.StartupTimeout)
	defer cancel()

	for {
		select {
		case <-timeoutCtx.Done():
			return &TimeoutError{Command: "startup", Timeout: p.config.StartupTimeout.String()}
		case line, ok := <-p.lines:
			if !ok {
				return p.exitError("startup")
			}
			if ParseRecord(line).Kind == RecordPrompt {
				_, err := p.send(ctx, "-gdb-set confirm off", "-gdb-set confirm off")
				return err
			}
		}
	}
}

// Execute runs a console command and returns the console stream output.
func (p *Process) Execute(ctx context.Context, command string) (string, error) {
	start := time.Now()
	out, err := p.send(ctx, "-interpreter-exec console "+quoteCString(command), command)
	logging.LogGDBCommand(p.logger, command, out, time.Since(start))
	return out, err
}

func (p *Process) send(ctx context.Context, miCommand, command string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token++
	token := p.token

	if _, err := fmt.Fprintf(p.stdin, "%d%s\n", token, miCommand); err != nil {
		return "", &ExecutionError{Command: command, ExitCode: -1, Stderr: p.stderr.String(), Err: err}
	}

	timeoutCtx := ctx
	if _, ok := ctx.Deadline(); !ok && p.config.Timeout > 0 {
		var cancel context.CancelFunc
		timeoutCtx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	var out strings.Builder
	for {
		select {
		case <-timeoutCtx.Done():
			if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
				return out.String(), &TimeoutError{Command: command, Timeout: p.config.Timeout.String()}
			}
			return out.String(), timeoutCtx.Err()
		case line, ok := <-p.lines:
			if !ok {
				return out.String(), p.exitError(command)
			}
			rec := ParseRecord(line)
			switch rec.Kind {
			case RecordConsole, RecordTarget:
				out.WriteString(rec.Text)
			case RecordResult:
				if rec.Token != token {
					continue
				}
				if rec.Class == "error" {
					return out.String(), &CommandError{Command: command, Message: rec.ErrorMessage()}
				}
				return out.String(), nil
			}
		}
	}
}

func (p *Process) exitError(command string) error {
	err := p.readErr
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return &ExecutionError{Command: command, ExitCode: -1, Stderr: p.stderr.String(), Err: err}
}

// Close asks gdb to exit and waits for it.
func (p *Process) Close() error {
	p.mu.Lock()
	_, _ = io.WriteString(p.stdin, "-gdb-exit\n")
	_ = p.stdin.Close()
	p.mu.Unlock()

	if p.cmd == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &ExecutionError{ExitCode: exitErr.ExitCode(), Stderr: p.stderr.String(), Err: err}
			}
			return err
		}
		return nil
	case <-time.After(5 * time.Second):
		_ = p.cmd.Process.Kill()
		return &TimeoutError{Command: "-gdb-exit", Timeout: "5s"}
	}
}
