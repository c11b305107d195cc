package gdb

import (
	"fmt"
)

// CommandError represents a console command that gdb rejected.
// This is gdb's own "^error" answer, e.g. for a missing file or a bad argument.
type CommandError struct {
	// Command is the console command that failed
	Command string
	// Message is the error message reported by gdb
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("gdb rejected command %q: %s", e.Command, e.Message)
}

// ExecutionError represents a failure of the gdb process itself.
// This occurs when gdb cannot be started, exits early, or its pipes break.
type ExecutionError struct {
	// Command is the command in flight when the failure happened (may be empty)
	Command string
	// ExitCode is the gdb process exit code, -1 if unknown
	ExitCode int
	// Stderr is the gdb stderr output collected so far
	Stderr string
	// Underlying error if any
	Err error
}

func (e *ExecutionError) Error() string {
	msg := "gdb execution failed"
	if e.Command != "" {
		msg += fmt.Sprintf(" during %q", e.Command)
	}
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ConnectionError represents a failure to reach the remote gdb stub.
// This typically means QEMU was started without -s / -gdb tcp::1234.
type ConnectionError struct {
	// Host is the remote host that failed to connect
	Host string
	// Port is the remote port that failed to connect
	Port int
	// Underlying error
	Err error
}

func (e *ConnectionError) Error() string {
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("failed to connect to gdb stub at %s:%d: %v\n"+
		"Hint: Start QEMU with -s (or -gdb tcp::%d) and -S to wait for the debugger.",
		host, e.Port, e.Err, e.Port)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ParseError represents a failure to parse gdb output.
// This occurs when the output doesn't match expected format or patterns.
type ParseError struct {
	// Command is the command whose output failed to parse
	Command string
	// Field is the specific field that failed to parse
	Field string
	// Output is the gdb output that failed to parse
	Output string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse gdb output for %q: field %q not found\n"+
		"Output: %s",
		e.Command, e.Field, e.Output)
}

// PrerequisiteError represents a missing prerequisite (gdb binary, remote stub, etc.).
type PrerequisiteError struct {
	// Prerequisite is the name of the missing prerequisite
	Prerequisite string
	// Details provides additional context
	Details string
	// Underlying error
	Err error
}

func (e *PrerequisiteError) Error() string {
	msg := fmt.Sprintf("missing prerequisite: %s", e.Prerequisite)
	if e.Details != "" {
		msg += "\n" + e.Details
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\nError: %v", e.Err)
	}
	return msg
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}

// TemplateError represents a script template rendering error.
type TemplateError struct {
	// Template is the name of the template that failed to render
	Template string
	// Underlying error
	Err error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("failed to render template %q: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a gdb command that did not answer in time.
type TimeoutError struct {
	// Command is the command that timed out
	Command string
	// Timeout is the duration that was exceeded
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gdb command %q timed out after %s\n"+
		"Hint: Increase timeout with --timeout flag",
		e.Command, e.Timeout)
}
