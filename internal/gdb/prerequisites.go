package gdb

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"
)

// PrerequisiteCheck represents the result of checking a single prerequisite.
type PrerequisiteCheck struct {
	// Name is the human-readable name of the prerequisite
	Name string
	// Available indicates whether the prerequisite is available
	Available bool
	// Required is false for checks that only produce a warning
	Required bool
	// Path is the resolved path (for binary checks)
	Path string
	// Version is the detected version (if applicable)
	Version string
	// Message provides additional context (error message or success info)
	Message string
	// Error contains the underlying error if check failed
	Error error
}

// PrerequisiteResult contains the results of all prerequisite checks.
type PrerequisiteResult struct {
	// Checks contains individual check results
	Checks []PrerequisiteCheck
	// AllAvailable is true if all required prerequisites are available
	AllAvailable bool
}

// ValidatePrerequisites checks for all required prerequisites and returns a detailed report.
// This includes:
//   - the gdb binary
//   - the QEMU gdb stub (optional warning if not listening)
func ValidatePrerequisites(ctx context.Context, gdbPath string, remoteHost string, remotePort int) *PrerequisiteResult {
	result := &PrerequisiteResult{
		Checks:       make([]PrerequisiteCheck, 0, 2),
		AllAvailable: true,
	}

	gdbCheck := checkGDBBinary(ctx, gdbPath)
	result.Checks = append(result.Checks, gdbCheck)
	if !gdbCheck.Available {
		result.AllAvailable = false
	}

	// The stub is only needed for -r; its absence is a warning
	result.Checks = append(result.Checks, checkRemoteStub(ctx, remoteHost, remotePort))

	return result
}

// checkGDBBinary verifies that gdb is available and executable.
func checkGDBBinary(ctx context.Context, gdbPath string) PrerequisiteCheck {
	check := PrerequisiteCheck{
		Name:     "gdb",
		Required: true,
	}

	path, err := exec.LookPath(gdbPath)
	if err != nil {
		check.Error = err
		check.Message = gdbPath + " not found in PATH\n" +
			"Install on Debian/Ubuntu: sudo apt-get install gdb\n" +
			"Install on Fedora: sudo dnf install gdb"
		return check
	}
	check.Path = path

	version, err := gdbVersion(ctx, path)
	if err != nil {
		check.Error = err
		check.Message = fmt.Sprintf("%s found at %s but failed to execute: %v", gdbPath, path, err)
		return check
	}

	check.Version = version
	check.Available = true
	check.Message = fmt.Sprintf("Found at %s", path)
	return check
}

func gdbVersion(ctx context.Context, path string) (string, error) {
	versionCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, path, "--version").Output()
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		return strings.TrimSpace(lines[0]), nil
	}
	return "", nil
}

// checkRemoteStub attempts to connect to the gdb stub to verify QEMU is listening.
func checkRemoteStub(ctx context.Context, host string, port int) PrerequisiteCheck {
	check := PrerequisiteCheck{
		Name: "QEMU gdb stub",
	}

	if err := ValidateRemoteConnection(ctx, host, port); err != nil {
		check.Error = err
		check.Message = fmt.Sprintf("Nothing is listening on %s\n"+
			"This is not fatal, but -r will fail.\n"+
			"Start QEMU with: qemu-system-x86_64 -s -S ...", remoteAddress(host, port))
		return check
	}

	check.Available = true
	check.Message = fmt.Sprintf("Connected successfully to %s", remoteAddress(host, port))
	return check
}

// ValidateGDBPath checks if a specific gdb binary path is valid and executable.
func ValidateGDBPath(ctx context.Context, gdbPath string) error {
	if gdbPath == "" {
		return &PrerequisiteError{
			Prerequisite: "gdb",
			Details:      "gdb path is empty",
		}
	}

	versionCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, gdbPath, "--version").Output()
	if err != nil {
		return &PrerequisiteError{
			Prerequisite: "gdb",
			Details:      fmt.Sprintf("Failed to execute %s --version", gdbPath),
			Err:          err,
		}
	}

	if _, err := NewParser().ParseVersion(string(output)); err != nil {
		return &PrerequisiteError{
			Prerequisite: "gdb",
			Details:      fmt.Sprintf("%s does not appear to be GNU gdb", gdbPath),
		}
	}

	return nil
}

// ValidateRemoteConnection checks if a gdb stub accepts connections at host:port.
func ValidateRemoteConnection(ctx context.Context, host string, port int) error {
	dialer := net.Dialer{
		Timeout: 2 * time.Second,
	}

	conn, err := dialer.DialContext(ctx, "tcp", remoteAddress(host, port))
	if err != nil {
		return &ConnectionError{
			Host: host,
			Port: port,
			Err:  err,
		}
	}
	defer conn.Close()

	return nil
}

func remoteAddress(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, fmt.Sprint(port))
}

// FormatPrerequisiteReport formats a PrerequisiteResult into a human-readable string.
func FormatPrerequisiteReport(result *PrerequisiteResult) string {
	var sb strings.Builder

	sb.WriteString("Prerequisites Check:\n")
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	for _, check := range result.Checks {
		if check.Available {
			sb.WriteString(fmt.Sprintf("✓ %s\n", check.Name))
			if check.Version != "" {
				sb.WriteString(fmt.Sprintf("  Version: %s\n", check.Version))
			}
			if check.Path != "" {
				sb.WriteString(fmt.Sprintf("  Path: %s\n", check.Path))
			}
		} else if check.Required {
			sb.WriteString(fmt.Sprintf("✗ %s\n", check.Name))
		} else {
			sb.WriteString(fmt.Sprintf("! %s\n", check.Name))
		}
		if check.Message != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", check.Message))
		}
		sb.WriteString("\n")
	}

	if result.AllAvailable {
		sb.WriteString("All required prerequisites are available.\n")
	} else {
		sb.WriteString("Some prerequisites are missing. Please install them before proceeding.\n")
	}

	return sb.String()
}
