package efi

import (
	"fmt"
)

// LogFileError represents a boot log that cannot be opened or read.
// It is the only input problem that aborts a whole run.
type LogFileError struct {
	// Path is the log file path
	Path string
	// Underlying error
	Err error
}

func (e *LogFileError) Error() string {
	return fmt.Sprintf("cannot read boot log %s: %v", e.Path, e.Err)
}

func (e *LogFileError) Unwrap() error {
	return e.Err
}

// PatternError represents an unusable load-line pattern.
type PatternError struct {
	// Pattern is the offending regular expression
	Pattern string
	// Reason describes what is wrong with it
	Reason string
	// Underlying error, if the pattern did not compile
	Err error
}

func (e *PatternError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid load pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("invalid load pattern %q: %s", e.Pattern, e.Reason)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// NotFoundError represents a driver whose binary or debug file is missing.
type NotFoundError struct {
	// Module is the driver file name from the log
	Module string
	// Kind is "binary" or "debug"
	Kind string
	// Path is the expected debug file path (empty for binaries)
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s file for %s not found at %s", e.Kind, e.Module, e.Path)
	}
	return fmt.Sprintf("%s file for %s not found", e.Kind, e.Module)
}

// ArchMismatchError represents an image built for a different architecture.
type ArchMismatchError struct {
	// Path is the inspected image
	Path string
	// FileType is the file type gdb reported (may be empty)
	FileType string
	// Expected is the selected architecture
	Expected Arch
}

func (e *ArchMismatchError) Error() string {
	fileType := e.FileType
	if fileType == "" {
		fileType = "None"
	}
	return fmt.Sprintf("bad file architecture %s for %s (expected %s for %s)",
		fileType, e.Path, e.Expected.FileType(), e.Expected)
}

// AddressError represents a base or section address that is not valid hex.
type AddressError struct {
	// Field is "base", "text" or "data"
	Field string
	// Value is the text that failed to parse
	Value string
	// Underlying error
	Err error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid %s address %q: %v", e.Field, e.Value, e.Err)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}
