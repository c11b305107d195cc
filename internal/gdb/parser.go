package gdb

import (
	"regexp"
	"strings"
)

// FileInfo holds the fields scraped from "info files" output.
// Addresses are kept as the hex text gdb printed them.
type FileInfo struct {
	Text     string
	Data     string
	FileType string
}

// Parser extracts structured values from gdb console output.
type Parser struct {
	versionPattern *regexp.Regexp // Matches: GNU gdb (GDB) 14.2
}

// NewParser creates a new parser with compiled regex patterns.
func NewParser() *Parser {
	return &Parser{
		versionPattern: regexp.MustCompile(`GNU gdb\s+(?:\([^)]*\)\s+)?(\S+)`),
	}
}

// ParseInfoFiles scrapes "info files" output. Lines look like:
//
//	Local exec file:
//		`/work/Build/OvmfIa32/DEBUG_GCC5/IA32/Shell.efi', file type pei-i386.
//		Entry point: 0x2c0
//		0x00000240 - 0x0000c6a0 is .text
//		0x0000c6a0 - 0x0000d1e0 is .data
//
// When a field appears more than once the last occurrence wins.
func (p *Parser) ParseInfoFiles(output string) FileInfo {
	var info FileInfo
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch {
		case strings.Contains(line, " is .text"):
			info.Text = fields[0]
		case strings.Contains(line, " is .data"):
			info.Data = fields[0]
		case strings.Contains(line, " file type "):
			info.FileType = strings.TrimRight(fields[len(fields)-1], ".")
		}
	}
	return info
}

// ParsePagination returns the trailing on/off token of "show pagination"
// output ("State of pagination is on." -> "on").
func (p *Parser) ParsePagination(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", &ParseError{Command: CmdShowPagination, Field: "state", Output: output}
	}
	return strings.TrimRight(fields[len(fields)-1], "."), nil
}

// ParseVersion extracts the version from "gdb --version" or "show version".
func (p *Parser) ParseVersion(output string) (string, error) {
	m := p.versionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", &ParseError{Command: CmdShowVersion, Field: "version", Output: output}
	}
	return m[1], nil
}
