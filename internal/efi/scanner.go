package efi

import (
	"bufio"
	"io"
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultPattern matches the image load lines OVMF prints in DEBUG builds.
// Group 1 is the base address, group 2 the driver name without ".efi".
const DefaultPattern = `Loading [^ ]+ at (0x[0-9A-F]{8,}) [^ ]+ ([^ ]+)\.efi`

const efiSuffix = ".efi"

// LoadRecord is one driver load announced in the boot log.
type LoadRecord struct {
	BaseAddress string
	Module      string
}

// Scanner extracts LoadRecords from a boot log.
type Scanner struct {
	pattern *regexp.Regexp
	allow   map[string]struct{}
	err     error
}

// NewScanner compiles pattern and prepares the allow-list. An empty pattern
// selects DefaultPattern; an empty allow-list accepts every driver.
func NewScanner(pattern string, allow []string) (*Scanner, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	if re.NumSubexp() != 2 {
		return nil, &PatternError{Pattern: pattern, Reason: "need exactly two groups (address, driver name)"}
	}

	return &Scanner{
		pattern: re,
		allow:   lo.SliceToMap(allow, func(name string) (string, struct{}) { return name, struct{}{} }),
	}, nil
}

// Records yields every accepted load record in r, in log order. Invalid
// UTF-8 bytes are dropped before matching. The sequence can be consumed once;
// check Err afterwards.
func (s *Scanner) Records(r io.Reader) iter.Seq[LoadRecord] {
	return func(yield func(LoadRecord) bool) {
		clean := transform.NewReader(r, runes.Remove(runes.Predicate(func(r rune) bool {
			return r == utf8.RuneError
		})))

		lines := bufio.NewScanner(clean)
		lines.Buffer(make([]byte, 64*1024), 4*1024*1024)

		for lines.Scan() {
			for _, m := range s.pattern.FindAllStringSubmatch(lines.Text(), -1) {
				name := strings.TrimSuffix(m[2], efiSuffix)
				if !s.allowed(name) {
					continue
				}
				if !yield(LoadRecord{BaseAddress: m[1], Module: name + efiSuffix}) {
					return
				}
			}
		}
		s.err = lines.Err()
	}
}

// Err returns the read error that ended the last Records iteration, if any.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) allowed(name string) bool {
	if len(s.allow) == 0 {
		return true
	}
	if _, ok := s.allow[name]; ok {
		return true
	}
	_, ok := s.allow[name+efiSuffix]
	return ok
}

// ScanFile reads the boot log at path and returns its load table.
func ScanFile(fs afero.Fs, path string, s *Scanner) (*LoadTable, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, &LogFileError{Path: path, Err: err}
	}
	defer f.Close()

	table := NewLoadTable()
	for rec := range s.Records(f) {
		table.Put(rec)
	}
	if err := s.Err(); err != nil {
		return nil, &LogFileError{Path: path, Err: err}
	}
	return table, nil
}
