package guid

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	fguid "github.com/linuxboot/fiano/pkg/guid"
	"github.com/spf13/afero"
)

// XrefError represents a Guid.xref file that cannot be read.
type XrefError struct {
	// Path is the xref file path
	Path string
	// Underlying error
	Err error
}

func (e *XrefError) Error() string {
	return fmt.Sprintf("cannot read GUID cross-reference %s: %v", e.Path, e.Err)
}

func (e *XrefError) Unwrap() error {
	return e.Err
}

// Xref maps uppercase GUID text to names.
type Xref struct {
	names map[string]string
}

// NewXref creates an empty table.
func NewXref() *Xref {
	return &Xref{names: make(map[string]string)}
}

// LoadFile merges the entries of the xref file at path and returns how many
// lines were accepted.
func (x *Xref) LoadFile(fs afero.Fs, path string) (int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, &XrefError{Path: path, Err: err}
	}
	defer f.Close()

	n, err := x.Read(f)
	if err != nil {
		return n, &XrefError{Path: path, Err: err}
	}
	return n, nil
}

// Read merges "<GUID> <name>" lines from r. Lines that do not split into
// exactly two fields on single spaces are ignored, as are lines with an
// empty GUID or name.
func (x *Xref) Read(r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	accepted := 0
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if key, name, ok := parseLine(line); ok {
				x.set(key, name)
				accepted++
			}
		}
		if err == io.EOF {
			return accepted, nil
		}
		if err != nil {
			return accepted, err
		}
	}
}

func parseLine(line string) (string, string, bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	fields := strings.Split(line, " ")
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return "", "", false
	}
	return strings.ToUpper(fields[0]), fields[1], true
}

// set adds or replaces a single entry. Keys are matched as literal uppercase
// text, whatever their shape. Empty keys are ignored.
func (x *Xref) set(key, name string) {
	if key == "" {
		return
	}
	x.names[strings.ToUpper(key)] = name
}

// GUIDs returns how many keys parse as GUIDs. The rest are still replaced
// literally.
func (x *Xref) GUIDs() int {
	n := 0
	for k := range x.names {
		if _, err := fguid.Parse(k); err == nil {
			n++
		}
	}
	return n
}

// Len returns the number of distinct keys.
func (x *Xref) Len() int {
	return len(x.names)
}

// Keys returns every key, longest first and then in lexical order.
func (x *Xref) Keys() []string {
	keys := make([]string, 0, len(x.names))
	for k := range x.names {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}
