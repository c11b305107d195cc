package guid

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// Replacer substitutes names for GUID text in a single pass. At each
// position the longest matching key wins; replaced text is never scanned
// again.
type Replacer struct {
	names   map[string]string
	lengths []int // distinct key lengths, longest first
	first   [256]bool
}

// NewReplacer builds a Replacer from the current contents of x.
func NewReplacer(x *Xref) *Replacer {
	r := &Replacer{names: make(map[string]string, x.Len())}
	for _, k := range x.Keys() {
		r.names[k] = x.names[k]
		r.first[k[0]] = true
		if !slices.Contains(r.lengths, len(k)) {
			r.lengths = append(r.lengths, len(k))
		}
	}
	return r
}

// Replace returns s with every key replaced by its name, and the number of
// replacements made.
func (r *Replacer) Replace(s string) (string, int) {
	if len(r.names) == 0 {
		return s, 0
	}

	var b strings.Builder
	count, last := 0, 0
	for i := 0; i < len(s); {
		if !r.first[s[i]] {
			i++
			continue
		}
		name, n, ok := r.match(s[i:])
		if !ok {
			i++
			continue
		}
		if count == 0 {
			b.Grow(len(s))
		}
		b.WriteString(s[last:i])
		b.WriteString(name)
		count++
		i += n
		last = i
	}
	if count == 0 {
		return s, 0
	}
	b.WriteString(s[last:])
	return b.String(), count
}

func (r *Replacer) match(s string) (string, int, bool) {
	for _, n := range r.lengths {
		if n > len(s) {
			continue
		}
		if name, ok := r.names[s[:n]]; ok {
			return name, n, true
		}
	}
	return "", 0, false
}

// Stats summarises one file substitution.
type Stats struct {
	Keys     int
	GUIDs    int // keys that parse as GUIDs
	Replaced int
	BytesIn  int64
	BytesOut int64
	InPlace  bool
}

func (s Stats) String() string {
	return fmt.Sprintf("%d names known (%d GUIDs), %d replaced, %s read, %s written",
		s.Keys, s.GUIDs, s.Replaced, humanize.Bytes(uint64(s.BytesIn)), humanize.Bytes(uint64(s.BytesOut)))
}

// ReplaceFile rewrites the log at input into output (which may equal input)
// with every known GUID replaced. The output is written to a temporary file
// next to it and renamed into place.
func ReplaceFile(fs afero.Fs, input, output string, x *Xref) (Stats, error) {
	if output == "" {
		output = input
	}
	stats := Stats{Keys: x.Len(), GUIDs: x.GUIDs(), InPlace: filepath.Clean(input) == filepath.Clean(output)}

	data, err := afero.ReadFile(fs, input)
	if err != nil {
		return stats, fmt.Errorf("failed to read log %s: %w", input, err)
	}
	stats.BytesIn = int64(len(data))

	text, n := NewReplacer(x).Replace(string(data))
	stats.Replaced = n
	stats.BytesOut = int64(len(text))

	if err := writeAtomic(fs, output, []byte(text)); err != nil {
		return stats, err
	}
	return stats, nil
}

// writeAtomic replaces path with data. An existing file keeps its mode.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := fs.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := fs.Chmod(tmpName, mode); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
