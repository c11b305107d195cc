package efi

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// Default search locations.
const (
	DefaultBuildDir = "Build"
	DefaultDebugExt = "debug"
)

// Locator finds driver binaries and their debug files.
type Locator struct {
	fs       afero.Fs
	workDir  string
	buildDir string
	debugExt string
}

// NewLocator creates a Locator searching workDir first and then buildDir
// (relative to workDir unless absolute). Empty values select the defaults.
func NewLocator(fs afero.Fs, workDir, buildDir, debugExt string) *Locator {
	if workDir == "" {
		workDir = "."
	}
	if buildDir == "" {
		buildDir = DefaultBuildDir
	}
	if debugExt == "" {
		debugExt = DefaultDebugExt
	}
	return &Locator{
		fs:       fs,
		workDir:  workDir,
		buildDir: buildDir,
		debugExt: debugExt,
	}
}

// BuildDir returns the build directory path as configured.
func (l *Locator) BuildDir() string {
	return l.buildDir
}

// BuildDirExists reports whether the build directory is present.
func (l *Locator) BuildDirExists() bool {
	ok, err := afero.DirExists(l.fs, l.path(l.buildDir))
	return err == nil && ok
}

// Find returns the path of the binary named name. A regular file in the
// working directory always wins; otherwise the first file in the build tree
// whose directory chain contains a segment equal to the architecture token,
// searching a directory's files before its subdirectories.
func (l *Locator) Find(name string, arch Arch) (string, bool) {
	if p, ok := l.findInWorkDir(name); ok {
		return p, true
	}
	return l.findInBuildTree(name, arch)
}

func (l *Locator) findInWorkDir(name string) (string, bool) {
	entries, err := afero.ReadDir(l.fs, l.workDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.Name() == name && e.Mode().IsRegular() {
			return l.path(name), true
		}
	}
	return "", false
}

func (l *Locator) findInBuildTree(name string, arch Arch) (string, bool) {
	if !l.BuildDirExists() {
		return "", false
	}
	return l.search(l.path(l.buildDir), name, arch.String())
}

// search walks dir top-down: the files of a directory are checked before any
// of its subdirectories is entered, and subdirectories are visited in lexical
// order. Unreadable directories are skipped.
func (l *Locator) search(dir, name, token string) (string, bool) {
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() != name {
			continue
		}
		p := filepath.Join(dir, name)
		if slices.Contains(l.segments(p), token) {
			return p, true
		}
		break
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if p, ok := l.search(filepath.Join(dir, e.Name()), name, token); ok {
			return p, true
		}
	}
	return "", false
}

// DebugPath derives the debug file path from a binary path by replacing its
// last three characters with the debug extension.
func (l *Locator) DebugPath(binary string) string {
	if len(binary) < 3 {
		return binary + l.debugExt
	}
	return binary[:len(binary)-3] + l.debugExt
}

// Exists reports whether p, a path returned by Find or DebugPath, names a
// regular file.
func (l *Locator) Exists(p string) bool {
	info, err := l.fs.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// path resolves p against the working directory. Paths handed out by the
// Locator are already resolved.
func (l *Locator) path(p string) string {
	if filepath.IsAbs(p) || l.workDir == "." {
		return p
	}
	return filepath.Join(l.workDir, p)
}

// segments splits the directory part of p, relative to the working
// directory, into its path elements.
func (l *Locator) segments(p string) []string {
	dir := filepath.Dir(p)
	if l.workDir != "." {
		if rel, err := filepath.Rel(l.workDir, dir); err == nil {
			dir = rel
		}
	}
	return strings.Split(dir, string(filepath.Separator))
}
