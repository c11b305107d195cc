// Package version reports the efidbg build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// Set at build time, e.g.:
//
//	go build -ldflags="-X github.com/muurk/efidbg/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/efidbg/internal/version.Commit=abc1234"
//
// When left empty they are derived from the VCS stamp in the build info.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	Dirty     bool
	GoVersion string
	Platform  string
}

var get = sync.OnceValue(func() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(Version, Commit, bi, time.Now())
})

// Get returns the version information of this build.
func Get() Info {
	return get()
}

// resolve fills the gaps left by ldflags from build info. now is used for
// the last-resort dev version.
func resolve(version, commit string, bi *debug.BuildInfo, now time.Time) Info {
	info := Info{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi != nil {
		var revision, modified, vcsTime string
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				modified = s.Value
			case "vcs.time":
				vcsTime = s.Value
			}
		}

		if info.Commit == "" && revision != "" {
			info.Commit = revision[:min(7, len(revision))]
			info.Dirty = modified == "true"
		}
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		if info.Version == "" && vcsTime != "" {
			if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
				info.Version = "dev-" + t.Format("20060102")
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev-" + now.Format("20060102-150405")
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	return info
}

// String returns "<version> (commit: <commit>)".
func (i Info) String() string {
	commit := i.Commit
	if i.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit: %s)", i.Version, commit)
}

// Full returns the version line printed by "efidbg version".
func Full() string {
	i := Get()
	return fmt.Sprintf("%s, %s %s", i, i.GoVersion, i.Platform)
}
