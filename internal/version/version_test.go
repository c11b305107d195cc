package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	vcs := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-02-14T08:00:00Z"},
	}}

	tests := []struct {
		name    string
		version string
		commit  string
		bi      *debug.BuildInfo
		want    string
	}{
		{"ldflags win", "v0.3.0", "abc1234", vcs, "v0.3.0 (commit: abc1234)"},
		{"from vcs", "", "", vcs, "dev-20260214 (commit: 0123456-dirty)"},
		{"module version", "", "", &debug.BuildInfo{Main: debug.Module{Version: "v0.2.1"}}, "v0.2.1 (commit: unknown)"},
		{"nothing", "", "", nil, "dev-20260301-123000 (commit: unknown)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.bi, now).String()
			if got != tt.want {
				t.Errorf("resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFull(t *testing.T) {
	if !strings.Contains(Full(), "commit:") {
		t.Errorf("Full() = %q", Full())
	}
}
