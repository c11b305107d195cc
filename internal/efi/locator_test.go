package efi

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0o755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("MZ"), 0o644))
	}
	return fs
}

func TestLocator_FindInBuildTree(t *testing.T) {
	fs := newTree(t,
		"/work/Build/OvmfX64/DEBUG_GCC5/X64/DriverA.efi",
		"/work/Build/OvmfIa32/DEBUG_GCC5/IA32/DriverA.efi",
		"/work/Build/IA32Tools/DriverB.efi",
	)
	l := NewLocator(fs, "/work", "", "")

	p, ok := l.Find("DriverA.efi", IA32)
	require.True(t, ok)
	require.Equal(t, "/work/Build/OvmfIa32/DEBUG_GCC5/IA32/DriverA.efi", p)

	p, ok = l.Find("DriverA.efi", X64)
	require.True(t, ok)
	require.Equal(t, "/work/Build/OvmfX64/DEBUG_GCC5/X64/DriverA.efi", p)

	// The arch token has to be a whole path segment.
	_, ok = l.Find("DriverB.efi", IA32)
	require.False(t, ok)
}

func TestLocator_FilesBeforeSubdirectories(t *testing.T) {
	fs := newTree(t,
		"/work/Build/OvmfIa32/DEBUG_GCC5/IA32/MdeModulePkg/Universal/PCD/Pei/Pcd/OUTPUT/PcdPeim.efi",
		"/work/Build/OvmfIa32/DEBUG_GCC5/IA32/PcdPeim.efi",
		"/work/Build/OvmfIa32/DEBUG_GCC5/IA32/A/DriverA.efi",
		"/work/Build/OvmfIa32/DEBUG_GCC5/IA32/B/DriverA.efi",
	)
	l := NewLocator(fs, "/work", "", "")

	p, ok := l.Find("PcdPeim.efi", IA32)
	require.True(t, ok)
	require.Equal(t, "/work/Build/OvmfIa32/DEBUG_GCC5/IA32/PcdPeim.efi", p)

	p, ok = l.Find("DriverA.efi", IA32)
	require.True(t, ok)
	require.Equal(t, "/work/Build/OvmfIa32/DEBUG_GCC5/IA32/A/DriverA.efi", p)
}

func TestLocator_WorkDirWins(t *testing.T) {
	fs := newTree(t,
		"/work/DriverA.efi",
		"/work/Build/OvmfIa32/DEBUG_GCC5/IA32/DriverA.efi",
	)
	l := NewLocator(fs, "/work", "Build", "debug")

	p, ok := l.Find("DriverA.efi", IA32)
	require.True(t, ok)
	require.Equal(t, "/work/DriverA.efi", p)
}

func TestLocator_WorkDirIsNotRecursive(t *testing.T) {
	fs := newTree(t, "/work/sub/DriverA.efi")
	l := NewLocator(fs, "/work", "", "")

	_, ok := l.Find("DriverA.efi", IA32)
	require.False(t, ok)
}

func TestLocator_WorkDirSkipsDirectories(t *testing.T) {
	fs := newTree(t, "/work/Build/OvmfIa32/IA32/DriverA.efi")
	require.NoError(t, fs.MkdirAll("/work/DriverA.efi", 0o755))
	l := NewLocator(fs, "/work", "", "")

	p, ok := l.Find("DriverA.efi", IA32)
	require.True(t, ok)
	require.Equal(t, "/work/Build/OvmfIa32/IA32/DriverA.efi", p)
}

func TestLocator_MissingBuildDir(t *testing.T) {
	l := NewLocator(newTree(t), "/work", "", "")

	require.False(t, l.BuildDirExists())
	_, ok := l.Find("DriverA.efi", IA32)
	require.False(t, ok)
}

func TestLocator_DebugPath(t *testing.T) {
	l := NewLocator(afero.NewMemMapFs(), "", "", "")

	require.Equal(t, "Build/IA32/DriverA.debug", l.DebugPath("Build/IA32/DriverA.efi"))
	require.Equal(t, "ab.debug", l.DebugPath("ab.efi"))

	custom := NewLocator(afero.NewMemMapFs(), "", "", "pdb")
	require.Equal(t, "DriverA.pdb", custom.DebugPath("DriverA.efi"))
}

func TestLocator_Exists(t *testing.T) {
	fs := newTree(t, "/work/DriverA.debug")
	l := NewLocator(fs, "/work", "", "")

	require.True(t, l.Exists("/work/DriverA.debug"))
	require.False(t, l.Exists("/work/DriverB.debug"))
	require.False(t, l.Exists("/work"))
}
