package efi

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const bootLog = `SecCoreStartupWithStack(0xFFFCC000, 0x820000)
Loading PEIM at 0x00000820120 EntryPoint=0x00000820360 PcdPeim.efi
Loading driver at 0x00007E9B000 EntryPoint=0x00007E9C245 DevicePathDxe.efi
InstallProtocolInterface: 09576E91-6D3F-11D2-8E39-00A0C969723B 7E9B1A0
Loading driver at 0x00007E91000 EntryPoint=0x00007E92EE4 HiiDatabase.efi
`

func collect(t *testing.T, s *Scanner, log string) []LoadRecord {
	t.Helper()
	var out []LoadRecord
	for rec := range s.Records(strings.NewReader(log)) {
		out = append(out, rec)
	}
	require.NoError(t, s.Err())
	return out
}

func TestScanner_Records(t *testing.T) {
	s, err := NewScanner("", nil)
	require.NoError(t, err)

	got := collect(t, s, bootLog)
	want := []LoadRecord{
		{BaseAddress: "0x00000820120", Module: "PcdPeim.efi"},
		{BaseAddress: "0x00007E9B000", Module: "DevicePathDxe.efi"},
		{BaseAddress: "0x00007E91000", Module: "HiiDatabase.efi"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_SuffixAppearsOnce(t *testing.T) {
	s, err := NewScanner("", nil)
	require.NoError(t, err)

	for _, rec := range collect(t, s, bootLog) {
		require.Equal(t, 1, strings.Count(rec.Module, ".efi"), rec.Module)
		require.True(t, strings.HasSuffix(rec.Module, ".efi"), rec.Module)
	}
}

func TestScanner_AllowList(t *testing.T) {
	tests := []struct {
		name  string
		allow []string
		want  []string
	}{
		{"empty accepts all", nil, []string{"PcdPeim.efi", "DevicePathDxe.efi", "HiiDatabase.efi"}},
		{"bare name", []string{"HiiDatabase"}, []string{"HiiDatabase.efi"}},
		{"with suffix", []string{"PcdPeim.efi"}, []string{"PcdPeim.efi"}},
		{"mixed", []string{"PcdPeim", "DevicePathDxe.efi"}, []string{"PcdPeim.efi", "DevicePathDxe.efi"}},
		{"unknown", []string{"Shell"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScanner(DefaultPattern, tt.allow)
			require.NoError(t, err)

			var got []string
			for _, rec := range collect(t, s, bootLog) {
				got = append(got, rec.Module)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestScanner_InvalidUTF8Dropped(t *testing.T) {
	log := "junk \xff\xfe bytes\nLoading driver at 0x00500000 FvName Dri\xffverA.efi\n"

	s, err := NewScanner("", nil)
	require.NoError(t, err)

	got := collect(t, s, log)
	require.Equal(t, []LoadRecord{{BaseAddress: "0x00500000", Module: "DriverA.efi"}}, got)
}

func TestScanner_NoDedupe(t *testing.T) {
	log := "Loading driver at 0x00500000 FvName DriverA.efi\nLoading driver at 0x00600000 FvName DriverA.efi\n"

	s, err := NewScanner("", nil)
	require.NoError(t, err)
	require.Len(t, collect(t, s, log), 2)
}

func TestScanner_StopsEarly(t *testing.T) {
	s, err := NewScanner("", nil)
	require.NoError(t, err)

	n := 0
	for range s.Records(strings.NewReader(bootLog)) {
		n++
		break
	}
	require.Equal(t, 1, n)
}

func TestNewScanner_PatternErrors(t *testing.T) {
	_, err := NewScanner(`Loading (`, nil)
	var perr *PatternError
	require.True(t, errors.As(err, &perr))
	require.Error(t, perr.Unwrap())

	_, err = NewScanner(`Loading at (0x[0-9A-F]+)`, nil)
	require.True(t, errors.As(err, &perr))
	require.Contains(t, perr.Error(), "two groups")
}

func TestScanFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := "Loading driver at 0x00500000 FvName DriverA.efi\n" +
		"Loading driver at 0x00700000 FvName DriverB.efi\n" +
		"Loading driver at 0x00600000 FvName DriverA.efi\n"
	require.NoError(t, afero.WriteFile(fs, "/work/debug.log", []byte(log), 0o644))

	s, err := NewScanner("", nil)
	require.NoError(t, err)

	table, err := ScanFile(fs, "/work/debug.log", s)
	require.NoError(t, err)

	want := []LoadRecord{
		{BaseAddress: "0x00600000", Module: "DriverA.efi"},
		{BaseAddress: "0x00700000", Module: "DriverB.efi"},
	}
	if diff := cmp.Diff(want, table.Records()); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestScanFile_MissingLog(t *testing.T) {
	s, err := NewScanner("", nil)
	require.NoError(t, err)

	_, err = ScanFile(afero.NewMemMapFs(), "/nowhere/debug.log", s)
	var lerr *LogFileError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, "/nowhere/debug.log", lerr.Path)
}
