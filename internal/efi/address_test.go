package efi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0x00400000", 0x400000, false},
		{"0X1f", 0x1f, false},
		{"deadBEEF", 0xdeadbeef, false},
		{"0x", 0, true},
		{"", 0, true},
		{"not_hex", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestComputeAddresses(t *testing.T) {
	text, data, err := ComputeAddresses("0x00400000", "0x00001000", "0x00002000")
	require.NoError(t, err)
	require.Equal(t, uint64(0x00401000), text)
	require.Equal(t, uint64(0x00402000), data)
}

func TestComputeAddresses_Errors(t *testing.T) {
	tests := []struct {
		name             string
		base, text, data string
		wantField        string
	}{
		{"bad base", "not_hex", "0x1000", "0x2000", "base"},
		{"bad text", "0x400000", "zz", "0x2000", "text"},
		{"missing data", "0x400000", "0x1000", "", "data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ComputeAddresses(tt.base, tt.text, tt.data)
			var aerr *AddressError
			require.ErrorAs(t, err, &aerr)
			require.Equal(t, tt.wantField, aerr.Field)
		})
	}
}
