package efi

import (
	"errors"
	"strconv"
	"strings"
)

var errEmptyAddress = errors.New("empty address")

// ParseHex parses a hexadecimal address with an optional 0x prefix.
func ParseHex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return 0, errEmptyAddress
	}
	return strconv.ParseUint(s, 16, 64)
}

// ComputeAddresses returns the absolute .text and .data addresses of an image
// loaded at base. All inputs are hex text as found in the log and in gdb
// output.
func ComputeAddresses(base, text, data string) (uint64, uint64, error) {
	b, err := ParseHex(base)
	if err != nil {
		return 0, 0, &AddressError{Field: "base", Value: base, Err: err}
	}
	t, err := ParseHex(text)
	if err != nil {
		return 0, 0, &AddressError{Field: "text", Value: text, Err: err}
	}
	d, err := ParseHex(data)
	if err != nil {
		return 0, 0, &AddressError{Field: "data", Value: data, Err: err}
	}
	return b + t, b + d, nil
}
