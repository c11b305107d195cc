package efi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Resolver turns a LoadRecord into a ResolvedModule: it locates the binary
// and its debug file, reads the image layout and computes absolute section
// addresses. Progress is printed to out as plain lines.
type Resolver struct {
	locator      *Locator
	introspector Introspector
	arch         Arch
	out          io.Writer
	logger       *zap.Logger
}

// NewResolver creates a Resolver for arch.
func NewResolver(locator *Locator, introspector Introspector, arch Arch, out io.Writer, logger *zap.Logger) *Resolver {
	return &Resolver{
		locator:      locator,
		introspector: introspector,
		arch:         arch,
		out:          out,
		logger:       logger,
	}
}

// Resolve resolves one driver. Errors for which IsSkip is true only affect
// this driver; any other error comes from the debugger and ends the run.
func (r *Resolver) Resolve(ctx context.Context, rec LoadRecord) (ResolvedModule, error) {
	binary, ok := r.locator.Find(rec.Module, r.arch)
	if !ok {
		fmt.Fprintf(r.out, "File %s not found\n", rec.Module)
		return ResolvedModule{}, &NotFoundError{Module: rec.Module, Kind: "binary"}
	}

	debug := r.locator.DebugPath(binary)
	if !r.locator.Exists(debug) {
		fmt.Fprintf(r.out, "No debug file for %s\n", binary)
		return ResolvedModule{}, &NotFoundError{Module: rec.Module, Kind: "debug", Path: debug}
	}

	fmt.Fprintf(r.out, "EFI file %s\n", binary)

	info, err := r.introspector.Inspect(ctx, binary)
	if err != nil {
		return ResolvedModule{}, err
	}
	r.logger.Debug("image layout",
		zap.String("binary", binary),
		zap.String("text", info.Text),
		zap.String("data", info.Data),
		zap.String("file_type", info.FileType))

	if info.FileType != r.arch.FileType() {
		mismatch := &ArchMismatchError{Path: binary, FileType: info.FileType, Expected: r.arch}
		fileType := info.FileType
		if fileType == "" {
			fileType = "None"
		}
		fmt.Fprintf(r.out, "Bad file architecture %s\n", fileType)
		return ResolvedModule{}, mismatch
	}

	text, data, err := r.addresses(rec.BaseAddress, info)
	if err != nil {
		return ResolvedModule{}, err
	}

	return ResolvedModule{
		Module:      rec.Module,
		BinaryPath:  binary,
		DebugPath:   debug,
		BaseAddress: rec.BaseAddress,
		Text:        text,
		Data:        data,
	}, nil
}

func (r *Resolver) addresses(base string, info ImageInfo) (uint64, uint64, error) {
	fmt.Fprintf(r.out, " Base address %s\n", base)
	if _, err := ParseHex(base); err != nil {
		fmt.Fprintln(r.out, "Failed to locate base address")
		return 0, 0, &AddressError{Field: "base", Value: base, Err: err}
	}

	fmt.Fprintf(r.out, ".text address %s\n", info.Text)
	fmt.Fprintf(r.out, ".data address %s\n", info.Data)
	if !info.HasText() || !info.HasData() {
		fmt.Fprintln(r.out, "Failed to locate sections' addresses")
		field := "text"
		if info.HasText() {
			field = "data"
		}
		return 0, 0, &AddressError{Field: field, Err: errEmptyAddress}
	}

	text, data, err := ComputeAddresses(base, info.Text, info.Data)
	if err != nil {
		fmt.Fprintln(r.out, "Failed to locate sections' addresses")
		return 0, 0, err
	}
	return text, data, nil
}

// IsSkip reports whether err only disqualifies a single driver.
func IsSkip(err error) bool {
	var (
		notFound *NotFoundError
		mismatch *ArchMismatchError
		addr     *AddressError
	)
	return errors.As(err, &notFound) || errors.As(err, &mismatch) || errors.As(err, &addr)
}
