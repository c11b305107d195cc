package efi

import (
	"context"
	"debug/pe"
	"fmt"

	"github.com/muurk/efidbg/internal/gdb"
	"github.com/spf13/afero"
)

// ImageInfo is the static layout of a driver image: section addresses as
// hex text relative to the image, and the image's file type token.
type ImageInfo struct {
	Text     string
	Data     string
	FileType string
}

// HasText reports whether the .text section address is known.
func (i ImageInfo) HasText() bool { return i.Text != "" }

// HasData reports whether the .data section address is known.
func (i ImageInfo) HasData() bool { return i.Data != "" }

// Introspector reads the layout of a driver binary.
type Introspector interface {
	Inspect(ctx context.Context, path string) (ImageInfo, error)
}

// GDBIntrospector asks gdb for the layout by loading the binary as the
// current executable and scraping "info files".
type GDBIntrospector struct {
	dbg    gdb.Debugger
	parser *gdb.Parser
}

// NewGDBIntrospector creates an introspector that drives dbg.
func NewGDBIntrospector(dbg gdb.Debugger) *GDBIntrospector {
	return &GDBIntrospector{dbg: dbg, parser: gdb.NewParser()}
}

// Inspect implements Introspector. The introspection target is always
// unloaded again before returning, whatever the outcome.
func (g *GDBIntrospector) Inspect(ctx context.Context, path string) (info ImageInfo, err error) {
	if _, err := g.dbg.Execute(ctx, gdb.File(path)); err != nil {
		return ImageInfo{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	defer func() {
		if _, uerr := g.dbg.Execute(ctx, gdb.File("")); uerr != nil && err == nil {
			err = fmt.Errorf("failed to unload %s: %w", path, uerr)
		}
	}()

	out, err := g.dbg.Execute(ctx, gdb.CmdInfoFiles)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	fi := g.parser.ParseInfoFiles(out)
	return ImageInfo{Text: fi.Text, Data: fi.Data, FileType: fi.FileType}, nil
}

// PEIntrospector reads the PE/COFF headers directly and reports what gdb
// would: section addresses are ImageBase + VirtualAddress and the file type
// follows the machine field.
type PEIntrospector struct {
	fs afero.Fs
}

// NewPEIntrospector creates an introspector reading images from fs.
func NewPEIntrospector(fs afero.Fs) *PEIntrospector {
	return &PEIntrospector{fs: fs}
}

// Inspect implements Introspector.
func (p *PEIntrospector) Inspect(_ context.Context, path string) (ImageInfo, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	img, err := pe.NewFile(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer img.Close()

	var imageBase uint64
	switch oh := img.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		imageBase = uint64(oh.ImageBase)
	case *pe.OptionalHeader64:
		imageBase = oh.ImageBase
	}

	info := ImageInfo{FileType: peFileType(img.Machine)}
	if s := img.Section(".text"); s != nil {
		info.Text = fmt.Sprintf("0x%08x", imageBase+uint64(s.VirtualAddress))
	}
	if s := img.Section(".data"); s != nil {
		info.Data = fmt.Sprintf("0x%08x", imageBase+uint64(s.VirtualAddress))
	}
	return info, nil
}

func peFileType(machine uint16) string {
	switch machine {
	case pe.IMAGE_FILE_MACHINE_I386:
		return IA32.FileType()
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return X64.FileType()
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return "pei-aarch64-little"
	default:
		return fmt.Sprintf("pei-unknown-%#04x", machine)
	}
}
