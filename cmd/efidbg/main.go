// Efidbg loads UEFI driver symbols into gdb and annotates OVMF boot logs.
//
// A firmware built with EDK2 and run under QEMU prints one line per driver it
// loads to its debug console:
//
//	Loading driver at 0x00006A3C000 EntryPoint=0x00006A3D2F0 PcdDxe.efi
//
// efidbg reads those lines, finds each driver's .efi and .debug file in the
// build tree, computes where its .text and .data sections ended up and
// registers the symbols with gdb at those addresses.
//
// Prerequisites:
//
//   - gdb installed and in PATH (or --gdb-path)
//   - an EDK2 Build directory and the debug.log of the run being debugged
//   - QEMU started with -s for the remote connection (optional)
//
// See 'efidbg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/efidbg/internal/logging"
	"github.com/muurk/efidbg/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "efidbg",
	Short: "UEFI driver symbol loader and boot log helper",
	Long: `Debugging helpers for OVMF firmware running under QEMU.

  - load-symbols:  register driver symbols with gdb at their load addresses
  - replace-guids: replace GUIDs in a boot log with names from Guid.xref
  - verify-setup:  check gdb and the QEMU gdb stub
  - init-config:   write a commented configuration file

Run from the EDK2 workspace so that debug.log and the Build directory are
found. Defaults can be set in .efidbg.yaml (see 'efidbg init-config').`,
	Version: version.Get().Version,
	Example: `  # Load symbols of every IA32 driver in debug.log and write efi.gdb
  efidbg load-symbols

  # X64 drivers, connect to QEMU afterwards, same tokens as the gdb command
  efidbg load-symbols -- -64 -r

  # Only two drivers
  efidbg load-symbols --module PcdDxe --module DxeCore.efi

  # Annotate a boot log in place
  efidbg replace-guids -g Build/OvmfX64/DEBUG_GCC5/FV/Guid.xref -i debug.log`,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}
