// Package efi loads the debug symbols of EDK2 drivers into gdb.
//
// OVMF prints a line for every driver image it loads:
//
//	Loading driver at 0x0007E9A0000 EntryPoint=0x0007E9A1240 DriverA.efi
//	Loading PEIM at 0x00000820000 EntryPoint=0x00000820240 PcdPeim.efi
//
// The Session reads those lines from the boot log, finds each driver's .efi
// and .debug files in the working directory or the EDK2 Build tree, asks gdb
// for the .text/.data section addresses of the image and registers the
// .debug file at base+section with add-symbol-file.
//
// Problems with a single driver (file missing, wrong architecture, unparsable
// address) skip that driver and are collected in the Report. Only an
// unreadable boot log or a failing debugger aborts the run.
package efi
