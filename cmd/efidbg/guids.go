package main

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/efidbg/internal/guid"
	"github.com/muurk/efidbg/internal/ui"
)

// replace-guids flags
var (
	guidXref      string
	guidXrefExtra string
	guidLogInput  string
	guidLogOutput string
)

// replaceGUIDsCmd implements the 'replace-guids' command
var replaceGUIDsCmd = &cobra.Command{
	Use:   "replace-guids",
	Short: "Replace GUIDs in a boot log with their names",
	Long: `Replace every GUID listed in a Guid.xref file with its name.

Guid.xref is written by the EDK2 build next to the firmware volumes
(Build/<Platform>/<Target>_<Toolchain>/FV/Guid.xref). Each line holds a
GUID and a name separated by a single space; other lines are ignored.
Entries of --guids-extra override those of --guids.

GUIDs are matched as uppercase text, the way the firmware prints them.
Without --log-output the log is rewritten in place.`,
	Example: `  # Annotate debug.log in place
  efidbg replace-guids -g Build/OvmfX64/DEBUG_GCC5/FV/Guid.xref -i debug.log

  # Add the names of a second build and write to a new file
  efidbg replace-guids -g Guid.xref -e ShellPkg/Guid.xref -i debug.log -o debug.named.log`,
	RunE: runReplaceGUIDs,
}

func init() {
	replaceGUIDsCmd.Flags().StringVarP(&guidXref, "guids", "g", "", "Guid.xref file (required unless guid_xref is configured)")
	replaceGUIDsCmd.Flags().StringVarP(&guidXrefExtra, "guids-extra", "e", "", "Second Guid.xref file, overrides --guids")
	replaceGUIDsCmd.Flags().StringVarP(&guidLogInput, "log-input", "i", "", "Log file to read (required)")
	replaceGUIDsCmd.Flags().StringVarP(&guidLogOutput, "log-output", "o", "", "Log file to write (default: --log-input)")
	_ = replaceGUIDsCmd.MarkFlagRequired("log-input")
}

func runReplaceGUIDs(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	xrefPath := firstNonEmpty(guidXref, cfg.GUIDXref)
	if xrefPath == "" {
		return errors.New(`required flag(s) "guids" not set`)
	}

	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	output := firstNonEmpty(guidLogOutput, guidLogInput)
	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Replace GUIDs", "efidbg replace-guids",
		ui.Param{Key: "Guid.xref", Value: xrefPath},
		ui.Param{Key: "Extra", Value: firstNonEmpty(guidXrefExtra, "(none)")},
		ui.Param{Key: "Input", Value: guidLogInput},
		ui.Param{Key: "Output", Value: output},
	)

	fsys := afero.NewOsFs()
	xref := guid.NewXref()
	for _, path := range []string{xrefPath, guidXrefExtra} {
		if path == "" {
			continue
		}
		n, err := xref.LoadFile(fsys, path)
		if err != nil {
			p.PrintError("Failed to read GUID cross reference", err, []string{
				"Build the platform first; Guid.xref is written to the FV directory",
			})
			return err
		}
		logger.Debug("loaded guid xref", zap.String("path", path), zap.Int("entries", n))
	}

	stats, err := guid.ReplaceFile(fsys, guidLogInput, output, xref)
	if err != nil {
		p.PrintError("Failed to rewrite log", err, nil)
		return err
	}

	p.PrintSuccess(fmt.Sprintf("%d GUIDs replaced", stats.Replaced),
		ui.Detail{Key: "Summary", Value: stats.String()},
		ui.Detail{Key: "Written", Value: output},
	)
	return nil
}
