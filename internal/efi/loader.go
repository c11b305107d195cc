package efi

import (
	"context"
	"fmt"
	"io"

	"github.com/muurk/efidbg/internal/gdb"
	"go.uber.org/zap"
)

// SymbolLoader registers resolved debug files with the debugger.
type SymbolLoader struct {
	dbg    gdb.Debugger
	out    io.Writer
	logger *zap.Logger
}

// NewSymbolLoader creates a SymbolLoader issuing commands to dbg.
func NewSymbolLoader(dbg gdb.Debugger, out io.Writer, logger *zap.Logger) *SymbolLoader {
	return &SymbolLoader{dbg: dbg, out: out, logger: logger}
}

// Load issues one add-symbol-file per module, in order, and returns how many
// were registered.
func (l *SymbolLoader) Load(ctx context.Context, modules []ResolvedModule) (int, error) {
	if len(modules) == 0 {
		fmt.Fprintln(l.out, "No symbols loaded")
		return 0, nil
	}

	for i, m := range modules {
		if _, err := l.dbg.Execute(ctx, gdb.AddSymbolFile(m.DebugPath, m.Text, m.Data)); err != nil {
			return i, fmt.Errorf("failed to add symbols for %s: %w", m.Module, err)
		}
		l.logger.Debug("symbols added",
			zap.String("module", m.Module),
			zap.String("debug", m.DebugPath),
			zap.Uint64("text", m.Text),
			zap.Uint64("data", m.Data))
	}
	return len(modules), nil
}
