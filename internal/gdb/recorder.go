package gdb

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

//go:embed templates/session.gdb.tmpl
var sessionTemplate string

// ScriptInfo carries the header fields of a rendered session script.
type ScriptInfo struct {
	Version    string
	LogFile    string
	Arch       string
	ScriptPath string
	Generated  time.Time
}

// Recorder is a Debugger that forwards to an inner Debugger and remembers
// every successful state-changing command, so that the resulting session can
// be replayed from a gdb script.
//
// A nil inner Debugger makes the Recorder offline: every command succeeds with
// empty output and is only recorded. Commands matching a RecordOnly prefix
// behave the same way with a live inner Debugger.
type Recorder struct {
	inner      Debugger
	logger     *zap.Logger
	commands   []string
	recordOnly []string
}

// NewRecorder creates a Recorder around inner (which may be nil).
func NewRecorder(inner Debugger, logger *zap.Logger) *Recorder {
	return &Recorder{
		inner:  inner,
		logger: logger,
	}
}

// RecordOnly keeps commands starting with any of prefixes out of the inner
// Debugger. They are still recorded, so they run when the script is sourced.
func (r *Recorder) RecordOnly(prefixes ...string) {
	r.recordOnly = append(r.recordOnly, prefixes...)
}

func (r *Recorder) forwards(command string) bool {
	if r.inner == nil {
		return false
	}
	for _, p := range r.recordOnly {
		if strings.HasPrefix(command, p) {
			return false
		}
	}
	return true
}

// Execute implements Debugger.
func (r *Recorder) Execute(ctx context.Context, command string) (string, error) {
	var out string
	if r.forwards(command) {
		var err error
		out, err = r.inner.Execute(ctx, command)
		if err != nil {
			return out, err
		}
	}

	if Replayable(command) {
		r.commands = append(r.commands, command)
		r.logger.Debug("recorded gdb command", zap.String("command", command))
	}
	return out, nil
}

// Commands returns the recorded commands in issue order.
func (r *Recorder) Commands() []string {
	out := make([]string, len(r.commands))
	copy(out, r.commands)
	return out
}

// Render renders the recorded commands as a gdb script.
func (r *Recorder) Render(info ScriptInfo) (string, error) {
	tmpl, err := template.New("session").Parse(sessionTemplate)
	if err != nil {
		return "", &TemplateError{Template: "session", Err: err}
	}

	if info.Generated.IsZero() {
		info.Generated = time.Now()
	}

	params := map[string]interface{}{
		"Version":    info.Version,
		"LogFile":    info.LogFile,
		"Arch":       info.Arch,
		"ScriptPath": info.ScriptPath,
		"Generated":  info.Generated.Format(time.RFC3339),
		"Commands":   r.commands,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", &TemplateError{Template: "session", Err: err}
	}
	return buf.String(), nil
}

// WriteScript renders the script and writes it to info.ScriptPath.
// The file is written to a temporary sibling first and renamed into place.
func (r *Recorder) WriteScript(fs afero.Fs, info ScriptInfo) error {
	content, err := r.Render(info)
	if err != nil {
		return err
	}

	tmpPath := filepath.Join(filepath.Dir(info.ScriptPath), "."+filepath.Base(info.ScriptPath)+".tmp")
	if err := afero.WriteFile(fs, tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write temporary script file: %w", err)
	}

	if err := fs.Rename(tmpPath, info.ScriptPath); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to save script file: %w", err)
	}

	r.logger.Info("wrote gdb session script",
		zap.String("path", info.ScriptPath),
		zap.Int("commands", len(r.commands)),
	)
	return nil
}
