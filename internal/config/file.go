package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "efidbg"
	configFile = "config.yaml"

	// LocalFile is the per-tree configuration file looked up in the
	// working directory.
	LocalFile = ".efidbg.yaml"
)

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/efidbg or $HOME/.config/efidbg
//   - macOS: $HOME/.config/efidbg
//   - Windows: %LOCALAPPDATA%\efidbg
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path of the user configuration file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Candidates returns the files Load looks at, in order.
func Candidates(workDir string) []string {
	paths := []string{filepath.Join(workDir, LocalFile)}
	if p, err := GetConfigPath(); err == nil {
		paths = append(paths, p)
	}
	return paths
}

// Load reads the first existing configuration file among Candidates(workDir)
// and returns it together with its path. Without any file the defaults are
// returned and the path is empty.
func Load(fsys afero.Fs, workDir string) (*Config, string, error) {
	for _, path := range Candidates(workDir) {
		cfg, err := LoadFile(fsys, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// LoadFile reads a single configuration file. Missing fields take their
// default values.
func LoadFile(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.applyDefaults()

	if cfg.Version != Version {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", cfg.Version, Version)
	}
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename).
func (c *Config) Save(fsys afero.Fs, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeFile(fsys, path, data)
}

// defaultTemplate is the annotated file written by WriteDefault.
var defaultTemplate = template.Must(template.New("config").Parse(`# efidbg configuration
version: {{.Version}}

# Boot log captured from OVMF, e.g. qemu ... -debugcon file:debug.log -global isa-debugcon.iobase=0x402
log_file: {{.LogFile}}

# EDK2 build output searched for drivers not found in the working directory
build_dir: {{.BuildDir}}

# Extension of the debug file that sits next to every .efi
debug_ext: {{.DebugExt}}

# Custom load-line pattern (two groups: base address, driver name without .efi)
# pattern: 'Loading [^ ]+ at (0x[0-9A-F]{8,}) [^ ]+ ([^ ]+)\.efi'

# Default architecture: IA32 or X64
arch: {{.Arch}}

# Section addresses come from gdb ("gdb") or from the PE headers ("pe")
introspect: {{.Introspect}}

# gdb script written after every load-symbols run
script_out: {{.ScriptOut}}

# QEMU gdb stub (qemu -s listens on :1234)
remote_host: "{{.RemoteHost}}"
remote_port: {{.RemotePort}}

# Guid.xref used by replace-guids when -g is not given
# guid_xref: Build/OvmfX64/DEBUG_GCC5/FV/Guid.xref

gdb_path: {{.GDBPath}}
command_timeout: {{.CommandTimeout}}
`))

// WriteDefault writes an annotated default configuration to path. An
// existing file is left alone unless force is set.
func WriteDefault(fsys afero.Fs, path string, force bool) error {
	if !force {
		if ok, _ := afero.Exists(fsys, path); ok {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	var buf bytes.Buffer
	if err := defaultTemplate.Execute(&buf, Default()); err != nil {
		return fmt.Errorf("failed to render default config: %w", err)
	}
	return writeFile(fsys, path, buf.Bytes())
}

func writeFile(fsys afero.Fs, path string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(fsys, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		fsys.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
