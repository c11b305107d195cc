package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with config.yaml, got %v", path)
	}
	if !strings.Contains(path, "efidbg") {
		t.Errorf("GetConfigPath() = %v, should contain efidbg", path)
	}
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	cfg, path, err := Load(afero.NewMemMapFs(), "/work")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("Load() path = %q, want empty", path)
	}
	if cfg.LogFile != "debug.log" || cfg.RemotePort != 1234 || cfg.BuildDir != "Build" {
		t.Errorf("Load() did not return defaults: %+v", cfg)
	}
}

func TestLoad_LocalBeatsUser(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honoured on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	fs := afero.NewMemMapFs()

	if err := afero.WriteFile(fs, "/xdg/efidbg/config.yaml", []byte("version: 1\nlog_file: user.log\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Load(fs, "/work")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogFile != "user.log" {
		t.Errorf("LogFile = %q, want user.log", cfg.LogFile)
	}
	if path != "/xdg/efidbg/config.yaml" {
		t.Errorf("path = %q", path)
	}

	if err := afero.WriteFile(fs, "/work/.efidbg.yaml", []byte("log_file: local.log\nremote_port: 4321\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err = Load(fs, "/work")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogFile != "local.log" || cfg.RemotePort != 4321 {
		t.Errorf("local config not applied: %+v", cfg)
	}
	if cfg.GDBPath != "gdb" {
		t.Errorf("GDBPath = %q, want default gdb", cfg.GDBPath)
	}
	if path != "/work/.efidbg.yaml" {
		t.Errorf("path = %q", path)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "log_file: [unterminated\n"},
		{"future version", "version: 7\n"},
		{"bad duration", "command_timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := afero.WriteFile(fs, "/c.yaml", []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(fs, "/c.yaml"); err == nil {
				t.Error("LoadFile() expected error")
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg := Default()
	cfg.Arch = "X64"
	cfg.CommandTimeout = 45 * time.Second
	cfg.Pattern = `Image (\S+) (\S+)\.efi`

	if err := cfg.Save(fs, "/home/u/.config/efidbg/config.yaml"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := LoadFile(fs, "/home/u/.config/efidbg/config.yaml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}

	if ok, _ := afero.Exists(fs, "/home/u/.config/efidbg/config.yaml.tmp"); ok {
		t.Error("temp file left behind")
	}
}

func TestWriteDefault(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteDefault(fs, "/work/.efidbg.yaml", false); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	got, err := LoadFile(fs, "/work/.efidbg.yaml")
	if err != nil {
		t.Fatalf("default file does not load: %v", err)
	}
	if *got != *Default() {
		t.Errorf("default file = %+v, want %+v", got, Default())
	}

	if err := WriteDefault(fs, "/work/.efidbg.yaml", false); err == nil {
		t.Error("WriteDefault() should refuse to overwrite")
	}
	if err := WriteDefault(fs, "/work/.efidbg.yaml", true); err != nil {
		t.Errorf("WriteDefault(force) error = %v", err)
	}
}
