package config

import "time"

// Version is the current configuration schema version.
const Version = 1

// Config holds the defaults for every efidbg command.
type Config struct {
	Version int `yaml:"version"`

	// Symbol loading
	LogFile    string `yaml:"log_file"`    // Boot log written by OVMF (-debugcon file:debug.log)
	BuildDir   string `yaml:"build_dir"`   // EDK2 build output tree
	DebugExt   string `yaml:"debug_ext"`   // Extension of the debug file next to each .efi
	Pattern    string `yaml:"pattern"`     // Load-line pattern, two groups: address and driver name
	Arch       string `yaml:"arch"`        // IA32 or X64
	Introspect string `yaml:"introspect"`  // gdb or pe
	ScriptOut  string `yaml:"script_out"`  // Replay script written after each run
	RemoteHost string `yaml:"remote_host"` // Empty means localhost
	RemotePort int    `yaml:"remote_port"` // QEMU gdb stub port
	GUIDXref   string `yaml:"guid_xref"`   // Default Guid.xref for replace-guids

	// gdb process
	GDBPath        string        `yaml:"gdb_path"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:        Version,
		LogFile:        "debug.log",
		BuildDir:       "Build",
		DebugExt:       "debug",
		Arch:           "IA32",
		Introspect:     "gdb",
		ScriptOut:      "efi.gdb",
		RemotePort:     1234,
		GDBPath:        "gdb",
		CommandTimeout: 30 * time.Second,
	}
}

// applyDefaults fills zero fields from Default.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Version == 0 {
		c.Version = d.Version
	}
	if c.LogFile == "" {
		c.LogFile = d.LogFile
	}
	if c.BuildDir == "" {
		c.BuildDir = d.BuildDir
	}
	if c.DebugExt == "" {
		c.DebugExt = d.DebugExt
	}
	if c.Arch == "" {
		c.Arch = d.Arch
	}
	if c.Introspect == "" {
		c.Introspect = d.Introspect
	}
	if c.ScriptOut == "" {
		c.ScriptOut = d.ScriptOut
	}
	if c.RemotePort == 0 {
		c.RemotePort = d.RemotePort
	}
	if c.GDBPath == "" {
		c.GDBPath = d.GDBPath
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = d.CommandTimeout
	}
}
