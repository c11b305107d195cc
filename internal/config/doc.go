// Package config loads the efidbg configuration file.
//
// Every setting has a built-in default, so the file is optional. When present
// it is read from the first of:
//
//   - .efidbg.yaml in the working directory (per firmware tree)
//   - $XDG_CONFIG_HOME/efidbg/config.yaml or $HOME/.config/efidbg/config.yaml
//   - %LOCALAPPDATA%\efidbg\config.yaml on Windows
//
// Command-line flags override values from the file.
//
// # Usage Example
//
//	cfg, path, err := config.Load(afero.NewOsFs(), ".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("boot log:", cfg.LogFile, "from", path)
//
// An annotated default file can be written with WriteDefault.
package config
