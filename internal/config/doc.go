// Package config provides user preferences for apdefaults.
//
// Preferences live in a small YAML file following OS-specific conventions
// for its location:
//   - Linux: $XDG_CONFIG_HOME/apdefaults/config.yaml or $HOME/.config/apdefaults/config.yaml
//   - macOS: $HOME/.config/apdefaults/config.yaml
//   - Windows: %LOCALAPPDATA%\apdefaults\config.yaml
//
// The APDEFAULTS_CONFIG environment variable, or the --config flag, points
// at a different file. A missing file is not an error; defaults apply.
//
// # File Format
//
//	version: 1
//	confirm_overwrite: true   # ask before rewriting an input file in place
//	backup: false             # keep <file>.bak when rewriting in place
//	log_level: ""             # debug, info, warn or error
//
// # Usage Example
//
//	prefs, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if prefs.Backup {
//	    ...
//	}
package config
