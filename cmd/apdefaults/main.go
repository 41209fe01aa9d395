// Apdefaults reads and replaces the parameter defaults embedded in
// ArduPilot firmware files.
//
// Firmware built with embedded defaults support reserves a fixed-size
// region, marked by a "PARMDEF" header, that the autopilot reads at boot.
// apdefaults finds that region in plain binary, abin and apj firmware files
// and rewrites it without rebuilding the firmware.
//
// Usage:
//
//	apdefaults <firmware> [--show] [--set-file FILE]
//	apdefaults [command] [flags]
//
// See 'apdefaults --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/apdefaults/internal/config"
	"github.com/muurk/apdefaults/internal/logging"
	"github.com/muurk/apdefaults/internal/urls"
	"github.com/muurk/apdefaults/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		var r *reportedError
		if !errors.As(err, &r) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	formatName string
)

// Compatibility flags on the root command
var (
	compatShow    bool
	compatSetFile string
)

// prefs holds the user preferences loaded before any command runs
var prefs = config.NewPreferences()

var rootCmd = &cobra.Command{
	Use:   "apdefaults [firmware]",
	Short: "Embedded parameter defaults tool for ArduPilot firmware",
	Long: `Read and replace the parameter defaults embedded in ArduPilot firmware.

Supports plain binary images, .abin files and .apj/.px4 files. The
firmware must have been built with embedded defaults support, which
reserves a fixed amount of space for the defaults text.

Given a firmware file and no command, apdefaults reports the defaults
region and optionally shows (--show) or replaces (--set-file) it, with
the same output as ArduPilot's apj_tool.py:
  ` + urls.ApjTool,
	Example: `  # Report the defaults region
  apdefaults arducopter.apj

  # Print the current defaults
  apdefaults arducopter.apj --show

  # Replace the defaults in place
  apdefaults arducopter.apj --set-file defaults.parm`,
	Version:           version.Version,
	Args:              cobra.MaximumNArgs(1),
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runCompat,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Preferences file (default: $"+config.ConfigEnvVar+" or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "", "Firmware format: binary, abin, apj (default: from file extension)")

	rootCmd.Flags().BoolVar(&compatShow, "show", false, "Print the current defaults")
	rootCmd.Flags().StringVar(&compatSetFile, "set-file", "", "Replace the defaults with the contents of `FILE` and save in place")

	rootCmd.AddCommand(versionCmd)
}

// setup loads preferences and initializes logging. The log level comes from
// --log-level, then the environment, then the preferences file.
func setup(cmd *cobra.Command, args []string) error {
	p, err := config.Load(configPath)
	if err != nil {
		return err
	}
	prefs = p

	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LogLevelEnvVar)
	}
	if level == "" {
		level = prefs.LogLevel
	}
	switch level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", level)
	}

	return logging.Initialize(level)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "apdefaults %s\n", version.Full())
	},
}

// reportedError marks an error whose message has already been shown to the
// user, so main only sets the exit status.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}
