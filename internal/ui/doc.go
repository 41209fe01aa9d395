// Package ui renders the apdefaults terminal output.
//
// Output follows a "run once and exit" pattern: commands print a header box
// describing what they are about to do, optional progress lines, and a
// success or failure box. Nothing waits for input except the overwrite
// confirmation, which is only shown on an interactive terminal.
//
// Components:
//
//   - Header: command banner with the firmware path and format
//   - Progress: per-target step list and bar for the stamp command
//   - Result: success, warning and failure boxes
//   - HexDump: offset/hex/ASCII rendering of the defaults region
//
// The Runner ties header, progress and result together for batch work:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:   "Stamp",
//	    Command: "apdefaults stamp release.yaml",
//	    Steps:   []string{"copter", "plane"},
//	})
//	err := runner.Run(func(onStep ui.StepCallback) ([]ui.Field, error) {
//	    onStep(1, ui.StepComplete, "412 bytes")
//	    ...
//	})
//
// # Logging Integration
//
// Logging is controlled by APDEFAULTS_LOG_LEVEL and goes to stderr, so it
// never interleaves with the styled output on stdout.
package ui
