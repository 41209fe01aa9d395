package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/apdefaults/internal/container"
	"github.com/muurk/apdefaults/internal/firmware"
	"github.com/muurk/apdefaults/internal/manifest"
	"github.com/muurk/apdefaults/internal/ui"
)

var (
	stampKeepGoing bool
	stampDryRun    bool
	stampJobs      int
)

func init() {
	stampCmd.Flags().BoolVar(&stampKeepGoing, "keep-going", false, "Continue with the remaining targets after a failure")
	stampCmd.Flags().BoolVar(&stampDryRun, "dry-run", false, "Check every target fits without writing any files")
	stampCmd.Flags().IntVarP(&stampJobs, "jobs", "j", 1, "Number of targets to stamp at once")

	rootCmd.AddCommand(stampCmd)
}

// stampCmd implements the 'stamp' command
var stampCmd = &cobra.Command{
	Use:   "stamp <manifest.yaml>",
	Short: "Stamp defaults into several firmware files",
	Long: `Apply a YAML manifest that pairs firmware files with defaults files.

Each target is loaded, patched and written to its output (or back to its
firmware file when no output is given). Targets run in order, or --jobs
at a time, and no new target starts after a failure unless --keep-going
is set. The global --format applies to every firmware input.

Manifest format:

  version: 1
  base_dir: ./build
  targets:
    - name: copter-fmuv3
      firmware: arducopter.apj
      defaults: defaults/fmuv3.parm
      output: out/arducopter-fmuv3.apj`,
	Example: `  apdefaults stamp release.yaml
  apdefaults stamp release.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runStamp,
}

func runStamp(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	path := args[0]

	fail := func(err error) error {
		newPrinter(cmd).PrintFailure("Stamp failed", err, stampTroubleshooting(err))
		return reported(err)
	}

	var format *container.Format
	if formatName != "" {
		f, err := parseFormatFlag()
		if err != nil {
			return fail(err)
		}
		format = &f
	}

	m, err := manifest.Load(path)
	if err != nil {
		return fail(err)
	}

	names := make([]string, len(m.Targets))
	for i, t := range m.Targets {
		names[i] = t.Name
	}

	mode := "write"
	if stampDryRun {
		mode = "dry run"
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Stamp",
		Command: "apdefaults stamp " + path,
		Params: []ui.Field{
			{Key: "Manifest", Value: path},
			{Key: "Targets", Value: fmt.Sprintf("%d", len(m.Targets))},
			{Key: "Mode", Value: mode},
		},
		Steps:           names,
		Output:          cmd.OutOrStdout(),
		Troubleshooting: stampTroubleshooting,
	})

	err = runner.Run(func(onStep ui.StepCallback) ([]ui.Field, error) {
		results, err := m.Run(manifest.Options{
			DryRun:    stampDryRun,
			KeepGoing: stampKeepGoing,
			Jobs:      stampJobs,
			Format:    format,
			Progress: func(i, total int, r manifest.Result) {
				if r.Err != nil {
					onStep(i+1, ui.StepFailed, firmwareKindLabel(r.Err))
					return
				}
				onStep(i+1, ui.StepComplete, fmt.Sprintf("%d -> %d of %d bytes", r.OldLength, r.NewLength, r.MaxLength))
			},
		})

		ran := make(map[string]bool, len(results))
		for _, r := range results {
			ran[r.Target] = true
		}
		for i, t := range m.Targets {
			if !ran[t.Name] {
				onStep(i+1, ui.StepSkipped, "not run")
			}
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}

		return []ui.Field{
			{Key: "Stamped", Value: fmt.Sprintf("%d", len(results)-failed)},
			{Key: "Failed", Value: fmt.Sprintf("%d", failed)},
		}, err
	})

	return reported(err)
}

func firmwareKindLabel(err error) string {
	return strings.ToLower(firmware.Classify(err).String())
}

func stampTroubleshooting(err error) []string {
	var verr *manifest.ValidationError
	if errors.As(err, &verr) {
		return []string{
			"Fix " + verr.Field + " in the manifest",
			"Relative paths resolve against base_dir, then the manifest's directory",
		}
	}

	var target *manifest.TargetError
	if errors.As(err, &target) {
		return append(troubleshooting(err), "Run with --keep-going to stamp the remaining targets")
	}
	return troubleshooting(err)
}
