package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/apdefaults/internal/container"
	"github.com/muurk/apdefaults/internal/defaults"
	"github.com/muurk/apdefaults/internal/firmware"
	"github.com/muurk/apdefaults/internal/ui"
	"github.com/muurk/apdefaults/internal/urls"
)

// Command flags
var (
	showHex       bool
	extractOutput string
	setFile       string
	setOutput     string
	setYes        bool
	setBackup     bool
)

// errCancelled is returned when the user declines an overwrite
var errCancelled = errors.New("operation cancelled")

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(infoCmd)
}

// showCmd implements the 'show' command
var showCmd = &cobra.Command{
	Use:   "show <firmware>",
	Short: "Show the embedded defaults",
	Long: `Locate the defaults region and print its header and contents.

Contents are printed as text, or as a hex and ASCII dump with --hex.
Offsets in the dump are positions in the decoded firmware image.`,
	Example: `  apdefaults show arducopter.apj
  apdefaults show arducopter.bin --hex`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showHex, "hex", false, "Show contents as a hex dump")
}

func runShow(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true
	p := newPrinter(cmd)
	path := args[0]

	fw, h, err := loadAndLocate(path)
	if err != nil {
		p.PrintFailure("Show defaults failed", err, troubleshooting(err))
		return reported(err)
	}

	contents, err := fw.Contents()
	if err != nil {
		p.PrintFailure("Show defaults failed", err, troubleshooting(err))
		return reported(err)
	}

	p.PrintHeader("Embedded Defaults", "apdefaults show "+path, regionFields(fw, h))
	p.PrintContents("Contents", contents, showHex, h.PayloadOffset())
	return nil
}

// extractCmd implements the 'extract' command
var extractCmd = &cobra.Command{
	Use:   "extract <firmware>",
	Short: "Write the embedded defaults to a file",
	Long: `Copy the contents of the defaults region to a file, or to standard
output when the output is "-".`,
	Example: `  apdefaults extract arducopter.apj -o current.parm
  apdefaults extract arducopter.apj -o - | grep SERIAL`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file, or - for stdout (required)")
	_ = extractCmd.MarkFlagRequired("output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := newPrinter(cmd)
	path := args[0]

	fail := func(err error) error {
		p.PrintFailure("Extract failed", err, troubleshooting(err))
		return reported(err)
	}

	fw, _, err := loadAndLocate(path)
	if err != nil {
		return fail(err)
	}
	contents, err := fw.Contents()
	if err != nil {
		return fail(err)
	}

	if extractOutput == "-" {
		if _, err := cmd.OutOrStdout().Write(contents); err != nil {
			return fail(fmt.Errorf("failed to write to stdout: %w", err))
		}
		return nil
	}

	if err := firmware.WriteFileAtomic(extractOutput, contents, 0644); err != nil {
		return fail(err)
	}

	p.PrintSuccess("Defaults extracted", []ui.Field{
		{Key: "Firmware", Value: path},
		{Key: "Output", Value: extractOutput},
		{Key: "Length", Value: fmt.Sprintf("%d bytes", len(contents))},
	})
	return nil
}

// setCmd implements the 'set' command
var setCmd = &cobra.Command{
	Use:   "set <firmware>",
	Short: "Replace the embedded defaults",
	Long: `Replace the contents of the defaults region with a file and save the
firmware in its original format.

The new contents must fit in the space reserved when the firmware was
built. Nothing is written if they do not. Without --output the firmware
is rewritten in place, which asks for confirmation on a terminal unless
--yes is given or confirm_overwrite is disabled in the preferences.`,
	Example: `  # Stamp in place, keeping a backup
  apdefaults set arducopter.apj --file defaults.parm --backup

  # Write a new file, leaving the input untouched
  apdefaults set arducopter.apj --file defaults.parm -o arducopter-custom.apj`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&setFile, "file", "", "File with the new defaults (required)")
	setCmd.Flags().StringVarP(&setOutput, "output", "o", "", "Write to this file instead of overwriting the input")
	setCmd.Flags().BoolVarP(&setYes, "yes", "y", false, "Overwrite without asking")
	setCmd.Flags().BoolVar(&setBackup, "backup", false, "Copy the input to <firmware>.bak before overwriting")
	_ = setCmd.MarkFlagRequired("file")
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := newPrinter(cmd)
	path := args[0]

	output := setOutput
	if output == "" {
		output = path
	}
	inPlace := filepath.Clean(output) == filepath.Clean(path)
	backup := inPlace && (setBackup || prefs.Backup)

	fail := func(err error) error {
		p.PrintFailure("Set defaults failed", err, troubleshooting(err))
		return reported(err)
	}

	fw, h, err := loadAndLocate(path)
	if err != nil {
		return fail(err)
	}
	oldLength := h.Length

	if err := fw.SetContentsFromFile(setFile); err != nil {
		return fail(err)
	}

	if inPlace && !setYes && prefs.ConfirmOverwrite && ui.IsInteractive() {
		if !ui.ConfirmOverwrite(os.Stdin, cmd.OutOrStdout(), path, backup) {
			return reported(errCancelled)
		}
	}

	details := []ui.Field{
		{Key: "Firmware", Value: path},
		{Key: "Format", Value: fw.Format.String()},
		{Key: "Defaults", Value: setFile},
	}

	if backup {
		backupPath, err := firmware.Backup(path)
		if err != nil {
			return fail(err)
		}
		details = append(details, ui.Field{Key: "Backup", Value: backupPath})
	}

	if err := fw.Save(output); err != nil {
		return fail(err)
	}

	details = append(details,
		ui.Field{Key: "Output", Value: output},
		ui.Field{Key: "Length", Value: fmt.Sprintf("%d -> %d bytes", oldLength, fw.Header().Length)},
		ui.Field{Key: "Max length", Value: fmt.Sprintf("%d bytes", fw.Header().MaxLength)},
	)
	p.PrintSuccess("Defaults updated", details)
	return nil
}

// infoCmd implements the 'info' command
var infoCmd = &cobra.Command{
	Use:   "info <firmware>",
	Short: "Describe a firmware file",
	Long: `Print the container format, image length and MD5, the abin header lines
or apj fields, and the defaults region if the firmware has one.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := newPrinter(cmd)
	path := args[0]

	fw, err := loadFirmware(path)
	if err != nil {
		p.PrintFailure("Info failed", err, troubleshooting(err))
		return reported(err)
	}

	fields := []ui.Field{
		{Key: "Format", Value: fw.Format.String()},
		{Key: "Image length", Value: fmt.Sprintf("%d bytes", len(fw.Image()))},
		{Key: "MD5", Value: fw.Checksum()},
	}

	meta := fw.Metadata()
	switch meta.Format {
	case container.FormatAbin:
		for i, line := range meta.Headers {
			fields = append(fields, ui.Field{Key: fmt.Sprintf("Header %d", i+1), Value: line})
		}
	case container.FormatApj:
		fields = append(fields, ui.Field{Key: "Fields", Value: strings.Join(meta.Keys(), ", ")})
	}

	h, err := fw.Locate()
	switch {
	case errors.Is(err, defaults.ErrNotFound):
		fields = append(fields, ui.Field{Key: "Defaults", Value: "not present"})
	case err != nil:
		p.PrintFailure("Info failed", err, troubleshooting(err))
		return reported(err)
	default:
		fields = append(fields, regionFields(fw, h)[2:]...)
	}

	p.Render(ui.NewHeader("Firmware Info", path, fields).SetWidth(p.Width()).Render())

	if offsets := defaults.Candidates(fw.Image()); len(offsets) > 1 {
		warning := make([]ui.Field, 0, len(offsets)+1)
		for i, off := range offsets {
			warning = append(warning, ui.Field{Key: fmt.Sprintf("Header %d", i+1), Value: fmt.Sprintf("0x%x", off)})
		}
		warning = append(warning, ui.Field{Key: "Used", Value: "first valid header"})
		p.Newline()
		p.PrintWarning("Multiple defaults headers", warning)
	}
	return nil
}

func loadAndLocate(path string) (*firmware.File, *defaults.Header, error) {
	fw, err := loadFirmware(path)
	if err != nil {
		return nil, nil, err
	}
	h, err := fw.Locate()
	if err != nil {
		return nil, nil, err
	}
	return fw, h, nil
}

// regionFields describes a located defaults region. The first two fields
// name the file and its format.
func regionFields(fw *firmware.File, h *defaults.Header) []ui.Field {
	return []ui.Field{
		{Key: "Firmware", Value: fw.Path},
		{Key: "Format", Value: fw.Format.String()},
		{Key: "Offset", Value: fmt.Sprintf("0x%x", h.Offset)},
		{Key: "Max length", Value: fmt.Sprintf("%d bytes", h.MaxLength)},
		{Key: "Length", Value: fmt.Sprintf("%d bytes", h.Length)},
		{Key: "Free", Value: fmt.Sprintf("%d bytes", h.MaxLength-h.Length)},
	}
}

func parseFormatFlag() (container.Format, error) {
	return container.ParseFormat(formatName)
}

// newPrinter prints to the command's output. Bubble Tea rendering is only
// used when that output is the real stdout.
func newPrinter(cmd *cobra.Command) *ui.Printer {
	if out := cmd.OutOrStdout(); out != os.Stdout {
		return ui.NewPrinter(out)
	}
	return ui.NewPrinter(nil)
}

// troubleshooting returns hints for the failure box
func troubleshooting(err error) []string {
	switch firmware.Classify(err) {
	case firmware.KindNotFound:
		return []string{
			"Only firmware built with embedded defaults support has a defaults region",
			"Check the file is ArduPilot firmware for the intended board",
			"Building firmware: " + urls.BuildingFirmware,
		}
	case firmware.KindTooLarge:
		return []string{
			"Remove comments and unused parameters from the defaults file",
			"The reserved space is fixed when the firmware is built",
		}
	case firmware.KindMalformedHeader:
		return []string{
			"The defaults header is inconsistent; the file may be truncated or corrupt",
			"Rebuild or download the firmware again",
		}
	case firmware.KindMalformedContainer:
		return []string{
			"Check the file extension matches its contents (.bin, .abin, .apj)",
			"Use --format to override the detected format",
		}
	case firmware.KindIO:
		return []string{
			"Check the path exists and is readable",
			"Check you can write to the output directory",
		}
	default:
		return nil
	}
}
