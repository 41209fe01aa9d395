package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/muurk/apdefaults/internal/defaults"
	"github.com/muurk/apdefaults/internal/firmware"
)

// runCompat implements the plain-text root invocation. Output matches the
// classic apj_tool so existing scripts keep working.
func runCompat(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if compatShow || compatSetFile != "" {
			return errors.New("a firmware file is required")
		}
		return cmd.Help()
	}
	cmd.SilenceUsage = true

	return compat(cmd.OutOrStdout(), args[0], compatShow, compatSetFile)
}

func compat(out io.Writer, path string, show bool, setFile string) error {
	fw, err := loadFirmware(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return reported(err)
	}
	fmt.Fprintf(out, "Loaded %s file of length %d\n", fw.Format, len(fw.Image()))

	h, err := fw.Locate()
	if errors.Is(err, defaults.ErrNotFound) {
		fmt.Fprintln(out, "Error: Param defaults support not found in firmware")
		return reported(err)
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return reported(err)
	}
	fmt.Fprintf(out, "Found param defaults max_length=%d length=%d\n", h.MaxLength, h.Length)

	if show {
		contents, err := fw.Contents()
		if err != nil {
			return err
		}
		_, _ = out.Write(contents)
		fmt.Fprintln(out)
	}

	if setFile == "" {
		return nil
	}

	fmt.Fprintf(out, "Setting defaults from %s\n", setFile)
	if err := fw.SetContentsFromFile(setFile); err != nil {
		var tooLarge *defaults.TooLargeError
		if errors.As(err, &tooLarge) {
			fmt.Fprintf(out, "Error: Length %d larger than maximum %d\n", tooLarge.Length, tooLarge.Max)
		} else {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return reported(err)
	}

	if err := fw.Save(""); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return reported(err)
	}
	fmt.Fprintf(out, "Saved %s of length %d\n", fw.Format, len(fw.Image()))
	return nil
}

// loadFirmware loads path using --format when given, else the extension.
func loadFirmware(path string) (*firmware.File, error) {
	if formatName == "" {
		return firmware.Load(path)
	}

	format, err := parseFormatFlag()
	if err != nil {
		return nil, err
	}
	return firmware.LoadAs(path, format)
}
