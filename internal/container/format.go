package container

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a firmware file encoding.
type Format int

const (
	// FormatBinary is a plain firmware image
	FormatBinary Format = iota
	// FormatAbin is a text header block followed by the image
	FormatAbin
	// FormatApj is a JSON document with a compressed, base64 image
	FormatApj
)

// String returns the short name used in logs and CLI output
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatAbin:
		return "abin"
	case FormatApj:
		return "apj"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatForPath selects the encoding from a file extension. Matching is
// case-insensitive; unknown extensions are treated as binary.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".apj", ".px4":
		return FormatApj
	case ".abin":
		return FormatAbin
	default:
		return FormatBinary
	}
}

// ParseFormat parses a format name as accepted by the --format flag.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binary", "bin":
		return FormatBinary, nil
	case "abin":
		return FormatAbin, nil
	case "apj", "px4":
		return FormatApj, nil
	default:
		return FormatBinary, fmt.Errorf("unknown firmware format %q (expected binary, abin or apj)", name)
	}
}
