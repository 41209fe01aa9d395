package ui

import (
	"fmt"
	"strings"
)

// HexDumpWidth is the number of bytes shown per hex dump row.
const HexDumpWidth = 16

// HexDump renders data as offset, hex and ASCII columns. base is added to
// the printed offsets so rows can show image positions.
func HexDump(data []byte, base int) string {
	if len(data) == 0 {
		return HexASCIIStyle.Render("(empty)")
	}

	var lines []string
	for off := 0; off < len(data); off += HexDumpWidth {
		end := off + HexDumpWidth
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		var hex strings.Builder
		for i := 0; i < HexDumpWidth; i++ {
			if i == HexDumpWidth/2 {
				hex.WriteByte(' ')
			}
			if i < len(row) {
				fmt.Fprintf(&hex, "%02x ", row[i])
			} else {
				hex.WriteString("   ")
			}
		}

		lines = append(lines,
			HexOffsetStyle.Render(fmt.Sprintf("%08x", base+off))+"  "+
				HexBytesStyle.Render(hex.String())+" "+
				HexASCIIStyle.Render("|"+printable(row)+"|"))
	}
	return strings.Join(lines, "\n")
}

func printable(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 0x20 && c < 0x7f {
			out[i] = c
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// RenderContents renders the defaults payload in a titled box, as text or
// as a hex dump.
func RenderContents(title string, data []byte, hexDump bool, base, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	// Hex rows are never wrapped
	var body string
	switch {
	case hexDump:
		body, width = HexDump(data, base), 0
	case len(data) == 0:
		body = HexASCIIStyle.Render("(empty)")
	default:
		body = strings.TrimRight(string(data), "\n")
	}

	return ContentsTitleStyle.Render(title) + "\n" + ContentsBoxStyle(width).Render(body)
}
