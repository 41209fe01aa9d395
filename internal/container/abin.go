package container

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

const (
	// AbinSeparator ends the abin header block
	AbinSeparator = "--"

	// AbinMaxHeaders is the largest header block accepted
	AbinMaxHeaders = 50

	// AbinChecksumPrefix marks the header line that carries the image MD5
	AbinChecksumPrefix = "MD5: "
)

func decodeAbin(raw []byte) (*Metadata, []byte, error) {
	var headers []string
	rest := raw

	for {
		var line []byte
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			line, rest = rest, nil
		} else {
			line, rest = rest[:i], rest[i+1:]
		}

		text := strings.TrimRightFunc(string(line), unicode.IsSpace)
		if text == AbinSeparator {
			break
		}
		if i < 0 {
			return nil, nil, malformed(FormatAbin,
				fmt.Sprintf("missing %q separator after %d header lines", AbinSeparator, len(headers)), nil)
		}

		headers = append(headers, text)
		if len(headers) > AbinMaxHeaders {
			return nil, nil, malformed(FormatAbin,
				fmt.Sprintf("too many header lines (more than %d)", AbinMaxHeaders), nil)
		}
	}

	image := make([]byte, len(rest))
	copy(image, rest)

	return &Metadata{Format: FormatAbin, Headers: headers}, image, nil
}

func encodeAbin(meta *Metadata, image []byte) []byte {
	var b bytes.Buffer

	for _, line := range meta.Headers {
		if strings.HasPrefix(line, AbinChecksumPrefix) {
			line = AbinChecksumPrefix + Checksum(image)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(AbinSeparator)
	b.WriteByte('\n')
	b.Write(image)

	return b.Bytes()
}

// Checksum returns the lowercase hex MD5 digest written into abin headers.
func Checksum(image []byte) string {
	sum := md5.Sum(image)
	return hex.EncodeToString(sum[:])
}
