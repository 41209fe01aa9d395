package container

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// firmwareBytes is binary content that includes newlines and separator-like
// sequences, which must not confuse the header parser.
var firmwareBytes = []byte("\x00\x01\n--\nMD5: x\r\n\xff\xfe")

func TestDecodeAbin(t *testing.T) {
	tests := []struct {
		name        string
		raw         []byte
		wantHeaders []string
		wantImage   []byte
	}{
		{
			name:        "typical file",
			raw:         append([]byte("git version: 1234abcd\nMD5: 00000000000000000000000000000000\nboard: fmuv3\n--\n"), firmwareBytes...),
			wantHeaders: []string{"git version: 1234abcd", "MD5: 00000000000000000000000000000000", "board: fmuv3"},
			wantImage:   firmwareBytes,
		},
		{
			name:        "CRLF and trailing spaces stripped",
			raw:         []byte("a \r\nb\t\r\n--\r\nIMG"),
			wantHeaders: []string{"a", "b"},
			wantImage:   []byte("IMG"),
		},
		{
			name:        "no headers",
			raw:         []byte("--\nIMG"),
			wantHeaders: nil,
			wantImage:   []byte("IMG"),
		},
		{
			name:        "empty image",
			raw:         []byte("x\n--\n"),
			wantHeaders: []string{"x"},
			wantImage:   []byte{},
		},
		{
			name:        "separator at EOF without newline",
			raw:         []byte("x\n--"),
			wantHeaders: []string{"x"},
			wantImage:   []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, image, err := Decode(FormatAbin, tt.raw)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if meta.Format != FormatAbin {
				t.Errorf("meta.Format = %v, want abin", meta.Format)
			}
			if strings.Join(meta.Headers, "|") != strings.Join(tt.wantHeaders, "|") || len(meta.Headers) != len(tt.wantHeaders) {
				t.Errorf("Headers = %q, want %q", meta.Headers, tt.wantHeaders)
			}
			if !bytes.Equal(image, tt.wantImage) {
				t.Errorf("image = %q, want %q", image, tt.wantImage)
			}
		})
	}
}

func abinWithHeaders(n int) []byte {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "header %d\n", i)
	}
	b.WriteString("--\nIMG")
	return []byte(b.String())
}

func TestDecodeAbin_HeaderLimit(t *testing.T) {
	meta, _, err := Decode(FormatAbin, abinWithHeaders(AbinMaxHeaders))
	if err != nil {
		t.Fatalf("Decode() with %d headers error = %v", AbinMaxHeaders, err)
	}
	if len(meta.Headers) != AbinMaxHeaders {
		t.Errorf("len(Headers) = %d, want %d", len(meta.Headers), AbinMaxHeaders)
	}

	_, _, err = Decode(FormatAbin, abinWithHeaders(AbinMaxHeaders+1))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Decode() with %d headers error = %v, want ErrMalformed", AbinMaxHeaders+1, err)
	}
	if !strings.Contains(err.Error(), "too many header lines") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestDecodeAbin_MissingSeparator(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty file", raw: nil},
		{name: "headers only", raw: []byte("a\nb\n")},
		{name: "no newline", raw: []byte("just binary")},
		{name: "separator with suffix", raw: []byte("a\n---\nIMG")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(FormatAbin, tt.raw)
			var merr *MalformedError
			if !errors.As(err, &merr) {
				t.Fatalf("Decode() error = %v, want *MalformedError", err)
			}
			if merr.Format != FormatAbin {
				t.Errorf("Format = %v, want abin", merr.Format)
			}
		})
	}
}

func TestEncodeAbin_RecomputesChecksum(t *testing.T) {
	raw := append([]byte("git version: 1234abcd\nMD5: 00000000000000000000000000000000\nboard: fmuv3\n--\n"), firmwareBytes...)
	meta, image, err := Decode(FormatAbin, raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	patched := append(append([]byte{}, image...), "0123456789"...)
	out, err := Encode(meta, patched)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	sum := md5.Sum(patched)
	want := "git version: 1234abcd\nMD5: " + hex.EncodeToString(sum[:]) + "\nboard: fmuv3\n--\n"
	if !bytes.HasPrefix(out, []byte(want)) {
		t.Errorf("encoded header = %q, want prefix %q", out[:len(want)], want)
	}
	if !bytes.HasSuffix(out, patched) {
		t.Error("encoded output does not end with the image")
	}
	if bytes.Contains(out, []byte("00000000000000000000000000000000")) {
		t.Error("stale checksum placeholder survived encoding")
	}

	// Round trip
	meta2, image2, err := Decode(FormatAbin, out)
	if err != nil {
		t.Fatalf("second Decode() error = %v", err)
	}
	if !bytes.Equal(image2, patched) {
		t.Error("round trip changed the image")
	}
	if meta2.Headers[1] != "MD5: "+Checksum(patched) {
		t.Errorf("checksum line = %q", meta2.Headers[1])
	}
}

func TestEncodeAbin_OnlyPrefixedLineRewritten(t *testing.T) {
	meta := &Metadata{
		Format:  FormatAbin,
		Headers: []string{"MD5:no-space", "xMD5: nope", "MD5: old"},
	}

	out, err := Encode(meta, []byte("fw"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := "MD5:no-space\nxMD5: nope\nMD5: " + Checksum([]byte("fw")) + "\n--\nfw"
	if string(out) != want {
		t.Errorf("Encode() = %q, want %q", out, want)
	}
}

func TestChecksum(t *testing.T) {
	// Known MD5 of the empty string
	if got := Checksum(nil); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Checksum(nil) = %s", got)
	}
}
