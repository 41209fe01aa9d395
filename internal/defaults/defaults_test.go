package defaults

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

// buildBlock encodes a defaults block independently of the package code.
func buildBlock(maxLen int, payload []byte) []byte {
	b := []byte("PARMDEF\x00")
	b = append(b, 0x55, 0x37, 0xf4, 0xa0, 0x38, 0x5d, 0x48, 0x5b)
	b = binary.LittleEndian.AppendUint16(b, uint16(maxLen))
	b = binary.LittleEndian.AppendUint16(b, uint16(len(payload)))
	b = append(b, payload...)
	return b
}

// buildImage surrounds a block with filler so offsets are not trivially zero.
func buildImage(prefix, block, suffix []byte) []byte {
	img := append([]byte{}, prefix...)
	img = append(img, block...)
	return append(img, suffix...)
}

func TestLocate(t *testing.T) {
	prefix := bytes.Repeat([]byte{0xAA}, 37)
	suffix := []byte("trailing firmware bytes")

	tests := []struct {
		name       string
		image      []byte
		wantOffset int
		wantMax    int
		wantLen    int
	}{
		{
			name:       "block at start",
			image:      buildBlock(64, []byte("hello")),
			wantOffset: 0,
			wantMax:    64,
			wantLen:    5,
		},
		{
			name:       "block after prefix",
			image:      buildImage(prefix, buildBlock(1024, []byte("SERIAL0_BAUD 115\n")), suffix),
			wantOffset: 37,
			wantMax:    1024,
			wantLen:    17,
		},
		{
			name:       "empty payload",
			image:      buildImage(prefix, buildBlock(32, nil), suffix),
			wantOffset: 37,
			wantMax:    32,
			wantLen:    0,
		},
		{
			name:       "block at very end",
			image:      buildImage(prefix, buildBlock(8, []byte("abc")), nil),
			wantOffset: 37,
			wantMax:    8,
			wantLen:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Locate(tt.image, 0)
			if err != nil {
				t.Fatalf("Locate() error = %v", err)
			}
			if h.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", h.Offset, tt.wantOffset)
			}
			if h.MaxLength != tt.wantMax {
				t.Errorf("MaxLength = %d, want %d", h.MaxLength, tt.wantMax)
			}
			if h.Length != tt.wantLen {
				t.Errorf("Length = %d, want %d", h.Length, tt.wantLen)
			}

			// Nothing else after the block
			if _, err := Locate(tt.image, h.Offset+1); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Locate() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestLocate_SkipsFalsePositiveTag(t *testing.T) {
	image := []byte("junk junk junk")
	image = append(image, []byte("PARMDEF\x00not magic")...)
	image = append(image, bytes.Repeat([]byte{0x00}, 11)...)
	validAt := len(image)
	image = append(image, buildBlock(64, []byte("hello"))...)
	image = append(image, 0xde, 0xad)

	h, err := Locate(image, 0)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if h.Offset != validAt {
		t.Errorf("Offset = %d, want %d", h.Offset, validAt)
	}
	if h.MaxLength != 64 || h.Length != 5 {
		t.Errorf("got max=%d len=%d, want max=64 len=5", h.MaxLength, h.Length)
	}
	if got := h.Contents(image); string(got) != "hello" {
		t.Errorf("Contents() = %q, want %q", got, "hello")
	}
}

func TestLocate_BackToBackTags(t *testing.T) {
	// A bare tag directly followed by a real block must not hide the block.
	image := append([]byte("PARMDEF"), buildBlock(16, []byte("x"))...)

	h, err := Locate(image, 0)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if h.Offset != len("PARMDEF") {
		t.Errorf("Offset = %d, want %d", h.Offset, len("PARMDEF"))
	}
}

func TestLocate_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		image []byte
		start int
	}{
		{name: "empty image", image: nil},
		{name: "no tag", image: bytes.Repeat([]byte{0xFF}, 4096)},
		{name: "tag without magic", image: []byte("....PARMDEF\x00\x01\x02\x03\x04\x05\x06\x07\x08......")},
		{name: "tag truncated before magic", image: []byte("....PARMDEF\x00\x55\x37")},
		{name: "start past end", image: buildBlock(64, []byte("hello")), start: 100},
		{name: "start past block", image: buildBlock(64, []byte("hello")), start: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Locate(tt.image, tt.start)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Locate() = %v, %v; want ErrNotFound", h, err)
			}
		})
	}
}

func TestLocate_NegativeStart(t *testing.T) {
	h, err := Locate(buildBlock(64, []byte("hello")), -5)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if h.Offset != 0 {
		t.Errorf("Offset = %d, want 0", h.Offset)
	}
}

func TestLocate_MalformedHeader(t *testing.T) {
	full := buildBlock(64, []byte("hello"))

	lengthOverMax := buildBlock(4, []byte("hello"))

	payloadPastEnd := buildBlock(64, []byte("hello"))
	payloadPastEnd = payloadPastEnd[:len(payloadPastEnd)-2]

	tests := []struct {
		name   string
		image  []byte
		reason string
	}{
		{name: "fields truncated", image: full[:18], reason: "truncated"},
		{name: "length exceeds max", image: lengthOverMax, reason: "exceeds max_length"},
		{name: "payload past end", image: payloadPastEnd, reason: "past end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Locate(tt.image, 0)
			var herr *HeaderError
			if !errors.As(err, &herr) {
				t.Fatalf("Locate() error = %v, want *HeaderError", err)
			}
			if errors.Is(err, ErrNotFound) {
				t.Error("malformed header must not be reported as not found")
			}
			if !strings.Contains(herr.Error(), tt.reason) {
				t.Errorf("error %q should mention %q", herr.Error(), tt.reason)
			}
		})
	}
}

func TestSetContents(t *testing.T) {
	prefix := []byte("bootloader-ish prefix")
	suffix := []byte("code after the defaults block")
	image := buildImage(prefix, buildBlock(64, []byte("hello")), suffix)

	payloads := [][]byte{
		nil,
		[]byte("h"),
		[]byte("hello"),
		[]byte("0123456789"),
		bytes.Repeat([]byte("Z"), 64),
	}

	for _, payload := range payloads {
		h, err := Locate(image, 0)
		if err != nil {
			t.Fatalf("Locate() error = %v", err)
		}
		original := append([]byte{}, image...)

		out, err := SetContents(image, h, payload)
		if err != nil {
			t.Fatalf("SetContents(%d bytes) error = %v", len(payload), err)
		}
		if !bytes.Equal(image, original) {
			t.Fatal("SetContents modified its input")
		}

		if want := len(image) - 5 + len(payload); len(out) != want {
			t.Errorf("len(out) = %d, want %d", len(out), want)
		}
		if !bytes.HasPrefix(out, image[:h.Offset+LengthOffset]) {
			t.Error("bytes before the length field changed")
		}
		if !bytes.HasSuffix(out, suffix) {
			t.Error("bytes after the payload changed")
		}

		h2, err := Locate(out, 0)
		if err != nil {
			t.Fatalf("re-Locate() error = %v", err)
		}
		if h2.Offset != h.Offset || h2.MaxLength != 64 || h2.Length != len(payload) {
			t.Errorf("re-Locate() = %v", h2)
		}
		if got := h2.Contents(out); !bytes.Equal(got, payload) {
			t.Errorf("Contents() = %q, want %q", got, payload)
		}
	}
}

func TestSetContents_TooLarge(t *testing.T) {
	image := buildBlock(8, []byte("abc"))
	original := append([]byte{}, image...)

	h, err := Locate(image, 0)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}

	out, err := SetContents(image, h, []byte("123456789"))
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("SetContents() error = %v, want *TooLargeError", err)
	}
	if tooLarge.Length != 9 || tooLarge.Max != 8 {
		t.Errorf("TooLargeError = %+v, want Length=9 Max=8", tooLarge)
	}
	if out != nil {
		t.Error("expected nil output on error")
	}
	if !bytes.Equal(image, original) {
		t.Error("image modified on TooLarge")
	}
	if !strings.Contains(err.Error(), "9") || !strings.Contains(err.Error(), "8") {
		t.Errorf("error %q should name both sizes", err.Error())
	}
}

func TestSetContents_StaleHeader(t *testing.T) {
	image := buildImage([]byte("pre"), buildBlock(16, []byte("abc")), nil)
	h, err := Locate(image, 0)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}

	stale := &Header{Offset: h.Offset, MaxLength: h.MaxLength, Length: h.Length + 1}
	if _, err := SetContents(image, stale, []byte("x")); err == nil {
		t.Error("expected error for header that does not match image")
	}

	moved := &Header{Offset: 0, MaxLength: h.MaxLength, Length: h.Length}
	var herr *HeaderError
	if _, err := SetContents(image, moved, []byte("x")); !errors.As(err, &herr) {
		t.Errorf("SetContents() error = %v, want *HeaderError", err)
	}

	if _, err := SetContents(image, nil, []byte("x")); err == nil {
		t.Error("expected error for nil header")
	}
}

func TestHeader_Contents(t *testing.T) {
	image := buildBlock(16, []byte("abc"))
	h := &Header{Offset: 0, MaxLength: 16, Length: 3}

	got := h.Contents(image)
	if string(got) != "abc" {
		t.Fatalf("Contents() = %q", got)
	}

	// The result is a copy
	got[0] = 'X'
	if image[PayloadOffset] != 'a' {
		t.Error("Contents() aliases the image")
	}

	outOfRange := &Header{Offset: 0, MaxLength: 16, Length: 30}
	if got := outOfRange.Contents(image); got != nil {
		t.Errorf("Contents() = %q, want nil for out-of-range header", got)
	}
}

func TestHeader_String(t *testing.T) {
	h := &Header{Offset: 0x40, MaxLength: 64, Length: 5}
	s := h.String()
	for _, want := range []string{"0x40", "64", "5"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, should contain %q", s, want)
		}
	}
}
