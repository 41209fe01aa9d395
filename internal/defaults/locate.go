package defaults

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header is a located defaults block.
type Header struct {
	// Offset is the position of the tag within the image
	Offset int
	// MaxLength is the space reserved for the payload at build time
	MaxLength int
	// Length is the size of the current payload
	Length int
}

// PayloadOffset returns the image offset of the first payload byte.
func (h *Header) PayloadOffset() int {
	return h.Offset + PayloadOffset
}

// Contents returns a copy of the current payload.
func (h *Header) Contents(image []byte) []byte {
	start := h.PayloadOffset()
	end := start + h.Length
	if start > len(image) || end > len(image) {
		return nil
	}
	out := make([]byte, h.Length)
	copy(out, image[start:end])
	return out
}

// String returns a debug representation of the header
func (h *Header) String() string {
	return fmt.Sprintf("Header{Offset=0x%x, MaxLength=%d, Length=%d}", h.Offset, h.MaxLength, h.Length)
}

// Locate finds the first defaults block at or after start.
//
// A tag that is not followed by the magic constant is skipped and the scan
// resumes after the tag. If no block is found ErrNotFound is returned. A
// block whose magic matches but whose fields are inconsistent yields a
// *HeaderError.
func Locate(image []byte, start int) (*Header, error) {
	if start < 0 {
		start = 0
	}

	tag := []byte(Tag)
	offset := start
	for offset < len(image) {
		i := bytes.Index(image[offset:], tag)
		if i < 0 {
			return nil, ErrNotFound
		}
		p := offset + i

		if !hasMagic(image, p) {
			offset = p + len(tag)
			continue
		}

		return readHeader(image, p)
	}

	return nil, ErrNotFound
}

// hasMagic reports whether the magic constant follows the tag at p.
func hasMagic(image []byte, p int) bool {
	start := p + MagicOffset
	end := start + len(Magic)
	if end > len(image) {
		return false
	}
	return bytes.Equal(image[start:end], Magic[:])
}

// readHeader decodes the length fields of the block at p and checks them
// against the image bounds.
func readHeader(image []byte, p int) (*Header, error) {
	if p+HeaderSize > len(image) {
		return nil, &HeaderError{
			Offset: p,
			Reason: fmt.Sprintf("header truncated (image ends %d bytes after tag)", len(image)-p),
		}
	}

	h := &Header{
		Offset:    p,
		MaxLength: int(binary.LittleEndian.Uint16(image[p+MaxLengthOffset:])),
		Length:    int(binary.LittleEndian.Uint16(image[p+LengthOffset:])),
	}

	if h.Length > h.MaxLength {
		return nil, &HeaderError{
			Offset: p,
			Reason: fmt.Sprintf("length %d exceeds max_length %d", h.Length, h.MaxLength),
		}
	}
	if h.PayloadOffset()+h.Length > len(image) {
		return nil, &HeaderError{
			Offset: p,
			Reason: fmt.Sprintf("payload of %d bytes runs past end of image", h.Length),
		}
	}

	return h, nil
}
