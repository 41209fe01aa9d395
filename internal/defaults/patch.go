package defaults

import (
	"encoding/binary"
	"fmt"
)

// SetContents returns a copy of image with the defaults payload replaced.
//
// The length field is rewritten and the old payload is replaced in full, so
// the result is longer or shorter than image when the payload size changes.
// Everything before the length field and everything after the old payload is
// kept. image itself is never modified; on error it is returned untouched
// along with a nil slice.
func SetContents(image []byte, h *Header, payload []byte) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("no defaults header")
	}
	if len(payload) > h.MaxLength {
		return nil, &TooLargeError{Length: len(payload), Max: h.MaxLength}
	}

	// The header must still describe this image.
	current, err := readHeaderAt(image, h.Offset)
	if err != nil {
		return nil, err
	}
	if current.MaxLength != h.MaxLength || current.Length != h.Length {
		return nil, &HeaderError{
			Offset: h.Offset,
			Reason: "header does not match image (stale header?)",
		}
	}

	tail := image[h.PayloadOffset()+h.Length:]

	out := make([]byte, 0, h.PayloadOffset()+len(payload)+len(tail))
	out = append(out, image[:h.Offset+LengthOffset]...)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(payload)))
	out = append(out, payload...)
	out = append(out, tail...)

	return out, nil
}

// readHeaderAt validates and decodes the block at a known offset.
func readHeaderAt(image []byte, p int) (*Header, error) {
	if p < 0 || p+len(Tag) > len(image) || string(image[p:p+len(Tag)]) != Tag || !hasMagic(image, p) {
		return nil, &HeaderError{Offset: p, Reason: "no tag and magic at header offset"}
	}
	return readHeader(image, p)
}
