package defaults

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the image contains no defaults block. This is the
// normal result for firmware built without embedded defaults support.
var ErrNotFound = errors.New("param defaults support not found in firmware")

// TooLargeError is returned when a replacement payload does not fit in the
// space reserved by the firmware.
type TooLargeError struct {
	// Length is the size of the rejected payload
	Length int
	// Max is the header's declared maximum length
	Max int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("length %d larger than maximum %d", e.Length, e.Max)
}

// HeaderError describes a block whose tag and magic matched but whose
// length fields cannot be trusted. These images are rejected rather than
// repaired.
type HeaderError struct {
	// Offset is the position of the tag in the image
	Offset int
	// Reason says which check failed
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("malformed defaults header at offset 0x%x: %s", e.Offset, e.Reason)
}
