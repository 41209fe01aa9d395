// Package defaults locates and rewrites the embedded parameter defaults
// region inside a firmware image.
//
// Firmware built with embedded defaults support reserves a fixed-size block
// that starts with a tag and an 8-byte magic constant, followed by the
// region's maximum and current lengths and the current payload:
//
//	offset  size  field
//	     0     8  tag "PARMDEF" plus one NUL byte
//	     8     8  magic 55 37 f4 a0 38 5d 48 5b
//	    16     2  max_length (little-endian)
//	    18     2  length (little-endian)
//	    20     n  payload (length bytes)
//
// The block has no fixed address, so Locate scans for it. The payload is an
// opaque byte string to this package; its meaning belongs to the firmware.
//
// # Usage
//
//	hdr, err := defaults.Locate(image, 0)
//	if errors.Is(err, defaults.ErrNotFound) {
//	    // firmware was built without embedded defaults
//	}
//
//	current := hdr.Contents(image)
//
//	patched, err := defaults.SetContents(image, hdr, newParams)
//	var tooLarge *defaults.TooLargeError
//	if errors.As(err, &tooLarge) {
//	    // image is untouched
//	}
//
// All functions are pure: inputs are never modified and every successful
// patch returns a new slice.
package defaults
