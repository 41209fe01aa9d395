// Package container converts between firmware file encodings and the raw
// firmware image they carry.
//
// Three encodings are supported:
//
//   - binary: the file is the image, byte for byte
//   - abin: text header lines, a "--" separator line, then the image. A
//     header line starting with "MD5: " carries the image checksum and is
//     regenerated on every encode.
//   - apj (also .px4): a JSON object whose "image" member holds the image,
//     zlib-compressed and base64-encoded. All other members are carried
//     through untouched.
//
// Decode returns the image plus the Metadata needed to write the same
// encoding back out; Encode is its inverse. Neither function performs I/O.
//
//	format := container.FormatForPath("arducopter.apj")
//	meta, image, err := container.Decode(format, raw)
//	...
//	out, err := container.Encode(meta, patched)
//
// Inputs that cannot be decoded fail with a *MalformedError, which matches
// ErrMalformed under errors.Is.
package container
