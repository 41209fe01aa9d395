package container

import (
	"encoding/json"
	"fmt"
)

// Metadata is everything besides the image that is needed to re-encode a
// decoded file.
type Metadata struct {
	// Format is the encoding the metadata belongs to
	Format Format

	// Headers are the abin header lines in file order, without the
	// separator and without line terminators
	Headers []string

	// Members are the top-level apj members in document order. The image
	// member keeps its position; its value is replaced on encode.
	Members []Member
}

// Member is one top-level member of an apj document.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Keys returns the apj member names in document order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.Members))
	for _, member := range m.Members {
		keys = append(keys, member.Key)
	}
	return keys
}

// Decode splits raw file contents into metadata and firmware image.
func Decode(format Format, raw []byte) (*Metadata, []byte, error) {
	switch format {
	case FormatBinary:
		return decodeBinary(raw)
	case FormatAbin:
		return decodeAbin(raw)
	case FormatApj:
		return decodeApj(raw)
	default:
		return nil, nil, fmt.Errorf("unsupported firmware format %s", format)
	}
}

// Encode renders an image back into the encoding described by meta.
// Integrity fields (the abin MD5 line) are recomputed from image.
func Encode(meta *Metadata, image []byte) ([]byte, error) {
	if meta == nil {
		return nil, fmt.Errorf("no container metadata")
	}

	switch meta.Format {
	case FormatBinary:
		return encodeBinary(image), nil
	case FormatAbin:
		return encodeAbin(meta, image), nil
	case FormatApj:
		return encodeApj(meta, image)
	default:
		return nil, fmt.Errorf("unsupported firmware format %s", meta.Format)
	}
}

func decodeBinary(raw []byte) (*Metadata, []byte, error) {
	image := make([]byte, len(raw))
	copy(image, raw)
	return &Metadata{Format: FormatBinary}, image, nil
}

func encodeBinary(image []byte) []byte {
	out := make([]byte, len(image))
	copy(out, image)
	return out
}
