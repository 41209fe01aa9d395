package firmware

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/muurk/apdefaults/internal/container"
	"github.com/muurk/apdefaults/internal/defaults"
)

// ErrorKind is the category of a firmware operation failure.
type ErrorKind int

const (
	// KindUnknown is any error not matched by another kind
	KindUnknown ErrorKind = iota
	// KindNotFound means the image has no defaults block
	KindNotFound
	// KindTooLarge means the new contents exceed the reserved space
	KindTooLarge
	// KindMalformedHeader means the defaults header fields are inconsistent
	KindMalformedHeader
	// KindMalformedContainer means the file is not valid for its format
	KindMalformedContainer
	// KindIO means a file could not be read or written
	KindIO
)

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "Not Found"
	case KindTooLarge:
		return "Too Large"
	case KindMalformedHeader:
		return "Malformed Header"
	case KindMalformedContainer:
		return "Malformed Container"
	case KindIO:
		return "I/O Error"
	case KindUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Classify walks the error chain and returns the most specific kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var tooLarge *defaults.TooLargeError
	var header *defaults.HeaderError
	var pathErr *fs.PathError

	switch {
	case errors.Is(err, defaults.ErrNotFound):
		return KindNotFound
	case errors.As(err, &tooLarge):
		return KindTooLarge
	case errors.As(err, &header):
		return KindMalformedHeader
	case errors.Is(err, container.ErrMalformed):
		return KindMalformedContainer
	case errors.As(err, &pathErr):
		return KindIO
	default:
		return KindUnknown
	}
}
