package container

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every *MalformedError under errors.Is.
var ErrMalformed = errors.New("malformed firmware container")

// MalformedError reports an input that is not a valid file of its format.
type MalformedError struct {
	// Format is the encoding the input was decoded as
	Format Format
	// Reason describes what was wrong
	Reason string
	// Err is the underlying decoder error, if any
	Err error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s file: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s file: %s", e.Format, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformed.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(format Format, reason string, err error) error {
	return &MalformedError{Format: format, Reason: reason, Err: err}
}
