package manifest

import "fmt"

// ValidationError reports a manifest that cannot be run.
type ValidationError struct {
	// Field is the offending field, e.g. "targets[2].defaults"
	Field string
	// Message describes the problem
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid manifest: %s", e.Message)
	}
	return fmt.Sprintf("invalid manifest: %s: %s", e.Field, e.Message)
}

// TargetError wraps a failure while stamping one target.
type TargetError struct {
	// Target is the target name
	Target string
	// Err is the underlying error
	Err error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target %q: %v", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}
