package firmware

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/muurk/apdefaults/internal/container"
	"github.com/muurk/apdefaults/internal/defaults"
)

func TestClassify(t *testing.T) {
	_, ioErr := os.ReadFile(filepath.Join(t.TempDir(), "missing.bin"))

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"not found", defaults.ErrNotFound, KindNotFound},
		{"wrapped not found", fmt.Errorf("copter: %w", defaults.ErrNotFound), KindNotFound},
		{"too large", &defaults.TooLargeError{Length: 10, Max: 4}, KindTooLarge},
		{"header", &defaults.HeaderError{Offset: 3, Reason: "truncated"}, KindMalformedHeader},
		{"container", &container.MalformedError{Format: container.FormatApj, Reason: "bad"}, KindMalformedContainer},
		{"io", fmt.Errorf("failed to read firmware file: %w", ioErr), KindIO},
		{"other", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKindString(t *testing.T) {
	if got := KindTooLarge.String(); got != "Too Large" {
		t.Errorf("String() = %q", got)
	}
	if got := ErrorKind(42).String(); got != "ErrorKind(42)" {
		t.Errorf("String() = %q", got)
	}
}
