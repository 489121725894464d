package trajectory

import (
	"fmt"

	"github.com/pkg/errors"
)

// MalformedPoseError marks a trajectory record that cannot be evaluated, e.g. because it holds
// non-finite values or breaks the stamp ordering. It is fatal for a run.
type MalformedPoseError struct {
	Index  int
	Stamp  int64
	Reason string
}

// NewMalformedPoseError returns an error for the record at index.
func NewMalformedPoseError(index int, stamp int64, reason string) error {
	return &MalformedPoseError{Index: index, Stamp: stamp, Reason: reason}
}

func (e *MalformedPoseError) Error() string {
	return fmt.Sprintf("malformed pose record %d (stamp %d): %s", e.Index, e.Stamp, e.Reason)
}

// NewUnsupportedFormatError is returned when no loader is registered under the given name.
func NewUnsupportedFormatError(format string) error {
	return errors.Errorf("format %q is not supported, expected one of %v", format, RegisteredFormats())
}
