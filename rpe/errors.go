package rpe

import (
	"fmt"
)

// SegmentError is returned when the error of a single segment cannot be computed.
type SegmentError struct {
	First int
	Last  int
	Err   error
}

// NewSegmentError wraps err with the segment it occurred in.
func NewSegmentError(seg Segment, err error) error {
	return &SegmentError{First: seg.First, Last: seg.Last, Err: err}
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment [%d, %d]: %v", e.First, e.Last, e.Err)
}

// Unwrap returns the underlying error.
func (e *SegmentError) Unwrap() error {
	return e.Err
}
