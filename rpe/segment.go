package rpe

import (
	"sort"

	"github.com/pkg/errors"

	"go.viam.com/trajeval/spatialmath"
)

// Segment is a span of associated frames whose groundtruth arc length reaches a target length.
// The error is evaluated between the poses at First and Last.
type Segment struct {
	First        int
	Last         int
	TargetLength float64
	// Length is the realized groundtruth arc length, at least TargetLength unless the segment is partial.
	Length float64
}

// NumFrames returns the number of steps spanned by the segment.
func (s Segment) NumFrames() int {
	return s.Last - s.First
}

// Partial reports whether the segment ended at the path end before reaching its target length.
func (s Segment) Partial() bool {
	return s.Length < s.TargetLength
}

type segmentOptions struct {
	keepPartial bool
}

// SegmentOption changes how SelectSegments treats the path.
type SegmentOption func(*segmentOptions)

// KeepPartialSegments also emits segments that reach the end of the path before their target
// length. They end at the last frame.
func KeepPartialSegments() SegmentOption {
	return func(o *segmentOptions) {
		o.keepPartial = true
	}
}

// CumulativeDistance returns the arc length from the first pose to each pose of the path.
func CumulativeDistance(path []spatialmath.Pose) []float64 {
	dist := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		dist[i] = dist[i-1] + path[i].Point().Sub(path[i-1].Point()).Norm()
	}
	return dist
}

// SelectSegments returns the segments starting every stride frames of path whose arc length
// reaches targetLength. Segments are ordered by their first frame.
func SelectSegments(path []spatialmath.Pose, stride int, targetLength float64, opts ...SegmentOption) ([]Segment, error) {
	if stride < 1 {
		return nil, errors.Errorf("segment stride must be at least 1, got %d", stride)
	}
	if !(targetLength > 0) {
		return nil, errors.Errorf("segment length must be positive, got %v", targetLength)
	}
	var o segmentOptions
	for _, opt := range opts {
		opt(&o)
	}

	dist := CumulativeDistance(path)
	n := len(path)
	var segments []Segment
	for start := 0; start < n-1; start += stride {
		offset := sort.Search(n-start-1, func(i int) bool {
			return dist[start+i+1]-dist[start] >= targetLength
		})
		end := start + offset + 1
		if end >= n {
			if !o.keepPartial {
				continue
			}
			end = n - 1
		}
		segments = append(segments, Segment{
			First:        start,
			Last:         end,
			TargetLength: targetLength,
			Length:       dist[end] - dist[start],
		})
	}
	return segments, nil
}
