package trajectory

import (
	"sort"

	"github.com/pkg/errors"
)

// TimeSeries holds values ordered by strictly increasing nanosecond timestamps.
// It is immutable once built and safe for concurrent reads.
type TimeSeries[T any] struct {
	stamps []int64
	values []T
}

// NewTimeSeries builds a series from parallel slices of stamps and values. The slices are not
// copied; callers must not modify them afterwards.
func NewTimeSeries[T any](stamps []int64, values []T) (*TimeSeries[T], error) {
	if len(stamps) != len(values) {
		return nil, errors.Errorf("got %d stamps for %d values", len(stamps), len(values))
	}
	for i := 1; i < len(stamps); i++ {
		if stamps[i] <= stamps[i-1] {
			return nil, errors.Errorf("stamp %d at index %d does not follow %d", stamps[i], i, stamps[i-1])
		}
	}
	return &TimeSeries[T]{stamps: stamps, values: values}, nil
}

// NearestValue returns the sample whose stamp is closest to the query. Two equidistant
// neighbours resolve to the earlier one. found is false only if the series is empty.
func (ts *TimeSeries[T]) NearestValue(stamp int64) (int64, T, bool) {
	var zero T
	n := len(ts.stamps)
	if n == 0 {
		return 0, zero, false
	}

	i := sort.Search(n, func(i int) bool { return ts.stamps[i] >= stamp })
	switch i {
	case 0:
		return ts.stamps[0], ts.values[0], true
	case n:
		return ts.stamps[n-1], ts.values[n-1], true
	}

	before, after := ts.stamps[i-1], ts.stamps[i]
	if stamp-before <= after-stamp {
		return before, ts.values[i-1], true
	}
	return after, ts.values[i], true
}
