package rpe

import (
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/trajeval/trajectory"
)

// Collect computes the error of every segment, ordered like segments. Segments are evaluated
// sequentially unless workers is greater than one. A failing segment does not stop the others:
// the returned records hold every segment that succeeded and the error combines all failures.
func Collect(
	pairs []trajectory.AlignedPair,
	segments []Segment,
	opts AlignOptions,
	workers int,
) ([]RelativeError, error) {
	results := make([]RelativeError, len(segments))
	errs := make([]error, len(segments))

	if workers <= 1 {
		for i, seg := range segments {
			results[i], errs[i] = computeSegment(pairs, seg, opts)
		}
	} else {
		var group errgroup.Group
		group.SetLimit(workers)
		for i, seg := range segments {
			group.Go(func() error {
				results[i], errs[i] = computeSegment(pairs, seg, opts)
				return nil
			})
		}
		//nolint:errcheck
		group.Wait()
	}

	var combined error
	collected := make([]RelativeError, 0, len(segments))
	for i := range segments {
		if errs[i] != nil {
			combined = multierr.Append(combined, errs[i])
			continue
		}
		collected = append(collected, results[i])
	}
	return collected, combined
}

func computeSegment(pairs []trajectory.AlignedPair, seg Segment, opts AlignOptions) (RelativeError, error) {
	rel, err := ComputeError(pairs, seg, opts)
	if err != nil {
		return RelativeError{}, NewSegmentError(seg, err)
	}
	return rel, nil
}
