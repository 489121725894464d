// Package rpe computes the segment based relative pose error of an estimated trajectory against
// its groundtruth.
package rpe

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/trajeval/logging"
	"go.viam.com/trajeval/trajectory"
)

// Result holds everything produced by one evaluation.
type Result struct {
	Association *trajectory.Association
	Segments    []Segment
	Errors      []RelativeError
}

// Evaluate associates es with gt, selects segments along the associated groundtruth and returns
// the error of each segment. Any segment that cannot be evaluated fails the run.
func Evaluate(gt, es trajectory.Trajectory, cfg *Config, logger logging.Logger) (*Result, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate("rpe"); err != nil {
		return nil, err
	}
	if err := gt.Validate(); err != nil {
		return nil, errors.Wrap(err, "groundtruth")
	}
	if err := es.Validate(); err != nil {
		return nil, errors.Wrap(err, "estimate")
	}

	assoc, err := trajectory.Associate(gt, es, cfg.Offset(), cfg.MaxDifference())
	if err != nil {
		return nil, err
	}
	logger.Debugw("associated trajectories",
		"groundtruth", len(gt), "estimate", len(es), "pairs", len(assoc.Pairs), "dropped", assoc.Dropped)
	if assoc.Dropped > 0 {
		logger.Warnw("estimate samples without groundtruth within tolerance were dropped",
			"dropped", assoc.Dropped, "estimate", len(es), "max_difference_sec", cfg.MaxDifferenceSec)
	}

	segments, err := SelectSegments(assoc.Groundtruth(), cfg.SkipFrames, cfg.SegmentLength, cfg.SegmentOptions()...)
	if err != nil {
		return nil, err
	}
	opts := cfg.AlignOptions()
	logger.Debugw("selected segments",
		"segments", len(segments),
		"partial", lo.CountBy(segments, Segment.Partial),
		"segment_length", cfg.SegmentLength,
		"alignment", opts.Mode.String())
	if len(segments) == 0 {
		logger.Warnw("no segment reaches the segment length", "segment_length", cfg.SegmentLength, "pairs", len(assoc.Pairs))
	}

	relErrors, err := Collect(assoc.Pairs, segments, opts, cfg.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "computing relative errors")
	}
	return &Result{Association: assoc, Segments: segments, Errors: relErrors}, nil
}
