package rpe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/trajeval/spatialmath"
	"go.viam.com/trajeval/trajectory"
	"go.viam.com/trajeval/utils"
)

// Below this groundtruth displacement the scale error is reported as 1.
const minScaleDisplacement = 1e-9

// RelativeError is the error of the estimated motion over one segment.
type RelativeError struct {
	FirstFrame int
	// Translation is the position of the estimated segment end in the true segment end frame.
	Translation r3.Vector
	// Rotation is the angle-axis rotation error, its norm lies in [0, pi].
	Rotation  r3.Vector
	Length    float64
	NumFrames int
	// Scale is the ratio of the estimated to the true displacement, 1 means no scale drift.
	Scale float64
}

// ComputeError compares the relative motion of the estimate and the groundtruth between the
// first and last frame of seg.
func ComputeError(pairs []trajectory.AlignedPair, seg Segment, opts AlignOptions) (RelativeError, error) {
	if seg.First < 0 || seg.Last >= len(pairs) || seg.First >= seg.Last {
		return RelativeError{}, errors.Errorf("segment [%d, %d] is outside of the %d aligned pairs",
			seg.First, seg.Last, len(pairs))
	}

	gtRel := spatialmath.PoseBetween(pairs[seg.First].Groundtruth, pairs[seg.Last].Groundtruth)
	esRel := spatialmath.PoseBetween(pairs[seg.First].Estimate, pairs[seg.Last].Estimate)

	correction, err := fitCorrection(pairs, seg, opts)
	if err != nil {
		return RelativeError{}, errors.Wrapf(err, "aligning segment starting at frame %d", seg.First)
	}
	esStart := correction.TransformPose(spatialmath.NewZeroPose())
	esEnd := correction.TransformPose(esRel)

	errPose := spatialmath.PoseBetween(gtRel, esEnd)
	scale := 1.
	if gtDisplacement := gtRel.Point().Norm(); gtDisplacement >= minScaleDisplacement {
		scale = esEnd.Point().Sub(esStart.Point()).Norm() / gtDisplacement
	}

	rel := RelativeError{
		FirstFrame:  seg.First,
		Translation: errPose.Point(),
		Rotation:    spatialmath.QuatToR3AA(errPose.Orientation().Quaternion()),
		Length:      seg.Length,
		NumFrames:   seg.NumFrames(),
		Scale:       scale,
	}
	if !rel.IsFinite() {
		return RelativeError{}, errors.Errorf("segment starting at frame %d has a non-finite error", seg.First)
	}
	return rel, nil
}

// IsFinite reports whether every component of the error is a finite number.
func (e RelativeError) IsFinite() bool {
	return utils.IsFinite(
		e.Translation.X, e.Translation.Y, e.Translation.Z,
		e.Rotation.X, e.Rotation.Y, e.Rotation.Z,
		e.Length, e.Scale,
	)
}

// RotationAngle returns the rotation error angle in radians.
func (e RelativeError) RotationAngle() float64 {
	return e.Rotation.Norm()
}
