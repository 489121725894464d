package rpe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/trajeval/spatialmath"
	"go.viam.com/trajeval/trajectory"
)

// AlignmentMode selects the least-squares correction fit at the start of each segment.
type AlignmentMode int

// The alignment modes are mutually exclusive.
const (
	AlignNone AlignmentMode = iota
	// AlignTranslation corrects the estimate position only, its rotation is left as estimated.
	AlignTranslation
	AlignRigid
	// AlignSimilarity fits a rigid transform and a uniform scale of the estimate positions.
	AlignSimilarity
)

func (m AlignmentMode) String() string {
	switch m {
	case AlignNone:
		return "none"
	case AlignTranslation:
		return "translation"
	case AlignRigid:
		return "rigid"
	case AlignSimilarity:
		return "similarity"
	default:
		return "unknown"
	}
}

// AlignOptions configures the per-segment realignment. Range is the leading fraction of a
// segment's frames the correction is fit over.
type AlignOptions struct {
	Mode  AlignmentMode
	Range float64
}

// Arm length of the axis points added per pose so the rigid fit sees orientations.
const frameArm = 1.0

// Below this the scale fit is degenerate and unit scale is used.
const minScaleDenominator = 1e-12

// alignmentFrames returns the number of leading frames of seg the correction is fit over.
func alignmentFrames(seg Segment, fraction float64) int {
	n := int(fraction * float64(seg.NumFrames()))
	if n < 2 {
		n = 2
	}
	if n > seg.NumFrames()+1 {
		n = seg.NumFrames() + 1
	}
	return n
}

// fitCorrection fits the transform carrying the estimate onto the groundtruth over the leading
// frames of the segment. Both are expressed relative to their own first frame of the segment.
func fitCorrection(pairs []trajectory.AlignedPair, seg Segment, opts AlignOptions) (*spatialmath.Similarity, error) {
	if opts.Mode == AlignNone {
		return spatialmath.NewRigidSimilarity(spatialmath.NewZeroPose()), nil
	}
	if !(opts.Range > 0 && opts.Range <= 1) {
		return nil, errors.Errorf("alignment range must be in (0, 1], got %v", opts.Range)
	}

	n := alignmentFrames(seg, opts.Range)
	gt0 := pairs[seg.First].Groundtruth
	es0 := pairs[seg.First].Estimate
	gtLocal := make([]spatialmath.Pose, n)
	esLocal := make([]spatialmath.Pose, n)
	for i := 0; i < n; i++ {
		gtLocal[i] = spatialmath.PoseBetween(gt0, pairs[seg.First+i].Groundtruth)
		esLocal[i] = spatialmath.PoseBetween(es0, pairs[seg.First+i].Estimate)
	}

	switch opts.Mode {
	case AlignTranslation:
		var sum r3.Vector
		for i := range gtLocal {
			sum = sum.Add(gtLocal[i].Point().Sub(esLocal[i].Point()))
		}
		return spatialmath.NewRigidSimilarity(spatialmath.NewPoseFromPoint(sum.Mul(1 / float64(n)))), nil
	case AlignRigid:
		return spatialmath.AlignPoints(framePoints(esLocal), framePoints(gtLocal), false)
	case AlignSimilarity:
		// The axis tips do not scale, so the estimate is brought to the groundtruth scale before
		// they enter the rotation fit.
		coarse, err := spatialmath.AlignPoints(positions(esLocal), positions(gtLocal), true)
		if err != nil {
			return nil, err
		}
		scaled := rescale(esLocal, coarse.Scale)
		rigid, err := spatialmath.AlignPoints(framePoints(scaled), framePoints(gtLocal), false)
		if err != nil {
			return nil, err
		}
		return fitScale(rigid.Pose.Orientation(), positions(esLocal), positions(gtLocal)), nil
	default:
		return nil, errors.Errorf("unknown alignment mode %d", opts.Mode)
	}
}

// fitScale keeps the rotation and fits the scale and translation minimizing the position residual.
func fitScale(rot spatialmath.Orientation, src, dst []r3.Vector) *spatialmath.Similarity {
	muSrc, muDst := spatialmath.Centroid(src), spatialmath.Centroid(dst)
	var num, denom float64
	for i := range src {
		rotated := spatialmath.RotateVector(rot, src[i].Sub(muSrc))
		num += dst[i].Sub(muDst).Dot(rotated)
		denom += rotated.Norm2()
	}
	scale := 1.
	if denom > minScaleDenominator && num > 0 {
		scale = num / denom
	}
	t := muDst.Sub(spatialmath.RotateVector(rot, muSrc).Mul(scale))
	return &spatialmath.Similarity{Pose: spatialmath.NewPose(t, rot), Scale: scale}
}

// rescale multiplies every position by k, keeping orientations. A degenerate k leaves the poses
// unchanged.
func rescale(poses []spatialmath.Pose, k float64) []spatialmath.Pose {
	if !(k > minScaleDenominator) {
		return poses
	}
	out := make([]spatialmath.Pose, len(poses))
	for i, p := range poses {
		out[i] = spatialmath.NewPose(p.Point().Mul(k), p.Orientation())
	}
	return out
}

func positions(poses []spatialmath.Pose) []r3.Vector {
	pts := make([]r3.Vector, len(poses))
	for i, p := range poses {
		pts[i] = p.Point()
	}
	return pts
}

// framePoints returns the position of every pose followed by the tips of its unit axes.
func framePoints(poses []spatialmath.Pose) []r3.Vector {
	axes := []r3.Vector{{X: frameArm}, {Y: frameArm}, {Z: frameArm}}
	pts := make([]r3.Vector, 0, 4*len(poses))
	for _, p := range poses {
		pts = append(pts, p.Point())
		for _, axis := range axes {
			pts = append(pts, p.Point().Add(spatialmath.RotateVector(p.Orientation(), axis)))
		}
	}
	return pts
}
