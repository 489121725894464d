package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Below this point set variance no scale is estimated.
const minAlignmentVariance = 1e-12

// Similarity is a rigid transform followed by an isotropic scale of the translated points:
// x -> Scale * R * x + t, where R and t come from Pose.
type Similarity struct {
	Pose  Pose
	Scale float64
}

// NewRigidSimilarity wraps a pose as a similarity with unit scale.
func NewRigidSimilarity(p Pose) *Similarity {
	return &Similarity{Pose: p, Scale: 1}
}

// TransformPoint applies the similarity to a point.
func (s *Similarity) TransformPoint(pt r3.Vector) r3.Vector {
	return RotateVector(s.Pose.Orientation(), pt).Mul(s.Scale).Add(s.Pose.Point())
}

// TransformPose applies the similarity to a pose: the rotation is composed and the position is
// transformed as a point.
func (s *Similarity) TransformPose(p Pose) Pose {
	rot := Compose(NewPoseFromOrientation(s.Pose.Orientation()), NewPoseFromOrientation(p.Orientation()))
	return NewPose(s.TransformPoint(p.Point()), rot.Orientation())
}

// Centroid returns the mean of the given points.
func Centroid(points []r3.Vector) r3.Vector {
	var sum r3.Vector
	if len(points) == 0 {
		return sum
	}
	for _, pt := range points {
		sum = sum.Add(pt)
	}
	return sum.Mul(1 / float64(len(points)))
}

// AlignPoints returns the transform minimizing sum |dst_i - (c*R*src_i + t)|^2 over rotations R,
// translations t and, if estimateScale is set, the scale c (Umeyama 1991). Reflections are
// excluded by flipping the sign of the smallest singular direction.
func AlignPoints(src, dst []r3.Vector, estimateScale bool) (*Similarity, error) {
	if len(src) != len(dst) {
		return nil, errors.Errorf("cannot align %d points to %d points", len(src), len(dst))
	}
	if len(src) == 0 {
		return nil, errors.New("cannot align empty point sets")
	}
	n := float64(len(src))
	muSrc, muDst := Centroid(src), Centroid(dst)

	sigma := mat.NewDense(3, 3, nil)
	varSrc := 0.
	for i := range src {
		s := src[i].Sub(muSrc)
		d := dst[i].Sub(muDst)
		varSrc += s.Norm2()
		sv := [3]float64{s.X, s.Y, s.Z}
		dv := [3]float64{d.X, d.Y, d.Z}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				sigma.Set(r, c, sigma.At(r, c)+dv[r]*sv[c])
			}
		}
	}
	sigma.Scale(1/n, sigma)
	varSrc /= n

	var svd mat.SVD
	if ok := svd.Factorize(sigma, mat.SVDFull); !ok {
		return nil, errors.New("failed to factorize cross-covariance of point sets")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	signs := []float64{1, 1, 1}
	if mat.Det(&u)*mat.Det(&v) < 0 {
		signs[2] = -1
	}
	var rot mat.Dense
	rot.Product(&u, mat.NewDiagDense(3, signs), v.T())

	rows := make([]float64, 0, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rows = append(rows, rot.At(r, c))
		}
	}
	rm, err := NewRotationMatrix(rows)
	if err != nil {
		return nil, err
	}

	scale := 1.
	if estimateScale && varSrc > minAlignmentVariance {
		scale = (values[0]*signs[0] + values[1]*signs[1] + values[2]*signs[2]) / varSrc
	}
	t := muDst.Sub(rm.Mul(muSrc).Mul(scale))
	return &Similarity{Pose: NewPose(t, rm), Scale: scale}, nil
}
