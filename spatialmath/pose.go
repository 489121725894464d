package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) meters, and the Orientation() method returns
// an Orientation object, which has methods to parametrize the rotation in a variety of ways.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return newDualQuaternion(r3.Vector{}, NewZeroOrientation().Quaternion())
}

// NewPose takes in a position and orientation and returns a Pose. A nil orientation is treated as
// no rotation.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return newDualQuaternion(p, o.Quaternion())
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(p r3.Vector) Pose {
	return newDualQuaternion(p, NewZeroOrientation().Quaternion())
}

// NewPoseFromOrientation takes in an orientation and returns a pose at the origin.
func NewPoseFromOrientation(o Orientation) Pose {
	return NewPose(r3.Vector{}, o)
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// It does this by multiplying the dual quaternions of the poses together.
// Note that this is NOT commutative.
func Compose(a, b Pose) Pose {
	return dualQuaternionFromPose(a).Transformation(dualQuaternionFromPose(b))
}

// PoseInverse will return the inverse of a pose. So if a given pose p is the pose of A relative to B, PoseInverse(p) will give
// the pose of B relative to A.
func PoseInverse(p Pose) Pose {
	return dualQuaternionFromPose(p).inverse()
}

// PoseBetween returns the difference between two poses, i.e. the pose b expressed in the frame of a:
// Compose(PoseInverse(a), b).
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-8)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same within an epsilon.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) &&
		QuaternionAlmostEqual(a.Orientation().Quaternion(), b.Orientation().Quaternion(), epsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// PoseIsFinite reports whether every translation and rotation component of p is a finite number.
func PoseIsFinite(p Pose) bool {
	pt := p.Point()
	q := p.Orientation().Quaternion()
	for _, v := range []float64{pt.X, pt.Y, pt.Z, q.Real, q.Imag, q.Jmag, q.Kmag} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RotateVector rotates v by the orientation o.
func RotateVector(o Orientation, v r3.Vector) r3.Vector {
	return Compose(NewPoseFromOrientation(o), NewPoseFromPoint(v)).Point()
}
